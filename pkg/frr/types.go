package frr

// VRFVni is one entry of `show vrf vni`.
type VRFVni struct {
	Vrf       string `json:"vrf"`
	Vni       int    `json:"vni"`
	VxlanIntf string `json:"vxlanIntf"`
	Svi       string `json:"svi"`
	RouterMac string `json:"routerMac"`
	State     string `json:"state"`
}

type VRFVniList struct {
	Vrfs []VRFVni `json:"vrfs"`
}

// EVPNVni is one entry of `show evpn vni`, keyed by VNI in the output.
type EVPNVni struct {
	Vni            int    `json:"vni"`
	Type           string `json:"type"`
	Vrf            string `json:"vrf"`
	VxlanInterface string `json:"vxlanIntf"`
	NumMacs        int    `json:"numMacs"`
	NumArpNd       int    `json:"numArpNd"`
	NumRemoteVteps any    `json:"numRemoteVteps"`
	TenantVrf      string `json:"tenantVrf"`
	RouterMac      string `json:"routerMac"`
	State          string `json:"state"`
}
