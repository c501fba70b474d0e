package nexthop

import (
	"fmt"
	"net"
)

const hardwareAddrLen = 6

// EncapType selects the encapsulation payload carried by a nexthop.
type EncapType uint8

const (
	EncapNone EncapType = iota
	EncapVXLAN
)

func (t EncapType) String() string {
	switch t {
	case EncapNone:
		return "none"
	case EncapVXLAN:
		return "vxlan"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// VxlanEncap carries the tunnel metadata of a VXLAN nexthop. It is embedded
// by value in Nexthop, its lifetime is the nexthop's lifetime.
type VxlanEncap struct {
	VNI       uint32
	RemoteMAC [hardwareAddrLen]byte
}

// MaxVNI is the largest valid virtual network identifier (24 bit).
const MaxVNI = 1<<24 - 1

func (e VxlanEncap) HasRemoteMAC() bool {
	return e.RemoteMAC != [hardwareAddrLen]byte{}
}

// MAC returns the remote router MAC as a net.HardwareAddr copy.
func (e VxlanEncap) MAC() net.HardwareAddr {
	mac := make(net.HardwareAddr, hardwareAddrLen)
	copy(mac, e.RemoteMAC[:])
	return mac
}

// SetMAC copies hw into the encap payload. hw must be a 6-byte address.
func (e *VxlanEncap) SetMAC(hw net.HardwareAddr) error {
	if len(hw) != hardwareAddrLen {
		return fmt.Errorf("invalid remote MAC length %d, expected %d", len(hw), hardwareAddrLen)
	}
	copy(e.RemoteMAC[:], hw)
	return nil
}

func (e VxlanEncap) String() string {
	return fmt.Sprintf("VNI:%d RMAC:%s", e.VNI, e.MAC())
}

// Nexthop is a single forwarding instruction of a route. The encapsulation
// payload is selected by EncapType, today only VXLAN carries one.
type Nexthop struct {
	VRFID     uint32
	Gateway   net.IP
	LinkIndex int
	Weight    uint32
	OnLink    bool
	Blackhole bool

	EncapType EncapType
	Vxlan     VxlanEncap
}

// SetVxlanVNI switches the nexthop to VXLAN encapsulation with the given
// VNI. An already present remote MAC is kept untouched.
func (n *Nexthop) SetVxlanVNI(vni uint32) error {
	if vni == 0 || vni > MaxVNI {
		return fmt.Errorf("VNI %d out of range [1-%d]", vni, MaxVNI)
	}
	n.EncapType = EncapVXLAN
	n.Vxlan.VNI = vni
	return nil
}

// SetRemoteMAC stores the remote router MAC in the encapsulation payload.
// The copy is last-write-wins, a MAC set by an earlier resolution is
// overwritten.
func (n *Nexthop) SetRemoteMAC(hw net.HardwareAddr) error {
	return n.Vxlan.SetMAC(hw)
}

// ReadyForInstall reports whether the nexthop may be programmed into the
// forwarding plane. A VXLAN nexthop without a remote MAC is incomplete.
func (n *Nexthop) ReadyForInstall() bool {
	if n.EncapType != EncapVXLAN {
		return true
	}
	return n.Vxlan.VNI != 0 && n.Vxlan.HasRemoteMAC()
}

func (n *Nexthop) String() string {
	s := fmt.Sprintf("gw: %s, ifindex: %d, vrf: %d", n.Gateway, n.LinkIndex, n.VRFID)
	if n.EncapType == EncapVXLAN {
		s += fmt.Sprintf(", encap: %s", n.Vxlan)
	}
	return s
}
