package nl

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

const (
	maxVRFnameLen = 12
)

// VRFInformation describes a VRF and its attached L3VNI devices as found
// in the kernel. A VRF without a vx.<name> interface carries no VNI.
type VRFInformation struct {
	Name   string
	VNI    int
	OperUp bool

	table     int
	vrfID     int
	bridgeID  int
	vtepIndex int
}

// Table returns the kernel routing table bound to the VRF.
func (info *VRFInformation) Table() int {
	return info.table
}

// VTEPIndex returns the link index of the VXLAN tunnel endpoint device.
func (info *VRFInformation) VTEPIndex() int {
	return info.vtepIndex
}

// GetL3ByName looks up a single VRF and its L3VNI state.
func (n *Manager) GetL3ByName(name string) (*VRFInformation, error) {
	if len(name) > maxVRFnameLen {
		return nil, fmt.Errorf("name of VRF can not be longer than 12 (15-3 prefix) chars")
	}
	list, err := n.ListL3()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("no VRF with name %s", name)
}

// ListL3 lists all VRFs together with their VXLAN device state.
func (n *Manager) ListL3() ([]VRFInformation, error) {
	infos := []VRFInformation{}

	links, err := n.toolkit.LinkList()
	if err != nil {
		return nil, fmt.Errorf("error listing links: %w", err)
	}

	for _, link := range links {
		if link.Type() != "vrf" {
			continue
		}
		vrf, ok := link.(*netlink.Vrf)
		if !ok {
			continue
		}

		info := VRFInformation{}
		info.table = int(vrf.Table)
		info.Name = link.Attrs().Name
		info.vrfID = vrf.Attrs().Index

		n.updateL3Indices(&info)

		infos = append(infos, info)
	}

	return infos, nil
}

func (n *Manager) updateL3Indices(info *VRFInformation) {
	bridgeLink, err := n.toolkit.LinkByName(bridgePrefix + info.Name)
	if err == nil {
		info.bridgeID = bridgeLink.Attrs().Index
	}
	vxlanLink, err := n.toolkit.LinkByName(vxlanPrefix + info.Name)
	if err != nil {
		return
	}
	vxlan, ok := vxlanLink.(*netlink.Vxlan)
	if !ok {
		return
	}
	info.VNI = vxlan.VxlanId
	info.vtepIndex = vxlan.Attrs().Index
	info.OperUp = linkOperative(vxlan.Attrs())
}

// linkOperative mirrors the kernel's notion of an operationally usable
// interface. Virtual devices often report OperUnknown while carrying
// traffic, so only an explicit down state disqualifies them.
func linkOperative(attrs *netlink.LinkAttrs) bool {
	if attrs.Flags&net.FlagUp == 0 {
		return false
	}
	return attrs.OperState != netlink.OperDown && attrs.OperState != netlink.OperLowerLayerDown
}

func (n *Manager) getVRFNameByTable(tableID int) (string, error) {
	list, err := n.ListL3()
	if err != nil {
		return "", err
	}
	for i := range list {
		if list[i].table == tableID {
			return list[i].Name, nil
		}
	}
	return "", nil
}

func (n *Manager) getVRFName(tableID int) (string, error) {
	if tableID < 0 || tableID > (1<<31) {
		return "", fmt.Errorf("table id %d out of range", tableID)
	}
	switch tableID {
	case 255:
		return "local", nil
	case 254:
		return "main", nil
	case 253:
		return "default", nil
	case 0:
		return "unspecified", nil
	default:
		return n.getVRFNameByTable(tableID)
	}
}
