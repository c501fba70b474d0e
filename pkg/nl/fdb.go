package nl

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// EnsureRemoteMAC installs a bridge fdb entry on the VXLAN device that
// forwards frames for the remote router MAC to the remote VTEP.
func (n *Manager) EnsureRemoteMAC(vtepIndex int, mac net.HardwareAddr, vtepIP net.IP) error {
	neigh := &netlink.Neigh{
		LinkIndex:    vtepIndex,
		Family:       unix.AF_BRIDGE,
		State:        netlink.NUD_PERMANENT | netlink.NUD_NOARP,
		Flags:        netlink.NTF_SELF,
		IP:           vtepIP,
		HardwareAddr: mac,
	}
	if err := n.toolkit.NeighSet(neigh); err != nil {
		return fmt.Errorf("error adding fdb entry %s via %s: %w", mac, vtepIP, err)
	}
	if n.debugKernel {
		n.logger.Info(fmt.Sprintf("fdb add: dev %d mac %s dst %s", vtepIndex, mac, vtepIP))
	}
	return nil
}

// RemoveRemoteMAC removes the fdb entry installed by EnsureRemoteMAC.
func (n *Manager) RemoveRemoteMAC(vtepIndex int, mac net.HardwareAddr, vtepIP net.IP) error {
	neigh := &netlink.Neigh{
		LinkIndex:    vtepIndex,
		Family:       unix.AF_BRIDGE,
		State:        netlink.NUD_PERMANENT | netlink.NUD_NOARP,
		Flags:        netlink.NTF_SELF,
		IP:           vtepIP,
		HardwareAddr: mac,
	}
	if err := n.toolkit.NeighDel(neigh); err != nil {
		return fmt.Errorf("error deleting fdb entry %s via %s: %w", mac, vtepIP, err)
	}
	return nil
}
