package nl

import (
	"fmt"
	"net"

	"github.com/telekom/das-schiff-route-agent/pkg/nexthop"
	frrunix "github.com/telekom/das-schiff-route-agent/pkg/unix"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"
	"golang.org/x/sys/unix"
)

// Route is a kernel-bound route with fully resolved nexthops.
type Route struct {
	Table    int
	Prefix   *net.IPNet
	Protocol netlink.RouteProtocol
	Priority int
	Nexthops []nexthop.Nexthop
}

func (r *Route) family() int {
	if r.Prefix.IP.To4() != nil {
		return unix.AF_INET
	}
	return unix.AF_INET6
}

// InstallRoute programs the route into the kernel, replacing any existing
// route for the same prefix and table. All attributes share one bounded
// message buffer; if they do not fit, nothing is sent.
func (n *Manager) InstallRoute(r *Route) error {
	req := nl.NewNetlinkRequest(unix.RTM_NEWROUTE, unix.NLM_F_CREATE|unix.NLM_F_REPLACE|unix.NLM_F_ACK)
	if err := n.buildRouteRequest(req, nl.NewRtMsg(), r, true); err != nil {
		return err
	}
	if _, err := n.toolkit.ExecuteNetlinkRequest(req, unix.NETLINK_ROUTE, 0); err != nil {
		return fmt.Errorf("error installing route %s: %w", r.Prefix, err)
	}
	return nil
}

// DeleteRoute withdraws the route from the kernel.
func (n *Manager) DeleteRoute(r *Route) error {
	// A withdraw may arrive without nexthops, the kernel matches on
	// prefix and table alone then.
	req := nl.NewNetlinkRequest(unix.RTM_DELROUTE, unix.NLM_F_ACK)
	if err := n.buildRouteRequest(req, nl.NewRtDelMsg(), r, false); err != nil {
		return err
	}
	if _, err := n.toolkit.ExecuteNetlinkRequest(req, unix.NETLINK_ROUTE, 0); err != nil {
		return fmt.Errorf("error deleting route %s: %w", r.Prefix, err)
	}
	return nil
}

func (n *Manager) buildRouteRequest(req *nl.NetlinkRequest, msg *nl.RtMsg, r *Route, install bool) error {
	if install {
		if len(r.Nexthops) == 0 {
			return fmt.Errorf("route %s has no nexthops", r.Prefix)
		}
		for i := range r.Nexthops {
			if !r.Nexthops[i].ReadyForInstall() {
				return fmt.Errorf("route %s nexthop %d: %w", r.Prefix, i, ErrIncompleteEncap)
			}
		}
	}

	ones, _ := r.Prefix.Mask.Size()
	msg.Family = uint8(r.family())
	msg.Dst_len = uint8(ones)
	msg.Protocol = uint8(r.Protocol)
	msg.Scope = unix.RT_SCOPE_UNIVERSE
	msg.Type = unix.RTN_UNICAST
	if len(r.Nexthops) == 1 && r.Nexthops[0].Blackhole {
		msg.Type = unix.RTN_BLACKHOLE
		msg.Scope = unix.RT_SCOPE_NOWHERE
	}
	if r.Table > 0 && r.Table < 256 {
		msg.Table = uint8(r.Table)
	} else {
		msg.Table = unix.RT_TABLE_UNSPEC
	}

	b := newAttrBuilder(routeMessageMaxSize - unix.SizeofNlMsghdr - unix.SizeofRtMsg)

	dst := r.Prefix.IP
	if msg.Family == unix.AF_INET {
		dst = dst.To4()
	} else {
		dst = dst.To16()
	}
	if err := b.add(nl.NewRtAttr(unix.RTA_DST, dst)); err != nil {
		return err
	}
	if r.Table >= 256 {
		if err := b.add(nl.NewRtAttr(unix.RTA_TABLE, nl.Uint32Attr(uint32(r.Table)))); err != nil {
			return err
		}
	}
	if r.Priority > 0 {
		if err := b.add(nl.NewRtAttr(unix.RTA_PRIORITY, nl.Uint32Attr(uint32(r.Priority)))); err != nil {
			return err
		}
	}

	switch {
	case len(r.Nexthops) == 1:
		if err := n.appendNexthop(b, &r.Nexthops[0]); err != nil {
			return err
		}
	case len(r.Nexthops) > 1:
		if err := n.appendMultipath(b, r.Nexthops); err != nil {
			return err
		}
	}

	req.AddData(msg)
	for _, attr := range b.attrs {
		req.AddData(attr)
	}
	return nil
}

// appendNexthop emits the attributes of a single-path route.
func (n *Manager) appendNexthop(b *attrBuilder, nh *nexthop.Nexthop) error {
	if nh.Blackhole {
		return nil
	}
	if nh.EncapType == nexthop.EncapVXLAN {
		if err := n.appendVxlanEncap(b, nh.Vxlan); err != nil {
			return err
		}
	}
	if nh.Gateway != nil {
		gw := nh.Gateway
		if gw.To4() != nil {
			gw = gw.To4()
		}
		if err := b.add(nl.NewRtAttr(unix.RTA_GATEWAY, gw)); err != nil {
			return err
		}
	}
	if nh.LinkIndex > 0 {
		if err := b.add(nl.NewRtAttr(unix.RTA_OIF, nl.Uint32Attr(uint32(nh.LinkIndex)))); err != nil {
			return err
		}
	}
	return nil
}

// appendMultipath emits RTA_MULTIPATH with per-nexthop encapsulation. The
// rtnexthop blocks count against the same bounded message buffer, so a
// nexthop that does not fit rejects the whole route.
func (n *Manager) appendMultipath(b *attrBuilder, nhs []nexthop.Nexthop) error {
	var buf []byte
	for i := range nhs {
		nh := &nhs[i]
		rtnh := &nl.RtNexthop{
			RtNexthop: unix.RtNexthop{
				Hops:    weightHops(nh.Weight),
				Ifindex: int32(nh.LinkIndex),
			},
		}
		if nh.OnLink {
			rtnh.Flags = unix.RTNH_F_ONLINK
		}

		nb := newAttrBuilder(b.avail - len(buf) - unix.SizeofRtAttr - unix.SizeofRtNexthop)
		if nh.EncapType == nexthop.EncapVXLAN {
			if err := n.appendVxlanEncap(nb, nh.Vxlan); err != nil {
				return err
			}
		}
		if nh.Gateway != nil {
			gw := nh.Gateway
			if gw.To4() != nil {
				gw = gw.To4()
			}
			if err := nb.add(nl.NewRtAttr(unix.RTA_GATEWAY, gw)); err != nil {
				return err
			}
		}
		for _, attr := range nb.attrs {
			rtnh.Children = append(rtnh.Children, attr)
		}
		buf = append(buf, rtnh.Serialize()...)
	}
	return b.add(nl.NewRtAttr(unix.RTA_MULTIPATH, buf))
}

// weightHops converts a nexthop weight to the kernel encoding, which is
// off by one.
func weightHops(weight uint32) uint8 {
	if weight == 0 {
		return 0
	}
	return uint8(weight - 1)
}

var protocolNames = map[int]string{
	unix.RTPROT_KERNEL:     "kernel",
	unix.RTPROT_BOOT:       "boot",
	unix.RTPROT_STATIC:     "static",
	unix.RTPROT_BGP:        "bgp",
	unix.RTPROT_ISIS:       "isis",
	unix.RTPROT_OSPF:       "ospf",
	unix.RTPROT_RIP:        "rip",
	frrunix.RTPROT_NHRP:    "nhrp",
	frrunix.RTPROT_LDP:     "ldp",
	frrunix.RTPROT_SHARP:   "sharp",
	frrunix.RTPROT_PBR:     "pbr",
	frrunix.RTPROT_ZSTATIC: "zstatic",
	frrunix.RTPROT_SRTE:    "srte",
}

// GetProtocolName resolves a routing protocol number to its FRR name.
func GetProtocolName(protocol netlink.RouteProtocol) string {
	if name, ok := protocolNames[int(protocol)]; ok {
		return name
	}
	return fmt.Sprintf("%d", int(protocol))
}

func GetFamily(addressFamily int) (string, error) {
	switch addressFamily {
	case netlink.FAMILY_V4:
		return "ipv4", nil
	case netlink.FAMILY_V6:
		return "ipv6", nil
	case netlink.FAMILY_MPLS:
		return "mpls", nil
	case netlink.FAMILY_ALL:
		return "all", nil
	default:
		return "", fmt.Errorf("can't find the addressFamily required")
	}
}
