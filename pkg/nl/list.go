package nl

import (
	"fmt"

	"github.com/telekom/das-schiff-route-agent/pkg/route"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"
	"golang.org/x/sys/unix"
)

type rawRoute struct {
	table         int
	protocol      int
	family        int
	vxlanNexthops int
}

// listRoutes dumps the kernel routing tables over a raw request. The
// high-level netlink route list cannot represent the VXLAN encapsulation
// attributes, so the attributes are walked here directly.
func (n *Manager) listRoutes() ([]rawRoute, error) {
	req := nl.NewNetlinkRequest(unix.RTM_GETROUTE, unix.NLM_F_DUMP)
	req.AddData(&nl.RtMsg{RtMsg: unix.RtMsg{Family: unix.AF_UNSPEC}})

	msgs, err := n.toolkit.ExecuteNetlinkRequest(req, unix.NETLINK_ROUTE, unix.RTM_NEWROUTE)
	if err != nil {
		return nil, fmt.Errorf("error dumping routes: %w", err)
	}

	routes := make([]rawRoute, 0, len(msgs))
	for _, m := range msgs {
		r, err := parseRawRoute(m)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

func parseRawRoute(m []byte) (rawRoute, error) {
	if len(m) < unix.SizeofRtMsg {
		return rawRoute{}, fmt.Errorf("short route message: %d bytes", len(m))
	}
	msg := nl.DeserializeRtMsg(m)
	r := rawRoute{
		table:    int(msg.Table),
		protocol: int(msg.Protocol),
		family:   int(msg.Family),
	}

	attrs, err := nl.ParseRouteAttr(m[msg.Len():])
	if err != nil {
		return rawRoute{}, fmt.Errorf("error parsing route attributes: %w", err)
	}

	var encapType uint16
	var encapData []byte
	for _, attr := range attrs {
		switch attr.Attr.Type {
		case unix.RTA_TABLE:
			r.table = int(nl.NativeEndian().Uint32(attr.Value[0:4]))
		case unix.RTA_ENCAP_TYPE:
			encapType = nl.NativeEndian().Uint16(attr.Value[0:2])
		case unix.RTA_ENCAP, unix.RTA_ENCAP | unix.NLA_F_NESTED:
			encapData = attr.Value
		case unix.RTA_MULTIPATH:
			count, err := countMultipathVxlan(attr.Value)
			if err != nil {
				return rawRoute{}, err
			}
			r.vxlanNexthops += count
		}
	}
	if encapType == encapTypeVXLAN && encapData != nil {
		if _, err := parseVxlanEncap(encapData); err != nil {
			return rawRoute{}, err
		}
		r.vxlanNexthops++
	}
	return r, nil
}

// countMultipathVxlan walks the rtnexthop blocks of an RTA_MULTIPATH
// payload and counts members with a VXLAN encapsulation.
func countMultipathVxlan(data []byte) (int, error) {
	count := 0
	for len(data) >= unix.SizeofRtNexthop {
		nhLen := int(nl.NativeEndian().Uint16(data[0:2]))
		if nhLen < unix.SizeofRtNexthop || nhLen > len(data) {
			return 0, fmt.Errorf("invalid rtnexthop length %d", nhLen)
		}
		attrs, err := nl.ParseRouteAttr(data[unix.SizeofRtNexthop:nhLen])
		if err != nil {
			return 0, fmt.Errorf("error parsing nexthop attributes: %w", err)
		}
		var encapType uint16
		var encapData []byte
		for _, attr := range attrs {
			switch attr.Attr.Type {
			case unix.RTA_ENCAP_TYPE:
				encapType = nl.NativeEndian().Uint16(attr.Value[0:2])
			case unix.RTA_ENCAP, unix.RTA_ENCAP | unix.NLA_F_NESTED:
				encapData = attr.Value
			}
		}
		if encapType == encapTypeVXLAN && encapData != nil {
			if _, err := parseVxlanEncap(encapData); err != nil {
				return 0, err
			}
			count++
		}
		data = data[nlaAlign(nhLen):]
	}
	return count, nil
}

func nlaAlign(l int) int {
	return (l + unix.NLA_ALIGNTO - 1) & ^(unix.NLA_ALIGNTO - 1)
}

// ListRouteInformation aggregates the routing tables per table, protocol
// and family for the metrics endpoint.
func (n *Manager) ListRouteInformation() ([]route.Information, error) {
	rawRoutes, err := n.listRoutes()
	if err != nil {
		return nil, err
	}

	routes := map[route.Key]route.Information{}
	for _, raw := range rawRoutes {
		key := route.Key{TableID: raw.table, RouteProtocol: raw.protocol, AddressFamily: raw.family}
		info, ok := routes[key]
		if !ok {
			family, err := GetFamily(raw.family)
			if err != nil {
				return nil, err
			}
			vrfName, err := n.getVRFName(raw.table)
			if err != nil {
				return nil, err
			}
			info = route.Information{
				TableID:       raw.table,
				VrfName:       vrfName,
				RouteProtocol: netlink.RouteProtocol(raw.protocol),
				AddressFamily: family,
			}
		}
		info.Quantity++
		info.VxlanNexthops += raw.vxlanNexthops
		routes[key] = info
	}

	routeList := make([]route.Information, 0, len(routes))
	for _, info := range routes {
		routeList = append(routeList, info)
	}
	return routeList, nil
}

// ListNeighbors lists the IPv4 and IPv6 neighbor tables.
func (n *Manager) ListNeighbors() ([]netlink.Neigh, error) {
	neighbors, err := n.toolkit.NeighList(0, netlink.FAMILY_ALL)
	if err != nil {
		return nil, fmt.Errorf("error listing ipv4,ipv6 neighbors: %w", err)
	}
	return neighbors, nil
}

// ListBridgeForwardingTable lists all bridge fdb entries.
func (n *Manager) ListBridgeForwardingTable() ([]netlink.Neigh, error) {
	entries, err := n.toolkit.NeighList(0, unix.AF_BRIDGE)
	if err != nil {
		return nil, fmt.Errorf("error listing bridge fdb entries: %w", err)
	}
	return entries, nil
}
