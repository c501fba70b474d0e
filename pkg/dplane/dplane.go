package dplane

import (
	"fmt"
	"net"

	"github.com/go-logr/logr"
	"github.com/telekom/das-schiff-route-agent/pkg/config"
	"github.com/telekom/das-schiff-route-agent/pkg/nexthop"
	"github.com/telekom/das-schiff-route-agent/pkg/nl"
	frrunix "github.com/telekom/das-schiff-route-agent/pkg/unix"
	"github.com/telekom/das-schiff-route-agent/pkg/zapi"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const defaultVRFTable = unix.RT_TABLE_MAIN

// Kernel is the forwarding plane surface the dispatcher programs.
// *nl.Manager implements it.
type Kernel interface {
	VRFLister
	InstallRoute(r *nl.Route) error
	DeleteRoute(r *nl.Route) error
	EnsureRemoteMAC(vtepIndex int, mac net.HardwareAddr, vtepIP net.IP) error
	RemoveRemoteMAC(vtepIndex int, mac net.HardwareAddr, vtepIP net.IP) error
}

// Dispatcher turns decoded routing client messages into kernel state. It
// implements zapi.Handler; the server serializes calls, so no locking is
// needed around the fdb refcounts.
type Dispatcher struct {
	kernel   Kernel
	store    *config.Store
	resolver *Resolver
	logger   logr.Logger

	// fdbRefs counts routes per remote MAC so the fdb entry outlives
	// all but the last route using it.
	fdbRefs map[fdbKey]int
}

type fdbKey struct {
	vtepIndex int
	mac       [6]byte
	vtep      string
}

func NewDispatcher(kernel Kernel, store *config.Store, logger logr.Logger) *Dispatcher {
	return &Dispatcher{
		kernel:   kernel,
		store:    store,
		resolver: NewResolver(kernel, logger),
		logger:   logger.WithName("dispatcher"),
		fdbRefs:  map[fdbKey]int{},
	}
}

// HandleRouteAdd programs an advertised route, resolving the VRF's L3VNI
// for nexthops that carry a remote router MAC.
func (d *Dispatcher) HandleRouteAdd(clientVRF uint32, body *zapi.IPRouteBody) error {
	route, info, err := d.buildRoute(clientVRF, body)
	if err != nil {
		return err
	}

	if err := d.kernel.InstallRoute(route); err != nil {
		return err
	}
	d.logger.V(1).Info("route installed", "prefix", route.Prefix, "table", route.Table, "nexthops", len(route.Nexthops))

	for i := range route.Nexthops {
		nh := &route.Nexthops[i]
		if nh.EncapType != nexthop.EncapVXLAN {
			continue
		}
		key := fdbKey{vtepIndex: info.VTEPIndex(), mac: nh.Vxlan.RemoteMAC, vtep: nh.Gateway.String()}
		if d.fdbRefs[key] == 0 {
			if err := d.kernel.EnsureRemoteMAC(info.VTEPIndex(), nh.Vxlan.MAC(), nh.Gateway); err != nil {
				return err
			}
		}
		d.fdbRefs[key]++
	}
	return nil
}

// HandleRouteDelete withdraws a route and drops fdb entries no other
// route references anymore.
func (d *Dispatcher) HandleRouteDelete(clientVRF uint32, body *zapi.IPRouteBody) error {
	route, info, err := d.buildRoute(clientVRF, body)
	if err != nil {
		return err
	}

	if err := d.kernel.DeleteRoute(route); err != nil {
		return err
	}
	d.logger.V(1).Info("route deleted", "prefix", route.Prefix, "table", route.Table)

	for i := range route.Nexthops {
		nh := &route.Nexthops[i]
		if nh.EncapType != nexthop.EncapVXLAN {
			continue
		}
		key := fdbKey{vtepIndex: info.VTEPIndex(), mac: nh.Vxlan.RemoteMAC, vtep: nh.Gateway.String()}
		if d.fdbRefs[key] == 0 {
			continue
		}
		d.fdbRefs[key]--
		if d.fdbRefs[key] == 0 {
			delete(d.fdbRefs, key)
			if err := d.kernel.RemoveRemoteMAC(info.VTEPIndex(), nh.Vxlan.MAC(), nh.Gateway); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Dispatcher) buildRoute(clientVRF uint32, body *zapi.IPRouteBody) (*nl.Route, *nl.VRFInformation, error) {
	nhs := make([]nexthop.Nexthop, 0, len(body.Nexthops))
	for i := range body.Nexthops {
		nh, err := body.Nexthops[i].Resolve()
		if err != nil {
			return nil, nil, fmt.Errorf("error resolving nexthop %d: %w", i, err)
		}
		nhs = append(nhs, nh)
	}

	table := defaultVRFTable
	var info *nl.VRFInformation
	if clientVRF != 0 {
		cfg := d.store.Get()
		vrfName, vrfCfg, ok := cfg.VRFByID(clientVRF)
		if !ok {
			return nil, nil, fmt.Errorf("no VRF configured for client vrf id %d", clientVRF)
		}
		var err error
		info, err = d.resolver.ResolveL3VNI(vrfName, vrfCfg, nhs)
		if err != nil {
			return nil, nil, err
		}
		table = info.Table()
	}

	route := &nl.Route{
		Table:    table,
		Prefix:   body.PrefixNet(),
		Protocol: routeProtocol(body.Type),
		Priority: int(body.Metric),
		Nexthops: nhs,
	}
	return route, info, nil
}

// routeProtocol maps a client route type to the kernel protocol number
// the FRR suite uses for it.
func routeProtocol(t zapi.RouteType) netlink.RouteProtocol {
	switch t {
	case zapi.RouteKernel, zapi.RouteSystem, zapi.RouteConnect:
		return netlink.RouteProtocol(unix.RTPROT_KERNEL)
	case zapi.RouteStatic:
		return netlink.RouteProtocol(frrunix.RTPROT_ZSTATIC)
	case zapi.RouteRIP, zapi.RouteRIPNG:
		return netlink.RouteProtocol(unix.RTPROT_RIP)
	case zapi.RouteOSPF, zapi.RouteOSPF6:
		return netlink.RouteProtocol(unix.RTPROT_OSPF)
	case zapi.RouteISIS:
		return netlink.RouteProtocol(unix.RTPROT_ISIS)
	case zapi.RouteBGP:
		return netlink.RouteProtocol(unix.RTPROT_BGP)
	default:
		return netlink.RouteProtocol(unix.RTPROT_UNSPEC)
	}
}
