package monitoring

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/das-schiff-route-agent/pkg/nl"
)

const nlCollectorName = "netlink"

type netlinkCollector struct {
	routesFibDesc     typedFactoryDesc
	vxlanNexthopsDesc typedFactoryDesc
	fdbEntriesDesc    typedFactoryDesc
	netlink           *nl.Manager
}

func init() {
	registerCollector(nlCollectorName, defaultEnabled, NewNetlinkCollector)
}

// NewNetlinkCollector returns a new Collector exposing kernel forwarding state.
func NewNetlinkCollector(d *Deps) (Collector, error) {
	collector := netlinkCollector{
		routesFibDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, nlCollectorName, "routes_fib"),
				"The number of routes currently in the Linux Dataplane.",
				[]string{"table", "vrf", "protocol", "address_family"},
				nil,
			),
			valueType: prometheus.GaugeValue,
		},
		vxlanNexthopsDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, nlCollectorName, "vxlan_nexthops"),
				"The number of VXLAN encapsulated nexthops currently installed.",
				[]string{"table", "vrf"},
				nil,
			),
			valueType: prometheus.GaugeValue,
		},
		fdbEntriesDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, nlCollectorName, "fdb_entries"),
				"The number of bridge forwarding database entries.",
				nil,
				nil,
			),
			valueType: prometheus.GaugeValue,
		},
		netlink: d.Netlink,
	}

	return &collector, nil
}

func (c *netlinkCollector) Update(ch chan<- prometheus.Metric) error {
	routes, err := c.netlink.ListRouteInformation()
	if err != nil {
		return fmt.Errorf("cannot get routes from netlink: %w", err)
	}
	for _, r := range routes {
		ch <- c.routesFibDesc.mustNewConstMetric(float64(r.Quantity), fmt.Sprint(r.TableID), r.VrfName, nl.GetProtocolName(r.RouteProtocol), r.AddressFamily)
		if r.VxlanNexthops > 0 {
			ch <- c.vxlanNexthopsDesc.mustNewConstMetric(float64(r.VxlanNexthops), fmt.Sprint(r.TableID), r.VrfName)
		}
	}

	fdb, err := c.netlink.ListBridgeForwardingTable()
	if err != nil {
		return fmt.Errorf("cannot get bridge fdb from netlink: %w", err)
	}
	ch <- c.fdbEntriesDesc.mustNewConstMetric(float64(len(fdb)))
	return nil
}
