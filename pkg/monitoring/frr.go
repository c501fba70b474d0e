package monitoring

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/das-schiff-route-agent/pkg/frr"
)

const frrCollectorName = "frr"

type frrCollector struct {
	statusDesc typedFactoryDesc
	vrfVniDesc typedFactoryDesc
	frr        frr.ManagerInterface
	cli        *frr.Cli
}

func init() {
	registerCollector(frrCollectorName, defaultEnabled, NewFRRCollector)
}

// NewFRRCollector returns a new Collector exposing routing suite state.
func NewFRRCollector(d *Deps) (Collector, error) {
	collector := frrCollector{
		statusDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, frrCollectorName, "status"),
				"Whether the routing suite unit is active.",
				[]string{"active_state", "sub_state"},
				nil,
			),
			valueType: prometheus.GaugeValue,
		},
		vrfVniDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, frrCollectorName, "vrf_vni_state"),
				"Whether the L3VNI of a VRF is up in the routing suite.",
				[]string{"vrf", "vni"},
				nil,
			),
			valueType: prometheus.GaugeValue,
		},
		frr: d.FRR,
		cli: d.FRRCli,
	}

	return &collector, nil
}

func (c *frrCollector) Update(ch chan<- prometheus.Metric) error {
	activeState, subState, err := c.frr.GetStatusFRR()
	if err != nil {
		return fmt.Errorf("cannot get unit status: %w", err)
	}
	active := 0.0
	if activeState == "active" {
		active = 1.0
	}
	ch <- c.statusDesc.mustNewConstMetric(active, activeState, subState)

	vnis, err := c.cli.ShowVRFVnis()
	if err != nil {
		return fmt.Errorf("cannot get vrf vni state: %w", err)
	}
	for _, vrf := range vnis.Vrfs {
		up := 0.0
		if vrf.State == "Up" {
			up = 1.0
		}
		ch <- c.vrfVniDesc.mustNewConstMetric(up, vrf.Vrf, fmt.Sprint(vrf.Vni))
	}
	return nil
}
