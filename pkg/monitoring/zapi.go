package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/das-schiff-route-agent/pkg/zapi"
)

const zapiCollectorName = "zapi"

type zapiCollector struct {
	clientsDesc      typedFactoryDesc
	messagesDesc     typedFactoryDesc
	decodeErrorsDesc typedFactoryDesc
	stats            *zapi.Stats
}

func init() {
	registerCollector(zapiCollectorName, defaultEnabled, NewZAPICollector)
}

// NewZAPICollector returns a new Collector exposing routing client
// session state.
func NewZAPICollector(d *Deps) (Collector, error) {
	collector := zapiCollector{
		clientsDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, zapiCollectorName, "clients"),
				"The number of connected routing clients.",
				nil,
				nil,
			),
			valueType: prometheus.GaugeValue,
		},
		messagesDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, zapiCollectorName, "messages_total"),
				"The number of messages received from routing clients.",
				nil,
				nil,
			),
			valueType: prometheus.CounterValue,
		},
		decodeErrorsDesc: typedFactoryDesc{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, zapiCollectorName, "decode_errors_total"),
				"The number of client messages that failed to decode.",
				nil,
				nil,
			),
			valueType: prometheus.CounterValue,
		},
		stats: d.ZAPI,
	}

	return &collector, nil
}

func (c *zapiCollector) Update(ch chan<- prometheus.Metric) error {
	ch <- c.clientsDesc.mustNewConstMetric(float64(c.stats.Clients.Load()))
	ch <- c.messagesDesc.mustNewConstMetric(float64(c.stats.Messages.Load()))
	ch <- c.decodeErrorsDesc.mustNewConstMetric(float64(c.stats.DecodeErrors.Load()))
	return nil
}
