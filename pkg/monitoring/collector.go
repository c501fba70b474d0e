// Copyright 2015 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package monitoring includes all individual collectors to gather and export agent metrics.
package monitoring

import (
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/das-schiff-route-agent/pkg/frr"
	"github.com/telekom/das-schiff-route-agent/pkg/nl"
	"github.com/telekom/das-schiff-route-agent/pkg/zapi"
)

// Namespace defines the common namespace to be used by all metrics.
const namespace = "route_agent"

const defaultEnabled = true

var (
	scrapeDurationDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "scrape", "collector_duration_seconds"),
		"das_schiff_route_agent: Duration of a collector scrape.",
		[]string{"collector"},
		nil,
	)
	scrapeSuccessDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "scrape", "collector_success"),
		"das_schiff_route_agent: Whether a collector succeeded.",
		[]string{"collector"},
		nil,
	)
)

// Deps are the shared handles the collectors scrape from.
type Deps struct {
	Netlink *nl.Manager
	FRR     frr.ManagerInterface
	FRRCli  *frr.Cli
	ZAPI    *zapi.Stats
	Logger  logr.Logger
}

var (
	factories              = make(map[string]func(d *Deps) (Collector, error))
	initiatedCollectorsMtx = sync.Mutex{}
	initiatedCollectors    = make(map[string]Collector)
	collectorState         = make(map[string]*bool)
)

type typedFactoryDesc struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

func (d *typedFactoryDesc) mustNewConstMetric(value float64, labels ...string) prometheus.Metric {
	return prometheus.MustNewConstMetric(d.desc, d.valueType, value, labels...)
}

func registerCollector(collector string, enabled bool, factory func(d *Deps) (Collector, error)) {
	state := enabled
	collectorState[collector] = &state
	factories[collector] = factory
}

// RouteAgentCollector implements the prometheus.Collector interface.
type RouteAgentCollector struct {
	Collectors map[string]Collector
	logger     logr.Logger
}

// NewRouteAgentCollector creates a new RouteAgentCollector. The enabled
// map overrides the default state per collector.
func NewRouteAgentCollector(d *Deps, enabledCollectors map[string]bool) (*RouteAgentCollector, error) {
	collectors := make(map[string]Collector)
	initiatedCollectorsMtx.Lock()
	defer initiatedCollectorsMtx.Unlock()
	for key, enabled := range collectorState {
		state := *enabled
		if override, ok := enabledCollectors[key]; ok {
			state = override
		}
		if !state {
			continue
		}
		if collector, ok := initiatedCollectors[key]; ok {
			collectors[key] = collector
		} else {
			collector, err := factories[key](d)
			if err != nil {
				return nil, err
			}
			collectors[key] = collector
			initiatedCollectors[key] = collector
		}
	}
	return &RouteAgentCollector{Collectors: collectors, logger: d.Logger.WithName("collector")}, nil
}

// Describe implements the prometheus.Collector interface.
func (RouteAgentCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- scrapeDurationDesc
	ch <- scrapeSuccessDesc
}

// Collect implements the prometheus.Collector interface.
func (n RouteAgentCollector) Collect(ch chan<- prometheus.Metric) {
	wg := sync.WaitGroup{}
	wg.Add(len(n.Collectors))
	for name, c := range n.Collectors {
		go func(name string, c Collector) {
			n.execute(name, c, ch)
			wg.Done()
		}(name, c)
	}
	wg.Wait()
}

func (n RouteAgentCollector) execute(name string, c Collector, ch chan<- prometheus.Metric) {
	begin := time.Now()
	err := c.Update(ch)
	duration := time.Since(begin)
	var success float64

	if err != nil {
		if IsNoDataError(err) {
			n.logger.Error(err, "collector returned no data", "name", name, "duration_seconds", duration.Seconds())
		} else {
			n.logger.Error(err, "collector failed", "name", name, "duration_seconds", duration.Seconds())
		}
		success = 0
	} else {
		success = 1
	}
	ch <- prometheus.MustNewConstMetric(scrapeDurationDesc, prometheus.GaugeValue, duration.Seconds(), name)
	ch <- prometheus.MustNewConstMetric(scrapeSuccessDesc, prometheus.GaugeValue, success, name)
}

// Collector is the interface a collector has to implement.
type Collector interface {
	// Get new metrics and expose them via prometheus registry.
	Update(ch chan<- prometheus.Metric) error
}

// ErrNoData indicates the collector found no data to collect, but had no other error.
var ErrNoData = errors.New("collector returned no data")

func IsNoDataError(err error) bool {
	return errors.Is(err, ErrNoData)
}
