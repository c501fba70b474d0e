package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/das-schiff-route-agent/pkg/frr"
	"github.com/telekom/das-schiff-route-agent/pkg/monitoring"
	"github.com/telekom/das-schiff-route-agent/pkg/nl"
	"github.com/telekom/das-schiff-route-agent/pkg/version"
	"go.uber.org/zap"
)

const (
	twenty = 20
)

func main() {
	version.Get().Print(os.Args[0])
	var addr string
	flag.StringVar(&addr, "listen-address", ":7082", "The address to listen on for HTTP requests.")
	flag.Parse()

	zc := zap.NewProductionConfig()
	zc.DisableStacktrace = true
	z, _ := zc.Build()
	logger := zapr.NewLogger(z)
	setupLog := logger.WithName("setup")

	frrManager := frr.NewFRRManager()

	// Setup a new registry.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector())
	reg.MustRegister(collectors.NewGoCollector())

	collector, err := monitoring.NewRouteAgentCollector(&monitoring.Deps{
		Netlink: nl.NewManager(&nl.Toolkit{}, logger),
		FRR:     frrManager,
		FRRCli:  frrManager.Cli,
		Logger:  logger,
	}, map[string]bool{
		"frr":     true,
		"netlink": true,
		"zapi":    false,
	})
	if err != nil {
		log.Fatal(fmt.Errorf("failed to create collector: %w", err))
	}
	reg.MustRegister(collector)

	setupLog.Info("configured Prometheus registry")

	// Expose the registered metrics and show command proxy via HTTP.
	mux := http.NewServeMux()
	monitoring.NewEndpoint(frrManager.Cli).CreateMux(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(
		reg,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
			Timeout:           time.Minute,
		},
	))

	server := http.Server{
		Addr:              addr,
		ReadHeaderTimeout: twenty * time.Second,
		ReadTimeout:       time.Minute,
		Handler:           mux,
	}

	setupLog.Info("created server, starting...", "Addr", server.Addr,
		"ReadHeaderTimeout", server.ReadHeaderTimeout, "ReadTimeout", server.ReadTimeout)

	if err := server.ListenAndServe(); err != nil {
		log.Fatal(fmt.Errorf("failed to start server: %w", err))
	}
}
