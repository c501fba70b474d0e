/*
Copyright 2022.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/das-schiff-route-agent/pkg/config"
	"github.com/telekom/das-schiff-route-agent/pkg/dplane"
	"github.com/telekom/das-schiff-route-agent/pkg/frr"
	"github.com/telekom/das-schiff-route-agent/pkg/monitoring"
	"github.com/telekom/das-schiff-route-agent/pkg/nl"
	"github.com/telekom/das-schiff-route-agent/pkg/version"
	"github.com/telekom/das-schiff-route-agent/pkg/zapi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	version.Get().Print(os.Args[0])
	var socketPath string
	var metricsAddr string
	var logFile string
	var debugNetlink bool
	flag.StringVar(&socketPath, "socket-path", "",
		"Unix socket for routing clients. Overrides the value from the config file.")
	flag.StringVar(&metricsAddr, "metrics-listen-address", ":7081",
		"The address to listen on for HTTP metric requests.")
	flag.StringVar(&logFile, "log-file", "",
		"Write logs to this rotating file in addition to stderr.")
	flag.BoolVar(&debugNetlink, "debug-netlink", false,
		"Log kernel-bound netlink messages.")
	flag.Parse()

	log := setupLogger(logFile)
	setupLog := log.WithName("setup")

	cfg, err := config.LoadConfig()
	if err != nil {
		setupLog.Error(err, "unable to load config")
		os.Exit(1)
	}
	store := config.NewStore(cfg)
	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	if socketPath == "" {
		socketPath = zapi.DefaultSocketPath
	}

	netlinkManager := nl.NewManager(&nl.Toolkit{}, log)
	netlinkManager.SetKernelDebug(debugNetlink || cfg.DebugNetlink)

	frrManager := frr.NewFRRManager()
	if activeState, subState, err := frrManager.GetStatusFRR(); err != nil {
		setupLog.Error(err, "unable to query routing suite status")
	} else {
		setupLog.Info("routing suite status", "activeState", activeState, "subState", subState)
	}

	dispatcher := dplane.NewDispatcher(netlinkManager, store, log)
	server := zapi.NewServer(socketPath, dispatcher, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := config.NewWatcher(store, func(c *config.Config) {
		netlinkManager.SetKernelDebug(debugNetlink || c.DebugNetlink)
	}, log)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			setupLog.Error(err, "config watcher failed")
		}
	}()

	if err := serveMetrics(ctx, metricsAddr, netlinkManager, frrManager, server, log); err != nil {
		setupLog.Error(err, "unable to serve metrics")
		os.Exit(1)
	}

	setupLog.Info("starting server", "socket", socketPath)
	if err := server.Run(ctx); err != nil {
		setupLog.Error(err, "server failed")
		os.Exit(1)
	}
}

func setupLogger(logFile string) logr.Logger {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	zc.DisableStacktrace = true
	z, _ := zc.Build()

	if logFile != "" {
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 10,
			MaxAge:     7, // days
			Compress:   true,
		})
		encoder := zapcore.NewJSONEncoder(zc.EncoderConfig)
		z = zap.New(zapcore.NewTee(
			z.Core(),
			zapcore.NewCore(encoder, sink, zc.Level),
		))
	}
	return zapr.NewLogger(z)
}

func serveMetrics(ctx context.Context, addr string, netlinkManager *nl.Manager, frrManager *frr.Manager, server *zapi.Server, log logr.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewBuildInfoCollector())
	reg.MustRegister(collectors.NewGoCollector())

	collector, err := monitoring.NewRouteAgentCollector(&monitoring.Deps{
		Netlink: netlinkManager,
		FRR:     frrManager,
		FRRCli:  frrManager.Cli,
		ZAPI:    server.Stats(),
		Logger:  log,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create collector: %w", err)
	}
	reg.MustRegister(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		reg,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Timeout:           time.Minute,
		},
	))

	httpServer := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       time.Minute,
		Handler:           mux,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server failed")
		}
	}()
	return nil
}
