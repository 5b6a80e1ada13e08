// Command railwayaid is the daemon entry point: it loads Config, opens
// the store, wires the telemetry Registry, builds a server.App over an
// empty network, and serves HTTP/websocket traffic until terminated.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/railwayai/railwayai/config"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/server"
	"github.com/railwayai/railwayai/store"
	"github.com/railwayai/railwayai/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New()
	handler := log.StdoutHandler
	if cfg.Verbose {
		handler = log.LvlFilterHandler(log.LvlDebug, handler)
	} else {
		handler = log.LvlFilterHandler(log.LvlInfo, handler)
	}
	logger.SetHandler(handler)
	logger.Info("railwayaid starting", "version", version, "commit", commit)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Release: version}); err != nil {
			return fmt.Errorf("initializing sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	var st store.Store
	if cfg.DatabaseDSN != "" {
		pg, err := store.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer pg.Close()
		st = pg
		logger.Info("store connected and migrated")
	} else {
		logger.Warn("no database-dsn configured; running without persistence")
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewRegistry(registry)
	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	metricsErrCh := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		go func() {
			listener, err := net.Listen("tcp", cfg.MetricsAddr)
			if err != nil {
				metricsErrCh <- fmt.Errorf("metrics listener: %w", err)
				return
			}
			logger.Info("metrics listening", "addr", listener.Addr().String())
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.Serve(listener, mux); err != nil && err != http.ErrServerClosed {
				metricsErrCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	app := server.New(server.Config{
		Graph:          railway.New(),
		NodeIDs:        nil,
		DetectorConfig: cfg.Detector,
		ResolverConfig: cfg.Resolver,
		RouteConfig:    cfg.Route,
		RealtimeConfig: cfg.Realtime,
		Store:          st,
		Metrics:        metrics,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.Handler(cfg.CORSOrigins, cfg.SentryDSN != ""),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown", "error", err)
		}
		return nil
	case err := <-serverErrCh:
		return fmt.Errorf("http server error: %w", err)
	case err := <-metricsErrCh:
		return fmt.Errorf("metrics server error: %w", err)
	}
}
