// Package config builds the daemon's four construction-time
// configuration objects (detector, resolver, route, realtime) plus the
// process-level settings (listen addresses, database DSN, log level)
// from flags and environment, in the pflag + godotenv style this
// project's pack uses for its daemon entry points.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/realtime"
	"github.com/railwayai/railwayai/resolver"
	"github.com/railwayai/railwayai/route"
)

const (
	DefaultListenAddr  = "0.0.0.0:8080"
	DefaultMetricsAddr = "0.0.0.0:9090"
)

// Config is the fully resolved process configuration.
type Config struct {
	Verbose     bool
	ListenAddr  string
	MetricsAddr string
	DatabaseDSN string
	SentryDSN   string
	CORSOrigins []string
	RealtimeMode string // "conservative" | "balanced" | "aggressive"

	Detector conflict.Config
	Resolver resolver.Config
	Route    route.Config
	Realtime realtime.Config
}

// Load parses flags (falling back to environment variables where
// noted) and returns a fully populated Config. godotenv.Load is called
// first and, matching the pack's convention, never overrides variables
// already present in the process environment.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("railwayaid", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "enable verbose (debug) logging")
	listenAddr := fs.String("listen-addr", envOr("RAILWAYAI_LISTEN_ADDR", DefaultListenAddr), "HTTP server listen address")
	metricsAddr := fs.String("metrics-addr", envOr("RAILWAYAI_METRICS_ADDR", DefaultMetricsAddr), "Prometheus metrics listen address")
	databaseDSN := fs.String("database-dsn", os.Getenv("RAILWAYAI_DATABASE_DSN"), "PostgreSQL connection string")
	sentryDSN := fs.String("sentry-dsn", os.Getenv("SENTRY_DSN"), "Sentry DSN for error reporting (disabled if empty)")
	corsOrigins := fs.String("cors-origins", envOr("RAILWAYAI_CORS_ORIGINS", "*"), "comma-separated list of allowed CORS origins")
	realtimeMode := fs.String("realtime-mode", envOr("RAILWAYAI_REALTIME_MODE", "balanced"), "realtime optimizer preset: conservative|balanced|aggressive")

	maxDelay := fs.Duration("resolver-max-delay", 30*time.Minute, "resolver: ceiling on a single applied delay")
	minHeadway := fs.Duration("resolver-min-headway", 2*time.Minute, "resolver: minimum headway enforced between trains")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rtCfg, err := realtimePreset(*realtimeMode)
	if err != nil {
		return Config{}, err
	}

	resolverCfg := resolver.DefaultConfig()
	resolverCfg.MaxDelaySeconds = maxDelay.Seconds()
	resolverCfg.MinHeadwaySeconds = minHeadway.Seconds()

	return Config{
		Verbose:      *verbose,
		ListenAddr:   *listenAddr,
		MetricsAddr:  *metricsAddr,
		DatabaseDSN:  *databaseDSN,
		SentryDSN:    *sentryDSN,
		CORSOrigins:  splitCSV(*corsOrigins),
		RealtimeMode: *realtimeMode,
		Detector:     conflict.DefaultConfig(),
		Resolver:     resolverCfg,
		Route:        route.DefaultConfig(),
		Realtime:     rtCfg,
	}, nil
}

func realtimePreset(mode string) (realtime.Config, error) {
	switch mode {
	case "conservative":
		return realtime.Conservative(), nil
	case "balanced", "":
		return realtime.Balanced(), nil
	case "aggressive":
		return realtime.Aggressive(), nil
	default:
		return realtime.Config{}, fmt.Errorf("config: unknown realtime-mode %q", mode)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
