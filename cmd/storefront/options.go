package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MrEthical07/storefront"
)

type options struct {
	config      storefront.Config
	redisAddr   string
	metricsAddr string
	logLevel    slog.Level
	args        []string
}

// parseOptions layers flags over environment over defaults. The CLI always
// records metrics and audit events.
func parseOptions(args []string, getenv func(string) string) (options, error) {
	cfg := storefront.DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Audit.Enabled = true

	timeout := cfg.API.Timeout
	if v := getenv("STOREFRONT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return options{}, fmt.Errorf("STOREFRONT_TIMEOUT: %w", err)
		}
		timeout = d
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		opts     options
		logLevel string
	)
	fs.StringVar(&cfg.API.BaseURL, "api", envOr(getenv, "STOREFRONT_API_URL", cfg.API.BaseURL), "inventory service base URL")
	fs.StringVar(&cfg.API.StockFeedURL, "stock-feed", envOr(getenv, "STOREFRONT_STOCK_FEED_URL", ""), "websocket URL of the live stock feed")
	fs.DurationVar(&cfg.API.Timeout, "timeout", timeout, "per-request timeout")
	fs.StringVar(&cfg.Storage.Prefix, "prefix", envOr(getenv, "STOREFRONT_PREFIX", cfg.Storage.Prefix), "storage key prefix")
	fs.StringVar(&opts.redisAddr, "redis-addr", getenv("STOREFRONT_REDIS_ADDR"), "redis address; embedded miniredis when empty")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", getenv("STOREFRONT_METRICS_ADDR"), "serve Prometheus metrics on this address")
	fs.StringVar(&logLevel, "log-level", envOr(getenv, "STOREFRONT_LOG_LEVEL", "warn"), "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if err := opts.logLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return options{}, fmt.Errorf("log level: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}

	opts.config = cfg
	opts.args = fs.Args()
	return opts, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
