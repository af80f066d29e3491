// Command storefront is a terminal client for the inventory storefront.
//
// Configuration is read from a .env file, then STOREFRONT_* environment
// variables, then flags. State lives in Redis when STOREFRONT_REDIS_ADDR is
// set; otherwise an embedded miniredis holds it for the life of the process.
//
// With arguments it runs one command; without, it reads commands from stdin:
//
//	storefront login customer@example.com secret
//	storefront -api http://inventory:8080/api products
//	printf 'login a@b.c pw\nadd 3\ncheckout\n' | storefront
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/storefront"
	"github.com/MrEthical07/storefront/metrics/export/prometheus"
	"github.com/MrEthical07/storefront/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(2)
	}

	opts, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.logLevel}))

	// ---------- storage ----------
	addr := opts.redisAddr
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		defer mr.Close()
		addr = mr.Addr()
		logger.Warn("no redis configured, state is kept for this process only", "addr", addr)
	}
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer rdb.Close()

	// ---------- client ----------
	client, err := storefront.New().
		WithConfig(opts.config).
		WithRedis(rdb).
		WithLogger(logger).
		WithAuditSink(storefront.NewSlogSink(logger)).
		WithNavigator(session.NavigatorFunc(func(_ context.Context, loc session.Location) {
			fmt.Fprintf(out, "-> %s (%s)\n", loc, loc.Reason)
		})).
		Build()
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}
	defer client.Close()

	client.Hydrate(ctx)

	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: prometheus.NewPrometheusExporter(client).Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()
	}

	sh := &shell{client: client, out: out}
	if len(opts.args) > 0 {
		return sh.exec(ctx, opts.args)
	}
	return sh.repl(ctx, in)
}
