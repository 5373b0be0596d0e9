package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/oauth2"

	"github.com/ShinyNito/jobdash/core"
	"github.com/ShinyNito/jobdash/dashboard"
)

const metricsNamespace = "jobdash"

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.logLevel}))
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(cfg, logger, reg)
	if err != nil {
		logger.Error("create dashboard client", slog.Any("error", err))
		os.Exit(1)
	}
	if a.webhookSecret == "" {
		logger.Warn("webhook secret not set, change notifications are disabled")
	}

	server := &http.Server{
		Addr:         cfg.addr,
		Handler:      h2c.NewHandler(a.routes(), &http2.Server{}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Error("listen", slog.String("addr", server.Addr), slog.Any("error", err))
		os.Exit(1)
	}

	go func() {
		logger.Info("dashd listening", slog.String("addr", server.Addr), slog.String("upstream", cfg.upstream))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
		}
	}()

	waitForShutdown(server, logger, 5*time.Second)
}

// newApp 组装缓存、指标与仪表盘客户端，缓存由 app 独占并注入各组件
func newApp(cfg config, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	cache := core.NewCache[[]byte](core.CacheConfig{
		DefaultTTL:   cfg.ttl,
		Logger:       logger,
		Metrics:      core.NewPrometheusCacheMetrics(reg, metricsNamespace),
		SingleFlight: cfg.singleFlight,
	})
	reg.MustRegister(core.NewCacheCollector(cache, metricsNamespace))

	var tokens oauth2.TokenSource
	if cfg.apiToken != "" {
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.apiToken, TokenType: "Bearer"})
	}

	dash, err := dashboard.New(dashboard.Config{
		BaseURL:     cfg.upstream,
		TokenSource: tokens,
		Logger:      logger,
		Cache:       cache,
		TTLs:        cfg.ttls,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		dash:          dash,
		cache:         cache,
		logger:        logger,
		registry:      reg,
		webhookSecret: cfg.webhookSecret,
		now:           time.Now,
	}, nil
}

func waitForShutdown(s *http.Server, logger *slog.Logger, timeout time.Duration) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = s.Shutdown(ctx)
}
