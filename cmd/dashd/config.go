package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ShinyNito/jobdash/dashboard"
)

const (
	envAPIToken      = "JOBDASH_API_TOKEN"
	envWebhookSecret = "JOBDASH_WEBHOOK_SECRET"
)

type config struct {
	addr          string
	upstream      string
	ttl           time.Duration
	ttls          dashboard.TTLs
	singleFlight  bool
	logLevel      slog.Level
	apiToken      string
	webhookSecret string
}

func parseConfig(args []string, getenv func(string) string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("dashd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg config
	var level string
	fs.StringVar(&cfg.addr, "addr", ":8080", "Listen address")
	fs.StringVar(&cfg.upstream, "upstream", "", "Dashboard API base URL (required)")
	fs.DurationVar(&cfg.ttl, "ttl", 0, "Cache TTL for every resource without its own -ttl-* flag (0 keeps the per-resource defaults)")
	resourceTTLs := map[string]*time.Duration{
		"ttl-jobs":          &cfg.ttls.Jobs,
		"ttl-summary":       &cfg.ttls.Summary,
		"ttl-contacts":      &cfg.ttls.Contacts,
		"ttl-notifications": &cfg.ttls.Notifications,
	}
	fs.DurationVar(&cfg.ttls.Jobs, "ttl-jobs", dashboard.DefaultTTLs.Jobs, "Cache TTL for job lists and jobs")
	fs.DurationVar(&cfg.ttls.Summary, "ttl-summary", dashboard.DefaultTTLs.Summary, "Cache TTL for dashboard summaries")
	fs.DurationVar(&cfg.ttls.Contacts, "ttl-contacts", dashboard.DefaultTTLs.Contacts, "Cache TTL for contact lists")
	fs.DurationVar(&cfg.ttls.Notifications, "ttl-notifications", dashboard.DefaultTTLs.Notifications, "Cache TTL for notifications")
	fs.BoolVar(&cfg.singleFlight, "single-flight", false, "Share one in-flight fetch between concurrent reads of the same key")
	fs.StringVar(&level, "log-level", "info", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if strings.TrimSpace(cfg.upstream) == "" {
		return config{}, fmt.Errorf("-upstream is required")
	}
	if cfg.ttl < 0 {
		return config{}, fmt.Errorf("-ttl must not be negative")
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	for name, ttl := range resourceTTLs {
		if *ttl < 0 {
			return config{}, fmt.Errorf("-%s must not be negative", name)
		}
		if cfg.ttl > 0 && !explicit[name] {
			*ttl = cfg.ttl
		}
	}
	if err := cfg.logLevel.UnmarshalText([]byte(level)); err != nil {
		return config{}, fmt.Errorf("-log-level: %w", err)
	}

	cfg.apiToken = getenv(envAPIToken)
	cfg.webhookSecret = getenv(envWebhookSecret)
	return cfg, nil
}
