package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/lblanc/grafana-integration/agent/internal/alerts"
	"github.com/lblanc/grafana-integration/agent/internal/config"
	"github.com/lblanc/grafana-integration/agent/internal/logging"
	"github.com/lblanc/grafana-integration/agent/internal/poller"
	"github.com/lblanc/grafana-integration/agent/internal/render"
	"github.com/lblanc/grafana-integration/agent/internal/scraper"
	"github.com/lblanc/grafana-integration/agent/internal/selfmetrics"
	"github.com/lblanc/grafana-integration/agent/internal/shipper"
	"github.com/lblanc/grafana-integration/agent/internal/store"
	"github.com/lblanc/grafana-integration/agent/internal/ws"
	"github.com/lblanc/grafana-integration/pkg/types"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	opt, err := parseArgs(os.Args[1:])
	if err != nil {
		if isHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if opt.Version {
		fmt.Printf("datacore-poller, version: %s\n", version)
		return
	}

	os.Exit(run(opt))
}

func run(opt *options) int {
	cfg, err := config.Load(opt.Config)
	if err != nil {
		slog.Error("failed to load config", "config", opt.Config, "err", err)
		return 1
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		slog.Error("invalid log level", "err", err)
		return 1
	}
	if opt.Debug {
		level = slog.LevelDebug
	}
	logger, closer, err := logging.New(cfg.Logging, level)
	if err != nil {
		slog.Error("failed to set up logging", "err", err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(logger)

	slog.Info("datacore-poller starting",
		"version", version,
		"config", opt.Config,
		"rest", cfg.REST.BaseURL(),
		"influxdb", cfg.InfluxDB.URL,
		"kinds", cfg.EnabledKinds(),
		"interval", cfg.Poll.Interval)

	ct := cfg.CollectionTime
	times, err := render.NewTimeExtractor(ct.Mode, ct.Prefix, ct.Suffix)
	if err != nil {
		slog.Error("invalid collection time settings", "err", err)
		return 1
	}
	monitorTimes, err := render.NewTimeExtractor(ct.Mode, ct.Prefix, ct.MonitorSuffix)
	if err != nil {
		slog.Error("invalid monitor time settings", "err", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := selfmetrics.New()
	client := scraper.New(cfg.REST, scraper.WithObserver(metrics))
	ship := shipper.New(cfg.InfluxDB)

	history := store.New(cfg.Status.History)
	hub := ws.New(history, cfg.Status.StreamPing)
	alerting := alerts.New(cfg.Alerts)

	p := poller.New(client, ship, cfg.EnabledKinds(),
		poller.WithTimeExtractor(times),
		poller.WithMonitorTimeExtractor(monitorTimes),
		poller.WithSuspect(cfg.Render.IncludeSuspect),
		poller.WithCertCheck(cfg.REST.BaseURL(), cfg.REST.TLS.InsecureSkipVerify),
		poller.WithObserver(metrics),
		poller.WithReportHook(func(rep *types.Report) {
			history.Put(rep)
			hub.Notify()
			alerting.Evaluate(rep)
		}))

	if opt.Once {
		if _, err := p.RunOnce(ctx); err != nil {
			return 1
		}
		return 0
	}

	if cfg.Status.Listen != "" {
		go hub.Run(ctx)
		go serveStatus(ctx, cfg.Status.Listen,
			newStatusHandler(cfg.Status, history, hub, alerting, metrics, cfg.Poll.Interval))
	}

	// Resource flags are applied on reload; other settings need a restart.
	go func() {
		if err := config.Watch(ctx, opt.Config, func(updated *config.Config) {
			kinds := updated.EnabledKinds()
			p.SetKinds(kinds)
			slog.Info("config hot-reloaded", "kinds", kinds)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	p.Run(ctx, cfg.Poll.Interval)
	slog.Info("datacore-poller shutting down")
	return 0
}
