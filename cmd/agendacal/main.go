package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"agendacal/internal/config"
	"agendacal/internal/ics"
	appLog "agendacal/internal/log"
	"agendacal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	cacheDir   string
	once       bool
	logLevel   string
}

func main() {
	flags := parseFlags()
	appLog.SetLevelFromString(flags.logLevel)
	appLog.Info("agendacal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	// Fail fast on a broken timezone instead of serving wrong views.
	if _, err := conf.Location(); err != nil {
		appLog.Error("invalid configured timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"locale", conf.Locale,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"feed_count", len(conf.Feeds),
		"inline_count", len(conf.Appointments),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	store := buildStore(conf, flags.cacheDir)

	// Warm the feed cache before serving.
	if err := store.Refresh(ctx); err != nil {
		appLog.Error("initial feed refresh failed", err)
	}
	if flags.once {
		appLog.Info("single refresh done, exiting")
		return
	}

	// Periodic refresh keeps the HTTP path serving warm cache entries.
	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		refreshCtx, done := context.WithTimeout(ctx, 2*time.Minute)
		defer done()
		if err := store.Refresh(refreshCtx); err != nil {
			appLog.Error("feed refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, store).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("http server failed", err)
		os.Exit(1)
	}
	appLog.Info("agendacal exiting")
}

func buildStore(conf *config.Config, cacheDir string) *ics.Store {
	sources := make([]ics.Source, 0, len(conf.Feeds))
	for _, f := range conf.Feeds {
		if f.URL == "" {
			continue
		}
		id := f.ID
		if id == "" {
			if f.Name != "" {
				id = f.Name
			} else {
				id = f.URL
			}
		}
		sources = append(sources, ics.Source{ID: id, URL: f.URL})
	}

	return ics.NewStore(ics.NewFetcher(cacheDir), sources, conf.Appointments)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/agendacal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.cacheDir, "cache-dir", "/var/lib/agendacal/feed-cache", "Feed cache directory")
	flag.BoolVar(&cfg.once, "once", false, "Run one feed refresh and exit")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info or error")

	flag.Parse()

	return cfg
}
