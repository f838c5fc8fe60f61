package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alexanderramin/codeclock/internal/clock"
	"github.com/alexanderramin/codeclock/internal/config"
	"github.com/alexanderramin/codeclock/internal/db"
	"github.com/alexanderramin/codeclock/internal/eventlog"
	"github.com/alexanderramin/codeclock/internal/health"
	"github.com/alexanderramin/codeclock/internal/hostlink"
	"github.com/alexanderramin/codeclock/internal/ledger"
	"github.com/alexanderramin/codeclock/internal/metrics"
	"github.com/alexanderramin/codeclock/internal/repository"
	"github.com/alexanderramin/codeclock/internal/server"
	"github.com/alexanderramin/codeclock/internal/tracker"
	"github.com/alexanderramin/codeclock/internal/vcs"
)

// branchCacheTTL is shorter than the default poll interval so every poll
// sees a fresh answer.
const branchCacheTTL = 5 * time.Second

// serve wires the daemon and blocks until ctx is canceled.
func serve(ctx context.Context, cfg config.Config, configPath string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	led, err := ledger.Open(ctx, repository.NewSQLiteEntryRepo(database), db.NewSQLiteUnitOfWork(database), logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var events eventlog.Sink = eventlog.Nop{}
	if cfg.Diagnostics.Enabled {
		w, err := eventlog.Open(cfg.Diagnostics.Dir, clock.Real{}, func(err error) {
			logger.Warn("diagnostic log write failed", "error", err)
		})
		if err != nil {
			logger.Warn("diagnostic log disabled", "error", err)
		} else {
			defer w.Close()
			events = w
		}
	}

	tr := tracker.New(led, vcs.NewGitResolver(branchCacheTTL, logger), cfg.Tracker(),
		tracker.WithLogger(logger),
		tracker.WithObserver(m),
		tracker.WithEventLog(events),
	)
	hub := hostlink.NewHub(tr, logger, hostlink.WithObserver(m))
	reminders := health.NewScheduler(cfg.HealthSettings(), hub, tr,
		health.WithLogger(logger),
		health.WithObserver(m),
	)

	opts := []server.Option{server.WithLogger(logger), server.WithHostLink(hub)}
	if cfg.Server.Metrics {
		opts = append(opts, server.WithMetrics(reg))
	}
	srv := server.New(tr, led, reminders, opts...)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	trackerDone := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(trackerDone)
		if err := tr.Run(ctx); err != nil {
			logger.Error("tracker stopped", "error", err)
		}
	}()

	reminders.Start(ctx)
	defer reminders.Stop()

	if w := startWatcher(ctx, &wg, configPath, logger); w != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applyChanges(ctx, w.Changes(), tr, reminders, logger)
		}()
	}

	logger.Info("codeclock started", "listen", cfg.Server.Listen, "db", cfg.Database.Path)
	err = srv.Run(ctx, cfg.Server.Listen)

	// The tracker flushes the open session on its way out; hosts are
	// disconnected after that so the last reminder answer is not lost.
	cancel()
	<-trackerDone
	hub.Close()
	wg.Wait()
	logger.Info("codeclock stopped")
	return err
}

func startWatcher(ctx context.Context, wg *sync.WaitGroup, path string, logger *slog.Logger) *config.Watcher {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("config watcher disabled", "error", err)
		return nil
	}
	w, err := config.NewWatcher(path, logger)
	if err != nil {
		logger.Warn("config watcher disabled", "error", err)
		return nil
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()
	return w
}

func applyChanges(ctx context.Context, changes <-chan config.Config, tr *tracker.Tracker, reminders *health.Scheduler, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-changes:
			if !ok {
				return
			}
			tr.UpdateSettings(cfg.Tracker())
			reminders.UpdateSettings(cfg.HealthSettings())
			logger.Info("config reloaded")
		}
	}
}
