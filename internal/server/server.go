// Package server exposes the daemon over HTTP: status and aggregation
// queries, tracking commands, ledger maintenance, the editor websocket and
// prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/codeclock/internal/clock"
	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/ledger"
	"github.com/alexanderramin/codeclock/internal/tracker"
)

// Tracker is the slice of *tracker.Tracker the API drives.
type Tracker interface {
	Status() tracker.Status
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Save(ctx context.Context) error
}

// Ledger is the slice of *ledger.Ledger the API reads and maintains.
type Ledger interface {
	Snapshot() ([]domain.TimeEntry, uint64)
	Search(q ledger.Query) []domain.TimeEntry
	BranchesByProject(project string) []string
	ResetToday(ctx context.Context, now time.Time) (int, error)
	ResetAll(ctx context.Context) (int, error)
	Import(ctx context.Context, entries []domain.TimeEntry) (int, error)
}

// Reminders triggers a test reminder.
type Reminders interface {
	TriggerTest(ctx context.Context) domain.ReminderResponse
}

// Server is the daemon's HTTP API.
type Server struct {
	tracker   Tracker
	ledger    Ledger
	reminders Reminders
	clock     clock.Clock
	logger    *slog.Logger
	router    *gin.Engine
}

type Option func(*config)

type config struct {
	clock    clock.Clock
	logger   *slog.Logger
	hostLink http.Handler
	gatherer prometheus.Gatherer
}

func WithClock(c clock.Clock) Option {
	return func(cfg *config) { cfg.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// WithHostLink mounts h at GET /ws.
func WithHostLink(h http.Handler) Option {
	return func(cfg *config) { cfg.hostLink = h }
}

// WithMetrics exposes g at GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(cfg *config) { cfg.gatherer = g }
}

func New(t Tracker, l Ledger, r Reminders, opts ...Option) *Server {
	cfg := config{clock: clock.Real{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	router := gin.New()
	// Project names may contain slashes.
	router.UseRawPath = true
	router.Use(gin.Recovery(), requestLogger(cfg.logger))

	s := &Server{
		tracker:   t,
		ledger:    l,
		reminders: r,
		clock:     cfg.clock,
		logger:    cfg.logger,
		router:    router,
	}

	router.GET("/status", s.handleStatus)
	router.GET("/totals", s.handleTotals)
	router.GET("/summary", s.handleSummary)
	router.GET("/entries", s.handleEntries)
	router.GET("/projects/:project/branches", s.handleBranches)

	tracking := router.Group("/tracking")
	{
		tracking.POST("/start", s.command(t.Start))
		tracking.POST("/stop", s.command(t.Stop))
		tracking.POST("/pause", s.command(t.Pause))
		tracking.POST("/resume", s.command(t.Resume))
		tracking.POST("/save", s.command(t.Save))
	}

	router.POST("/reset/today", s.handleResetToday)
	router.POST("/reset/all", s.handleResetAll)
	router.POST("/import", s.handleImport)
	router.POST("/reminders/test", s.handleReminderTest)

	if cfg.hostLink != nil {
		router.GET("/ws", gin.WrapH(cfg.hostLink))
	}
	if cfg.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{})))
	}

	return s
}

// Handler returns the routed engine, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
