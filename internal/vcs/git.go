// Package vcs resolves the checked-out branch of a workspace directory.
package vcs

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/codeclock/internal/clock"
	"github.com/alexanderramin/codeclock/internal/domain"
)

// Resolver reports the current branch for a directory. Implementations
// never fail: anything that goes wrong resolves to domain.UnknownBranch.
// Invalidate forgets any cached answer for dir.
type Resolver interface {
	CurrentBranch(ctx context.Context, dir string) string
	Invalidate(dir string)
}

// RunFunc executes `git rev-parse --abbrev-ref HEAD` in dir.
type RunFunc func(ctx context.Context, dir string) (string, error)

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 3 * time.Second

func runGit(ctx context.Context, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

type cached struct {
	branch    string
	updatedAt time.Time
}

// GitResolver shells out to git and caches each answer for ttl.
type GitResolver struct {
	run    RunFunc
	clock  clock.Clock
	logger *slog.Logger
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]cached
}

type Option func(*GitResolver)

// WithRunner replaces the git invocation.
func WithRunner(run RunFunc) Option {
	return func(r *GitResolver) { r.run = run }
}

func WithClock(c clock.Clock) Option {
	return func(r *GitResolver) { r.clock = c }
}

func NewGitResolver(ttl time.Duration, logger *slog.Logger, opts ...Option) *GitResolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &GitResolver{
		run:    runGit,
		clock:  clock.Real{},
		logger: logger,
		ttl:    ttl,
		cache:  make(map[string]cached),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *GitResolver) CurrentBranch(ctx context.Context, dir string) string {
	if dir == "" {
		return domain.UnknownBranch
	}
	if b, ok := r.get(dir); ok {
		return b
	}

	branch, err := r.run(ctx, dir)
	if err != nil || branch == "" {
		r.logger.Debug("branch lookup failed", "dir", dir, "error", err)
		branch = domain.UnknownBranch
	}
	r.set(dir, branch)
	return branch
}

// Invalidate drops the cached answer for dir.
func (r *GitResolver) Invalidate(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, dir)
}

func (r *GitResolver) get(dir string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cache[dir]
	if !ok || r.clock.Now().Sub(c.updatedAt) >= r.ttl {
		return "", false
	}
	return c.branch, true
}

func (r *GitResolver) set(dir, branch string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[dir] = cached{branch: branch, updatedAt: r.clock.Now()}
}
