package vcs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeGit struct {
	branch string
	err    error
	calls  int
}

func (f *fakeGit) run(ctx context.Context, dir string) (string, error) {
	f.calls++
	return f.branch, f.err
}

func TestCurrentBranch_CachesForTTL(t *testing.T) {
	clk := testutil.NewManualClock(testutil.Epoch)
	git := &fakeGit{branch: "main"}
	r := NewGitResolver(2*time.Second, testutil.DiscardLogger(), WithRunner(git.run), WithClock(clk))
	ctx := context.Background()

	assert.Equal(t, "main", r.CurrentBranch(ctx, "/repo"))
	git.branch = "feature-x"
	assert.Equal(t, "main", r.CurrentBranch(ctx, "/repo"))
	assert.Equal(t, 1, git.calls)

	clk.Advance(2 * time.Second)
	assert.Equal(t, "feature-x", r.CurrentBranch(ctx, "/repo"))
	assert.Equal(t, 2, git.calls)
}

func TestCurrentBranch_Invalidate(t *testing.T) {
	git := &fakeGit{branch: "main"}
	r := NewGitResolver(time.Hour, testutil.DiscardLogger(), WithRunner(git.run))
	ctx := context.Background()

	r.CurrentBranch(ctx, "/repo")
	git.branch = "dev"
	r.Invalidate("/repo")

	assert.Equal(t, "dev", r.CurrentBranch(ctx, "/repo"))
}

func TestCurrentBranch_FailuresResolveToUnknown(t *testing.T) {
	tests := []struct {
		name string
		git  *fakeGit
		dir  string
	}{
		{"command error", &fakeGit{err: errors.New("not a git repository")}, "/tmp"},
		{"empty output", &fakeGit{}, "/tmp"},
		{"no directory", &fakeGit{branch: "main"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewGitResolver(time.Second, testutil.DiscardLogger(), WithRunner(tt.git.run))
			assert.Equal(t, domain.UnknownBranch, r.CurrentBranch(context.Background(), tt.dir))
		})
	}
}

func TestCurrentBranch_RealGitOutsideRepo(t *testing.T) {
	r := NewGitResolver(time.Second, testutil.DiscardLogger())

	// Either git is missing or the temp dir is not a repository.
	assert.Equal(t, domain.UnknownBranch, r.CurrentBranch(context.Background(), t.TempDir()))
}
