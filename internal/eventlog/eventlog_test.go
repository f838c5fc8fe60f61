package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/codeclock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []Line {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []Line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var l Line
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &l))
		out = append(out, l)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestWriter_FieldsPerKind(t *testing.T) {
	dir := t.TempDir()
	clk := testutil.NewManualClock(testutil.Epoch)
	w, err := Open(dir, clk, nil)
	require.NoError(t, err)
	defer w.Close()

	w.Log(Event{Kind: TrackingStarted, Project: "Alpha", Branch: "main", Reason: "activity"})
	w.Log(Event{Kind: SessionSaved, Project: "Alpha", Branch: "main", Reason: "periodic save", Duration: 299600 * time.Millisecond})
	w.Log(Event{Kind: BranchChanged, Project: "Alpha", Branch: "dev", From: "main", To: "dev"})
	w.Log(Event{Kind: InactivityDetected, Project: "Alpha", Branch: "dev", InactiveFor: 5 * time.Minute})

	lines := readLines(t, filepath.Join(dir, "timetracker_2024-03-13.log"))
	require.Len(t, lines, 4)

	assert.Equal(t, int64(1), lines[0].Seq)
	assert.Equal(t, "09:00:00", lines[0].Time)
	assert.Equal(t, "activity", lines[0].Reason)
	assert.Empty(t, lines[0].Duration)

	assert.Equal(t, "300s", lines[1].Duration)
	assert.Equal(t, "periodic save", lines[1].Reason)

	assert.Equal(t, "main", lines[2].From)
	assert.Equal(t, "dev", lines[2].To)
	assert.Empty(t, lines[2].Reason)

	assert.Equal(t, "300s", lines[3].InactiveFor)
	assert.Equal(t, int64(4), lines[3].Seq)
}

func TestWriter_SequenceRestartsEachDay(t *testing.T) {
	dir := t.TempDir()
	clk := testutil.NewManualClock(testutil.Epoch)
	w, err := Open(dir, clk, nil)
	require.NoError(t, err)
	defer w.Close()

	w.Log(Event{Kind: TrackingStarted, Project: "Alpha"})
	w.Log(Event{Kind: TrackingStopped, Project: "Alpha"})
	clk.Advance(24 * time.Hour)
	w.Log(Event{Kind: TrackingStarted, Project: "Alpha"})

	first := readLines(t, filepath.Join(dir, "timetracker_2024-03-13.log"))
	second := readLines(t, filepath.Join(dir, "timetracker_2024-03-14.log"))
	require.Len(t, first, 2)
	require.Len(t, second, 1)
	assert.Equal(t, int64(1), second[0].Seq)
}

func TestWriter_ResumesSequenceAfterReopen(t *testing.T) {
	dir := t.TempDir()
	clk := testutil.NewManualClock(testutil.Epoch)

	w, err := Open(dir, clk, nil)
	require.NoError(t, err)
	w.Log(Event{Kind: TrackingStarted})
	w.Log(Event{Kind: TrackingStopped})
	require.NoError(t, w.Close())

	w, err = Open(dir, clk, nil)
	require.NoError(t, err)
	defer w.Close()
	w.Log(Event{Kind: TrackingStarted})

	lines := readLines(t, filepath.Join(dir, FileName(testutil.Epoch)))
	require.Len(t, lines, 3)
	assert.Equal(t, int64(3), lines[2].Seq)
}

func TestWriter_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	var got []error
	w, err := Open(dir, testutil.NewManualClock(testutil.Epoch), func(err error) { got = append(got, err) })
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0500))
	t.Cleanup(func() { os.Chmod(dir, 0755) })
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	w.Log(Event{Kind: TrackingStarted})

	assert.Len(t, got, 1)
}
