// Package eventlog writes the optional diagnostic trail of tracker decisions
// as JSON lines, one file per local day.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexanderramin/codeclock/internal/clock"
	"github.com/alexanderramin/codeclock/internal/domain"
)

type Kind string

const (
	TrackingStarted    Kind = "tracking_started"
	TrackingStopped    Kind = "tracking_stopped"
	SessionSaved       Kind = "session_saved"
	BranchChanged      Kind = "branch_changed"
	InactivityDetected Kind = "inactivity_detected"
)

// Event is what the tracker reports. Writer fills in the sequence number
// and the time.
type Event struct {
	Kind        Kind
	Project     string
	Branch      string
	Reason      string
	Duration    time.Duration
	From        string
	To          string
	InactiveFor time.Duration
}

// Line is one serialized record.
type Line struct {
	Seq         int64  `json:"seq"`
	Time        string `json:"time"`
	Event       Kind   `json:"event"`
	Project     string `json:"project"`
	Branch      string `json:"branch"`
	Reason      string `json:"reason,omitempty"`
	Duration    string `json:"duration,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	InactiveFor string `json:"inactive_for,omitempty"`
}

// Sink receives tracker events.
type Sink interface {
	Log(e Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Log(Event) {}

// FileName returns the log file name for the local date of t.
func FileName(t time.Time) string {
	return "timetracker_" + domain.LocalDate(t) + ".log"
}

// Writer appends events to <dir>/timetracker_YYYY-MM-DD.log. The sequence
// number restarts at 1 each day.
type Writer struct {
	dir   string
	clock clock.Clock

	mu   sync.Mutex
	day  string
	seq  int64
	file *os.File
	err  func(error)
}

// Open creates dir if needed. onError is called for write failures, which
// never propagate to the tracker.
func Open(dir string, clk clock.Clock, onError func(error)) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Writer{dir: dir, clock: clk, err: onError}, nil
}

func (w *Writer) Log(e Event) {
	if err := w.write(e); err != nil {
		w.err(err)
	}
}

func (w *Writer) write(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	if err := w.rollLocked(now); err != nil {
		return err
	}
	w.seq++

	line := Line{
		Seq:     w.seq,
		Time:    now.Local().Format("15:04:05"),
		Event:   e.Kind,
		Project: e.Project,
		Branch:  e.Branch,
	}
	switch e.Kind {
	case TrackingStarted, TrackingStopped:
		line.Reason = e.Reason
	case SessionSaved:
		line.Reason = e.Reason
		line.Duration = seconds(e.Duration)
	case BranchChanged:
		line.From, line.To = e.From, e.To
	case InactivityDetected:
		line.InactiveFor = seconds(e.InactiveFor)
	}

	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("encoding log line: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("writing log line: %w", err)
	}
	return nil
}

// rollLocked switches files when the local date changes, resuming the
// sequence from whatever the day's file already holds.
func (w *Writer) rollLocked(now time.Time) error {
	day := domain.LocalDate(now)
	if w.file != nil && day == w.day {
		return nil
	}
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	path := filepath.Join(w.dir, FileName(now))
	seq, err := lastSeq(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	w.file, w.day, w.seq = f, day, seq
	return nil
}

func lastSeq(path string) (int64, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading log file: %w", err)
	}
	defer f.Close()

	var seq int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var l Line
		if json.Unmarshal(scanner.Bytes(), &l) == nil && l.Seq > seq {
			seq = l.Seq
		}
	}
	return seq, scanner.Err()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%ds", int64(math.Round(d.Seconds())))
}
