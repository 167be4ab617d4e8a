// Package progress carries import progress from the orchestrator to
// whatever displays it: a log, a terminal UI or a polled HTTP endpoint.
package progress

import (
	"log/slog"
	"sync"
)

// Status of an import run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Snapshot is the progress of a run at one point in time.
type Snapshot struct {
	Status      Status `json:"status"`
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CurrentBook string `json:"current_book"`
}

// Done reports whether the run has finished, successfully or not.
func (s Snapshot) Done() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// Reporter receives progress snapshots. Implementations must be safe to
// call from the importing goroutine while being read from another.
type Reporter interface {
	Report(Snapshot)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Snapshot)

// Report calls f(s).
func (f ReporterFunc) Report(s Snapshot) { f(s) }

// Discard drops every snapshot.
var Discard Reporter = ReporterFunc(func(Snapshot) {})

// Multi fans a snapshot out to several reporters. Nil entries are skipped.
func Multi(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return ReporterFunc(func(s Snapshot) {
		for _, r := range rs {
			r.Report(s)
		}
	})
}

// Tracker is a process-local store of the latest snapshot per session.
// The last write wins; concurrent imports under one session overwrite
// each other.
type Tracker struct {
	mu    sync.RWMutex
	slots map[string]Snapshot
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{slots: make(map[string]Snapshot)}
}

// Reporter returns a Reporter that writes into the session's slot.
func (t *Tracker) Reporter(session string) Reporter {
	return ReporterFunc(func(s Snapshot) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.slots[session] = s
	})
}

// Get returns the latest snapshot of a session.
func (t *Tracker) Get(session string) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.slots[session]
	return s, ok
}

// Delete forgets a session.
func (t *Tracker) Delete(session string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.slots, session)
}

// Log reports through slog: every n-th row at Info, plus start and finish.
type Log struct {
	logger *slog.Logger
	every  int
}

// NewLog creates a Log reporter. A nil logger means slog.Default().
func NewLog(logger *slog.Logger, every int) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	if every < 1 {
		every = 1
	}
	return &Log{logger: logger, every: every}
}

// Report implements Reporter.
func (l *Log) Report(s Snapshot) {
	switch {
	case s.Done():
		l.logger.Info("Import finished", "status", s.Status, "rows", s.Current, "total", s.Total)
	case s.Current == 0:
		l.logger.Info("Import started", "total", s.Total)
	case s.Current%l.every == 0:
		l.logger.Info("Import progress", "current", s.Current, "total", s.Total, "book", s.CurrentBook)
	}
}
