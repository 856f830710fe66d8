package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/volley/internal/runner"
)

// SnapshotSource is anything that can report the state of a run.
type SnapshotSource interface {
	Snapshot() runner.Snapshot
}

// ProgressReporter displays real-time progress updates on a single line.
type ProgressReporter struct {
	source   SnapshotSource
	mode     runner.ProgressMode
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(source SnapshotSource, mode runner.ProgressMode, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &ProgressReporter{
		source:   source,
		mode:     mode,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and prints the final line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprintln(p.writer, ProgressLine(p.source.Snapshot(), p.mode))
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, ProgressLine(p.source.Snapshot(), p.mode))
		case <-p.done:
			return
		}
	}
}

// ProgressLine renders a carriage-return prefixed status line.
func ProgressLine(s runner.Snapshot, mode runner.ProgressMode) string {
	return fmt.Sprintf("\rProgress: %s | ok %d | warn %d | err %d",
		runner.Report(s, mode), s.Succeeded, s.Warnings, s.Errors)
}
