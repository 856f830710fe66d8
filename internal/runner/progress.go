package runner

import (
	"fmt"
	"strings"
	"time"
)

// ProgressMode selects how Report counts completed work.
type ProgressMode string

const (
	// ProgressModeRun counts every drained outcome against the run total.
	ProgressModeRun ProgressMode = "run"
	// ProgressModePass counts only the latest reconciliation pass: the total
	// is what was pending when the pass began, completed is what it drained.
	ProgressModePass ProgressMode = "pass"
)

// ParseProgressMode accepts "run" or "pass"; empty means run.
func ParseProgressMode(s string) (ProgressMode, error) {
	switch ProgressMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProgressModeRun:
		return ProgressModeRun, nil
	case ProgressModePass:
		return ProgressModePass, nil
	default:
		return "", fmt.Errorf("unsupported progress mode %q (want run or pass)", s)
	}
}

// Snapshot is a consistent, read-only view of a run.
type Snapshot struct {
	RunID     string
	State     State
	Total     int
	Completed int
	Pending   int

	// PassTotal is the pending count when the latest pass began and
	// PassDrained the number of outcomes that pass appended.
	PassTotal   int
	PassDrained int

	Succeeded int
	Warnings  int
	Errors    int

	StartedAt time.Time
	EndedAt   time.Time
}

// Elapsed returns how long the run has been (or was) active.
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if !s.EndedAt.IsZero() {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// Progress is a completed/total pair with its fraction.
type Progress struct {
	Completed int
	Total     int
	Fraction  float64
}

// Report derives progress from a snapshot. Fraction is 0 when Total is 0.
func Report(s Snapshot, mode ProgressMode) Progress {
	p := Progress{Completed: s.Completed, Total: s.Total}
	if mode == ProgressModePass {
		p = Progress{Completed: s.PassDrained, Total: s.PassTotal}
	}
	if p.Total > 0 {
		p.Fraction = float64(p.Completed) / float64(p.Total)
	}
	return p
}

// Percent returns the fraction as a whole-number percentage.
func (p Progress) Percent() int {
	return int(p.Fraction*100 + 0.5)
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d (%d%%)", p.Completed, p.Total, p.Percent())
}
