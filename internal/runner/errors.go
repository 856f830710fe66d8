package runner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotRunning is returned by Stop when no run is in progress.
var ErrNotRunning = errors.New("runner: no run in progress")

// ValidationError aggregates problems found before a run is started.
type ValidationError struct {
	issues []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.issues) == 0 {
		return "invalid run"
	}
	return fmt.Sprintf("invalid run: %s", strings.Join(e.issues, "; "))
}

// Issues returns a copy of the individual validation messages.
func (e *ValidationError) Issues() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.issues))
	copy(out, e.issues)
	return out
}

// ConcurrentRunError is returned by Start while another run is active.
type ConcurrentRunError struct {
	RunID string
}

func (e *ConcurrentRunError) Error() string {
	return fmt.Sprintf("run %s is still in progress", e.RunID)
}
