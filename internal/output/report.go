package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/runner"
)

// Summary is everything the end-of-run report shows.
type Summary struct {
	RunID    string          `json:"run_id"`
	State    string          `json:"state"`
	Total    int             `json:"total"`
	Captured int             `json:"captured"`
	Progress runner.Progress `json:"-"`
	Stats    metrics.Stats   `json:"stats"`
}

// NewSummary combines a run snapshot with collector statistics.
func NewSummary(s runner.Snapshot, stats metrics.Stats) Summary {
	return Summary{
		RunID:    s.RunID,
		State:    s.State.String(),
		Total:    s.Total,
		Captured: s.Completed,
		Progress: runner.Report(s, runner.ProgressModeRun),
		Stats:    stats,
	}
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, sum Summary) {
	stats := sum.Stats
	fmt.Fprintln(w, "\n--- Volley Results ---")
	fmt.Fprintf(w, "Run:               %s (%s)\n", sum.RunID, sum.State)
	fmt.Fprintf(w, "Progress:          %s\n", sum.Progress)
	fmt.Fprintf(w, "Successful (2xx):  %d\n", stats.Successes)
	fmt.Fprintf(w, "Warnings (4xx):    %d\n", stats.Warnings)
	fmt.Fprintf(w, "Errors:            %d\n", stats.Errors)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", stats.RequestsPerSec)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if rows := metrics.FlattenBuckets(stats.StatusCodes); len(rows) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		for _, row := range rows {
			fmt.Fprintf(w, "  %s: %d\n", row.Label, row.Count)
		}
	}
	if rows := metrics.FlattenBuckets(stats.Failures); len(rows) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, row := range rows {
			fmt.Fprintf(w, "  %s: %d\n", metrics.FailureLabel(row.Label), row.Count)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, sum Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}
