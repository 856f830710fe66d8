package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/volley/internal/task"
)

// Collector aggregates request outcomes in a thread-safe manner. It
// satisfies runner.Recorder.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	tags       map[task.Tag]int64
	statuses   map[string]int64
	kinds      map[task.Kind]int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	timed      int64
}

// Stats represents aggregated metrics.
type Stats struct {
	Total          int64         `json:"total"`
	Successes      int64         `json:"successes"`
	Warnings       int64         `json:"warnings"`
	Errors         int64         `json:"errors"`
	MinLatency     time.Duration `json:"-"`
	MaxLatency     time.Duration `json:"-"`
	MeanLatency    time.Duration `json:"-"`
	P50Latency     time.Duration `json:"-"`
	P90Latency     time.Duration `json:"-"`
	P99Latency     time.Duration `json:"-"`
	Duration       time.Duration `json:"-"`
	RequestsPerSec float64       `json:"requests_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	DurationMs    float64 `json:"duration_ms"`

	StatusCodes map[string]int `json:"status_codes,omitempty"`
	Failures    map[string]int `json:"failures,omitempty"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:     h,
		tags:     make(map[task.Tag]int64, 3),
		statuses: make(map[string]int64),
		kinds:    make(map[task.Kind]int64),
	}
}

// Record adds one outcome. Only outcomes with a status code contribute a
// latency sample; failures are counted by kind.
func (c *Collector) Record(out task.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tags[out.Tag()]++
	if !out.Success() {
		kind := out.Kind
		if kind == "" {
			kind = task.KindNetwork
		}
		c.kinds[kind]++
		return
	}

	c.statuses[strconv.Itoa(out.StatusCode)]++

	latency := time.Duration(out.ElapsedMs * float64(time.Millisecond))
	us := latency.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)

	c.timed++
	c.sumLatency += latency
	if c.timed == 1 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Successes:  c.tags[task.TagSuccess],
		Warnings:   c.tags[task.TagWarning],
		Errors:     c.tags[task.TagError],
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
	}
	stats.Total = stats.Successes + stats.Warnings + stats.Errors

	if c.timed > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / c.timed)
	}
	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = toMillis(stats.MinLatency)
	stats.MaxLatencyMs = toMillis(stats.MaxLatency)
	stats.MeanLatencyMs = toMillis(stats.MeanLatency)
	stats.P50LatencyMs = toMillis(stats.P50Latency)
	stats.P90LatencyMs = toMillis(stats.P90Latency)
	stats.P99LatencyMs = toMillis(stats.P99Latency)

	stats.Duration = elapsed
	stats.DurationMs = toMillis(elapsed)
	if elapsed > 0 && stats.Total > 0 {
		stats.RequestsPerSec = float64(stats.Total) / elapsed.Seconds()
	}

	if len(c.statuses) > 0 {
		stats.StatusCodes = make(map[string]int, len(c.statuses))
		for k, v := range c.statuses {
			stats.StatusCodes[k] = int(v)
		}
	}
	if len(c.kinds) > 0 {
		stats.Failures = make(map[string]int, len(c.kinds))
		for k, v := range c.kinds {
			stats.Failures[string(k)] = int(v)
		}
	}
	return stats
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
