package metrics_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/task"
)

func ok(code int, ms float64) task.Outcome {
	return task.Outcome{URL: "http://a", StatusCode: code, ElapsedMs: ms}
}

func failed(kind task.Kind) task.Outcome {
	return task.Outcome{URL: "http://a", Error: string(kind) + ": boom", Kind: kind}
}

func TestCollectorLatencyStats(t *testing.T) {
	c := metrics.NewCollector()

	for _, ms := range []float64{10, 20, 30, 40, 50} {
		c.Record(ok(200, ms))
	}

	stats := c.Stats(0)
	if stats.Total != 5 {
		t.Errorf("expected total 5, got %d", stats.Total)
	}
	if stats.Successes != 5 {
		t.Errorf("expected successes 5, got %d", stats.Successes)
	}
	if stats.MinLatency != 10*time.Millisecond {
		t.Errorf("expected min 10ms, got %s", stats.MinLatency)
	}
	if stats.MaxLatency != 50*time.Millisecond {
		t.Errorf("expected max 50ms, got %s", stats.MaxLatency)
	}
	if stats.MeanLatency != 30*time.Millisecond {
		t.Errorf("expected mean 30ms, got %s", stats.MeanLatency)
	}
	if stats.MeanLatencyMs != 30 {
		t.Errorf("expected mean 30ms in JSON field, got %v", stats.MeanLatencyMs)
	}
}

func TestPercentilesCalculations(t *testing.T) {
	c := metrics.NewCollector()
	for i := 1; i <= 100; i++ {
		c.Record(ok(200, float64(i)))
	}

	stats := c.Stats(time.Second)
	checks := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"p50", stats.P50Latency, 50 * time.Millisecond},
		{"p90", stats.P90Latency, 90 * time.Millisecond},
		{"p99", stats.P99Latency, 99 * time.Millisecond},
	}
	for _, tc := range checks {
		diff := tc.got - tc.want
		if diff < 0 {
			diff = -diff
		}
		if diff > 100*time.Microsecond {
			t.Errorf("%s = %s, want ~%s", tc.name, tc.got, tc.want)
		}
	}
	if stats.RequestsPerSec != 100 {
		t.Errorf("expected 100 req/s, got %v", stats.RequestsPerSec)
	}
}

func TestCollectorCountsByTag(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(ok(200, 5))
	c.Record(ok(204, 5))
	c.Record(ok(404, 5))
	c.Record(ok(503, 5))
	c.Record(failed(task.KindTimeout))
	c.Record(failed(task.KindTimeout))
	c.Record(failed(task.KindDNS))

	stats := c.Stats(0)
	if stats.Total != 7 || stats.Successes != 2 || stats.Warnings != 1 || stats.Errors != 4 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.StatusCodes["200"] != 1 || stats.StatusCodes["404"] != 1 || stats.StatusCodes["503"] != 1 {
		t.Fatalf("status codes = %v", stats.StatusCodes)
	}
	if stats.Failures["timeout"] != 2 || stats.Failures["dns"] != 1 {
		t.Fatalf("failures = %v", stats.Failures)
	}
	// Failures carry no latency sample.
	if stats.MinLatencyMs != 5 || stats.MaxLatencyMs != 5 {
		t.Fatalf("latency polluted by failures: min %v max %v", stats.MinLatencyMs, stats.MaxLatencyMs)
	}
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := metrics.NewCollector()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				c.Record(ok(200, 1))
			}
		}()
	}
	wg.Wait()

	if got := c.Stats(0).Total; got != 2000 {
		t.Fatalf("expected 2000, got %d", got)
	}
}

func TestStatsJSON(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(ok(200, 12.5))
	c.Record(failed(task.KindNetwork))

	data, err := json.Marshal(c.Stats(2 * time.Second))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"total", "successes", "errors", "p99_latency_ms", "duration_ms", "status_codes", "failures"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if _, ok := decoded["MinLatency"]; ok {
		t.Error("raw duration fields must not be serialized")
	}
}

func TestEmptyCollector(t *testing.T) {
	stats := metrics.NewCollector().Stats(time.Second)
	if stats.Total != 0 || stats.RequestsPerSec != 0 || stats.P50Latency != 0 {
		t.Fatalf("unexpected stats for empty collector %+v", stats)
	}
	if stats.StatusCodes != nil || stats.Failures != nil {
		t.Fatal("expected nil maps for empty collector")
	}
}
