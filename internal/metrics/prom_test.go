package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/task"
)

func TestPromRecorderCounts(t *testing.T) {
	r := metrics.NewPromRecorder()
	r.Record(ok(200, 10))
	r.Record(ok(200, 20))
	r.Record(ok(404, 5))
	r.Record(failed(task.KindTimeout))
	r.SetRunParams(4, 2)

	expected := `
# HELP volley_request_status_total Completed requests by status code and tag
# TYPE volley_request_status_total counter
volley_request_status_total{status="200",tag="success"} 2
volley_request_status_total{status="404",tag="warning"} 1
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "volley_request_status_total"); err != nil {
		t.Fatalf("status counters: %v", err)
	}

	expected = `
# HELP volley_request_failures_total Requests that produced no status code, by failure kind
# TYPE volley_request_failures_total counter
volley_request_failures_total{kind="timeout"} 1
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "volley_request_failures_total"); err != nil {
		t.Fatalf("failure counters: %v", err)
	}

	if n, err := testutil.GatherAndCount(r.Registry(), "volley_params"); err != nil || n != 2 {
		t.Fatalf("params series = %d, %v", n, err)
	}
}

func TestPromRecorderHandler(t *testing.T) {
	r := metrics.NewPromRecorder()
	r.Record(ok(201, 3))

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `volley_request_status_total{status="201",tag="success"} 1`) {
		t.Fatalf("unexpected exposition:\n%s", body)
	}
	if !strings.Contains(string(body), "volley_request_latency_ms_count 1") {
		t.Fatalf("latency summary missing:\n%s", body)
	}
}
