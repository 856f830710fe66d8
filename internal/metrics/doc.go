// Package metrics aggregates request outcomes for reporting.
//
// [Collector] keeps an in-memory summary: counts per tag, status code and
// failure kind, plus an HDR histogram of latencies for percentiles. It backs
// the end-of-run report and the dashboard:
//
//	collector := metrics.NewCollector()
//	collector.Record(outcome)
//	stats := collector.Stats(elapsed)
//
// [PromRecorder] exposes the same outcomes as Prometheus metrics on a
// private registry, served through [PromRecorder.Handler]:
//
//	volley_request_status_total{status,tag}
//	volley_request_failures_total{kind}
//	volley_request_latency_ms
//	volley_params{param}
//
// Both types satisfy runner.Recorder and are safe for concurrent use.
//
// Latencies are only sampled for requests that returned a status code;
// failed requests carry no elapsed time.
package metrics
