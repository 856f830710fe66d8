package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/torosent/volley/internal/task"
)

// PromRecorder exports outcomes as Prometheus metrics on its own registry.
// It satisfies runner.Recorder.
type PromRecorder struct {
	registry *prometheus.Registry

	failures *prometheus.CounterVec
	status   *prometheus.CounterVec
	latency  prometheus.Summary
	params   *prometheus.GaugeVec
}

// NewPromRecorder registers the volley collectors on a fresh registry.
func NewPromRecorder() *PromRecorder {
	r := &PromRecorder{
		registry: prometheus.NewRegistry(),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volley_request_failures_total",
				Help: "Requests that produced no status code, by failure kind",
			},
			[]string{"kind"},
		),
		status: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volley_request_status_total",
				Help: "Completed requests by status code and tag",
			},
			[]string{"status", "tag"},
		),
		latency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name:       "volley_request_latency_ms",
				Help:       "Request latency in milliseconds",
				Objectives: map[float64]float64{0.5: 0.05, 0.95: 0.005, 0.99: 0.001},
			},
		),
		params: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volley_params",
				Help: "Parameters of the current run",
			},
			[]string{"param"},
		),
	}
	r.registry.MustRegister(r.failures, r.status, r.latency, r.params)
	return r
}

// Record adds one outcome.
func (r *PromRecorder) Record(out task.Outcome) {
	if !out.Success() {
		kind := string(out.Kind)
		if kind == "" {
			kind = "unknown"
		}
		r.failures.WithLabelValues(kind).Inc()
		return
	}
	r.status.WithLabelValues(strconv.Itoa(out.StatusCode), string(out.Tag())).Inc()
	r.latency.Observe(out.ElapsedMs)
}

// SetRunParams publishes the size and concurrency of the current run.
func (r *PromRecorder) SetRunParams(urls, concurrency int) {
	r.params.WithLabelValues("urls").Set(float64(urls))
	r.params.WithLabelValues("concurrency").Set(float64(concurrency))
}

// Registry exposes the underlying registry, mainly for tests.
func (r *PromRecorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
