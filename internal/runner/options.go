package runner

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/torosent/volley/internal/httpclient"
	"github.com/torosent/volley/internal/pool"
	"github.com/torosent/volley/internal/task"
)

const (
	MinConcurrency = 1
	MaxConcurrency = 50

	// DefaultReconcileInterval is how often the reconciliation pass runs when
	// no completion signal arrives first.
	DefaultReconcileInterval = 100 * time.Millisecond
)

// RunConfig describes how every request of a run is issued.
type RunConfig struct {
	Method      string
	Body        string            // sent for POST only
	Headers     map[string]string // extra headers; the JSON content type always wins
	Concurrency int
	Timeout     time.Duration // per request
	Interval    time.Duration // wait before each request
}

// Validate reports every problem with the configuration at once.
func (c RunConfig) Validate() error {
	issues := c.issues()
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{issues: issues}
}

func (c RunConfig) issues() []string {
	var issues []string
	switch httpclient.NormalizeMethod(c.Method) {
	case "GET", "POST":
	default:
		issues = append(issues, fmt.Sprintf("method must be GET or POST, got %q", c.Method))
	}
	if c.Concurrency < MinConcurrency || c.Concurrency > MaxConcurrency {
		issues = append(issues, fmt.Sprintf("concurrency must be between %d and %d, got %d", MinConcurrency, MaxConcurrency, c.Concurrency))
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be greater than zero")
	}
	if c.Interval < 0 {
		issues = append(issues, "interval must be non-negative")
	}
	return issues
}

func (c RunConfig) taskSpec() task.Spec {
	headers := make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		if http.CanonicalHeaderKey(k) == "Content-Type" {
			continue
		}
		headers[k] = v
	}
	for k, v := range httpclient.DefaultHeaders() {
		headers[k] = v
	}
	return task.Spec{
		Method:   c.Method,
		Body:     c.Body,
		Headers:  headers,
		Timeout:  c.Timeout,
		Interval: c.Interval,
	}
}

// Recorder receives every outcome as it is drained into the result log.
type Recorder interface {
	Record(out task.Outcome)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(out task.Outcome)

func (f RecorderFunc) Record(out task.Outcome) { f(out) }

// Notifier surfaces user-facing notices such as a stopped run.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Options configure a Controller.
type Options struct {
	Executor          pool.Executor // required
	Logger            logrus.FieldLogger
	Recorders         []Recorder
	Notifier          Notifier
	ReconcileInterval time.Duration
	// Clock is used for run timestamps; defaults to time.Now.
	Clock func() time.Time
}

func (o *Options) normalize() {
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.ReconcileInterval <= 0 {
		o.ReconcileInterval = DefaultReconcileInterval
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// CleanURLs trims every entry, drops blanks and keeps only the first
// occurrence of each URL, preserving input order.
func CleanURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		cleaned = append(cleaned, u)
	}
	return cleaned
}
