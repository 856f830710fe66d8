package task

import (
	"net/http"
	"strings"
	"time"

	"github.com/torosent/volley/internal/httpclient"
)

// Spec is the request template shared by every task of a run.
type Spec struct {
	Method   string
	Body     string
	Headers  map[string]string
	Timeout  time.Duration
	Interval time.Duration
}

// Task describes one HTTP call. It is immutable once built by New.
type Task struct {
	url      string
	method   string
	body     string
	headers  map[string]string
	timeout  time.Duration
	interval time.Duration
	index    int
}

// New builds the task for url at position index of the deduplicated list.
func New(url string, index int, spec Spec) Task {
	method := httpclient.NormalizeMethod(spec.Method)
	body := ""
	if method == http.MethodPost {
		body = spec.Body
	}
	headers := make(map[string]string, len(spec.Headers))
	for k, v := range spec.Headers {
		headers[k] = v
	}
	return Task{
		url:      strings.TrimSpace(url),
		method:   method,
		body:     body,
		headers:  headers,
		timeout:  spec.Timeout,
		interval: spec.Interval,
		index:    index,
	}
}

// URL is the target of the call.
func (t Task) URL() string { return t.url }

// Method is GET or POST.
func (t Task) Method() string { return t.method }

// Body is the payload; always empty for GET.
func (t Task) Body() string { return t.body }

// Timeout bounds the HTTP call.
func (t Task) Timeout() time.Duration { return t.timeout }

// Interval is the delay applied before the call starts.
func (t Task) Interval() time.Duration { return t.interval }

// Index is the task position in the deduplicated URL list.
func (t Task) Index() int { return t.index }

// Headers returns a copy of the task headers.
func (t Task) Headers() map[string]string {
	out := make(map[string]string, len(t.headers))
	for k, v := range t.headers {
		out[k] = v
	}
	return out
}

// IsWebURL reports whether s uses the http or https scheme.
func IsWebURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
