package task

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/volley/internal/httpclient"
	"github.com/torosent/volley/internal/tracing"
)

const maxDrainBytes = 1024 * 1024

// Doer sends HTTP requests; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor runs tasks against a shared client.
type Executor struct {
	client    Doer
	tracer    trace.Tracer
	propagate bool
	now       func() time.Time
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithTracing wraps every call in a client span from p.
func WithTracing(p *tracing.Provider) ExecutorOption {
	return func(e *Executor) {
		e.tracer = p.Tracer()
		e.propagate = p.ShouldPropagate()
	}
}

// WithClock replaces the wall clock used for elapsed time.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExecutor(client Doer, opts ...ExecutorOption) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = (*tracing.Provider)(nil).Tracer()
	}
	return e
}

// Execute waits the task interval, then performs the call. It never returns
// an error: every failure is folded into a Failure outcome.
func (e *Executor) Execute(ctx context.Context, t Task) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := sleep(ctx, t.Interval()); err != nil {
		return Failed(t, newRequestError(KindCancelled, t.URL(), err))
	}

	if t.Timeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout())
		defer cancel()
	}

	ctx, span := tracing.StartRequestSpan(ctx, e.tracer, t.Method(), t.URL(), t.Index())

	headers, err := httpclient.CanonicalHeaders(t.headers)
	if err != nil {
		return e.fail(span, t, KindRequest, err)
	}
	req, err := httpclient.NewRequest(ctx, t.Method(), t.URL(), t.Body(), headers)
	if err != nil {
		return e.fail(span, t, KindRequest, err)
	}
	if e.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	start := e.now()
	resp, err := e.client.Do(req)
	if err != nil {
		return e.fail(span, t, classify(err), err)
	}
	_, err = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
	if err != nil {
		kind := classify(err)
		if kind == KindNetwork {
			kind = KindResponse
		}
		return e.fail(span, t, kind, err)
	}
	elapsed := e.now().Sub(start)

	tracing.EndSpan(span, nil, tracing.StatusCode(resp.StatusCode))
	return Succeeded(t, resp.StatusCode, elapsed)
}

func (e *Executor) fail(span trace.Span, t Task, kind Kind, err error) Outcome {
	reqErr := newRequestError(kind, t.URL(), err)
	tracing.EndSpan(span, reqErr)
	return Failed(t, reqErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
