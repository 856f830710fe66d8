package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/torosent/volley/internal/pool"
	"github.com/torosent/volley/internal/task"
)

// StoppedNotice is sent to the Notifier when a run is stopped.
const StoppedNotice = "requests stopped"

// State is the lifecycle state of a Controller.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// run holds the state of a single Start call. Only the reconciliation
// goroutine appends to completed or removes from pending; Stop only flips
// cancelled.
type run struct {
	id        string
	pool      *pool.Pool
	log       logrus.FieldLogger
	total     int
	pending   map[int]*pool.Handle
	completed []task.Outcome
	tags      map[task.Tag]int
	cancelled bool

	passTotal   int
	passDrained int

	startedAt time.Time
	endedAt   time.Time

	quit chan struct{}
	done chan struct{}
}

// Controller runs one batch of requests at a time.
type Controller struct {
	opt Options

	mu    sync.RWMutex
	state State
	run   *run
}

// NewController returns an idle controller.
func NewController(opt Options) *Controller {
	opt.normalize()
	return &Controller{opt: opt, state: StateIdle}
}

// Start validates the input, submits one task per unique URL and returns the
// new run id. The call does not wait for any request.
func (c *Controller) Start(urls []string, cfg RunConfig) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return "", &ConcurrentRunError{RunID: c.run.id}
	}

	cleaned := CleanURLs(urls)
	var issues []string
	if len(cleaned) == 0 {
		issues = append(issues, "no URLs to request")
	}
	issues = append(issues, cfg.issues()...)
	if c.opt.Executor == nil {
		issues = append(issues, "executor is required")
	}
	if len(issues) > 0 {
		return "", &ValidationError{issues: issues}
	}

	spec := cfg.taskSpec()
	tasks := make([]task.Task, len(cleaned))
	for i, u := range cleaned {
		tasks[i] = task.New(u, i, spec)
	}

	p := pool.New(c.opt.Executor, pool.Options{MaxConcurrency: cfg.Concurrency})
	handles, err := p.Submit(tasks)
	if err != nil {
		p.Shutdown(false)
		return "", fmt.Errorf("submit tasks: %w", err)
	}

	id := ulid.Make().String()
	r := &run{
		id:        id,
		pool:      p,
		log:       c.opt.Logger.WithField("run_id", id),
		total:     len(tasks),
		pending:   make(map[int]*pool.Handle, len(handles)),
		completed: make([]task.Outcome, 0, len(handles)),
		tags:      make(map[task.Tag]int, 3),
		startedAt: c.opt.Clock(),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, h := range handles {
		r.pending[h.Task().Index()] = h
	}

	c.run = r
	c.state = StateRunning

	r.log.
		WithField("urls", r.total).
		WithField("method", spec.Method).
		WithField("concurrency", cfg.Concurrency).
		Info("run started")

	go c.reconcile(r)
	return id, nil
}

// Stop cancels the active run. Outcomes already captured are kept; calls in
// flight finish in the background and are never read. The notice is
// delivered before Wait returns.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return ErrNotRunning
	}
	r := c.run
	r.cancelled = true
	r.endedAt = c.opt.Clock()
	c.state = StateStopped
	captured := len(r.completed)
	c.mu.Unlock()

	r.pool.Shutdown(false)

	r.log.
		WithField("completed", captured).
		WithField("total", r.total).
		Warn("run stopped")
	if c.opt.Notifier != nil {
		c.opt.Notifier.Notify(StoppedNotice)
	}
	// The reconciliation goroutine closes done only after quit.
	close(r.quit)
	return nil
}

// Wait blocks until the current run has finished or ctx is done. It returns
// immediately when no run was ever started.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.RLock()
	r := c.run
	c.mu.RUnlock()
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns a consistent view of the current (or last) run.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{State: c.state}
	r := c.run
	if r == nil {
		return s
	}
	s.RunID = r.id
	s.Total = r.total
	s.Completed = len(r.completed)
	s.Pending = len(r.pending)
	s.PassTotal = r.passTotal
	s.PassDrained = r.passDrained
	s.Succeeded = r.tags[task.TagSuccess]
	s.Warnings = r.tags[task.TagWarning]
	s.Errors = r.tags[task.TagError]
	s.StartedAt = r.startedAt
	s.EndedAt = r.endedAt
	return s
}

// Outcomes returns a copy of the result log in completion order.
func (c *Controller) Outcomes() []task.Outcome {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.run == nil {
		return nil
	}
	out := make([]task.Outcome, len(c.run.completed))
	copy(out, c.run.completed)
	return out
}

// Progress reports run progress in the given mode.
func (c *Controller) Progress(mode ProgressMode) Progress {
	return Report(c.Snapshot(), mode)
}

func (c *Controller) reconcile(r *run) {
	defer close(r.done)

	ticker := time.NewTicker(c.opt.ReconcileInterval)
	defer ticker.Stop()

	for {
		drained, finished := c.pass(r)
		c.record(r, drained)
		if finished {
			return
		}

		select {
		case <-r.quit:
			return
		case <-ticker.C:
		case <-r.pool.Notify():
		}
	}
}

// pass drains finished handles into the result log. It reports whether the
// run completed. A stopped run drains nothing and ends when Stop closes quit.
func (c *Controller) pass(r *run) ([]task.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.cancelled {
		return nil, false
	}

	ready := make([]*pool.Handle, 0, len(r.pending))
	for _, h := range r.pending {
		if h.Done() {
			ready = append(ready, h)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		ti, tj := ready[i].FinishedAt(), ready[j].FinishedAt()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ready[i].Task().Index() < ready[j].Task().Index()
	})

	r.passTotal = len(r.pending)
	drained := make([]task.Outcome, 0, len(ready))
	for _, h := range ready {
		out, _ := h.Outcome()
		r.completed = append(r.completed, out)
		r.tags[out.Tag()]++
		delete(r.pending, h.Task().Index())
		drained = append(drained, out)
	}
	r.passDrained = len(drained)

	if len(r.pending) > 0 {
		return drained, false
	}

	r.endedAt = c.opt.Clock()
	c.state = StateCompleted
	// Every task finished, so the workers only need to be released.
	go r.pool.Shutdown(true)

	r.log.
		WithField("total", r.total).
		WithField("succeeded", r.tags[task.TagSuccess]).
		WithField("warnings", r.tags[task.TagWarning]).
		WithField("errors", r.tags[task.TagError]).
		WithField("duration", r.endedAt.Sub(r.startedAt)).
		Info("run completed")
	return drained, true
}

func (c *Controller) record(r *run, drained []task.Outcome) {
	for _, out := range drained {
		if !out.Success() {
			r.log.
				WithField("url", out.URL).
				WithField("kind", out.Kind).
				Debug(out.Error)
		}
		for _, rec := range c.opt.Recorders {
			rec.Record(out)
		}
	}
}
