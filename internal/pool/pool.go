package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/torosent/volley/internal/task"
)

// ErrClosed is returned by Submit once the pool has been shut down.
var ErrClosed = errors.New("pool: closed")

// Executor runs a single task to completion.
type Executor interface {
	Execute(ctx context.Context, t task.Task) task.Outcome
}

// Options configures a Pool.
type Options struct {
	// MaxConcurrency bounds how many tasks execute at once. Values below 1 mean 1.
	MaxConcurrency int
}

func (o *Options) normalize() {
	if o.MaxConcurrency < 1 {
		o.MaxConcurrency = 1
	}
}

// Handle tracks one submitted task. It is completed at most once, by the
// worker that executed the task.
type Handle struct {
	task       task.Task
	done       chan struct{}
	outcome    task.Outcome
	finishedAt time.Time
}

func newHandle(t task.Task) *Handle {
	return &Handle{task: t, done: make(chan struct{})}
}

// Task returns the task this handle was created for.
func (h *Handle) Task() task.Task { return h.task }

// Done reports whether the task has finished. It never blocks.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Outcome returns the task outcome and true once the task has finished.
func (h *Handle) Outcome() (task.Outcome, bool) {
	if !h.Done() {
		return task.Outcome{}, false
	}
	return h.outcome, true
}

// Finished is closed when the task completes. It stays open forever for
// tasks abandoned by Shutdown(false).
func (h *Handle) Finished() <-chan struct{} { return h.done }

// FinishedAt returns the completion time, or the zero time while pending.
func (h *Handle) FinishedAt() time.Time {
	if !h.Done() {
		return time.Time{}
	}
	return h.finishedAt
}

func (h *Handle) complete(out task.Outcome, at time.Time) {
	h.outcome = out
	h.finishedAt = at
	close(h.done)
}

// Pool executes submitted tasks on a fixed set of workers.
type Pool struct {
	exec   Executor
	opt    Options
	queue  chan *Handle
	quit   chan struct{}
	notify chan struct{}

	mu     sync.Mutex
	closed bool

	feeders   sync.WaitGroup
	workers   sync.WaitGroup
	quitOnce  sync.Once
	queueOnce sync.Once
}

// New starts a pool with opt.MaxConcurrency workers.
func New(exec Executor, opt Options) *Pool {
	opt.normalize()
	p := &Pool{
		exec:   exec,
		opt:    opt,
		queue:  make(chan *Handle),
		quit:   make(chan struct{}),
		notify: make(chan struct{}, 1),
	}
	p.workers.Add(opt.MaxConcurrency)
	for i := 0; i < opt.MaxConcurrency; i++ {
		go p.work()
	}
	return p
}

// MaxConcurrency returns the number of workers.
func (p *Pool) MaxConcurrency() int { return p.opt.MaxConcurrency }

// Submit queues tasks in order and returns one handle per task. Tasks are
// handed to workers in submission order.
func (p *Pool) Submit(tasks []task.Task) ([]*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}

	handles := make([]*Handle, len(tasks))
	for i, t := range tasks {
		handles[i] = newHandle(t)
	}

	p.feeders.Add(1)
	go p.feed(handles)
	return handles, nil
}

// Notify delivers a coalesced signal whenever at least one task completed
// since the last receive.
func (p *Pool) Notify() <-chan struct{} { return p.notify }

// Shutdown stops accepting tasks. With wait=false it returns immediately:
// queued tasks are never started and in-flight calls finish on their own.
// With wait=true it lets the queue drain and blocks until every worker exits.
func (p *Pool) Shutdown(wait bool) {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	if !wait {
		p.quitOnce.Do(func() { close(p.quit) })
		return
	}

	p.feeders.Wait()
	p.queueOnce.Do(func() { close(p.queue) })
	p.workers.Wait()
}

func (p *Pool) feed(handles []*Handle) {
	defer p.feeders.Done()
	for _, h := range handles {
		select {
		case p.queue <- h:
		case <-p.quit:
			return
		}
	}
}

func (p *Pool) work() {
	defer p.workers.Done()
	for {
		select {
		case <-p.quit:
			return
		case h, ok := <-p.queue:
			if !ok {
				return
			}
			// Both cases may be ready; a handle picked after quit is abandoned.
			select {
			case <-p.quit:
				return
			default:
			}
			p.run(h)
		}
	}
}

func (p *Pool) run(h *Handle) {
	out := p.exec.Execute(context.Background(), h.task)
	h.complete(out, time.Now())
	select {
	case p.notify <- struct{}{}:
	default:
	}
}
