// Package taskpool provides an in-process queue backend for queued listeners:
// a fixed worker pool executing task functions registered by identifier.
// Submissions are accepted into a bounded buffer and processed by worker
// goroutines; a full buffer or an unknown task identifier is a rejection.
package taskpool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/shaharia-lab/zephyr"
)

const (
	defaultWorkers  = 3
	defaultCapacity = 100
)

// TaskFunc executes one accepted submission.
type TaskFunc func(ctx context.Context, evt zephyr.Event) error

// Rejection causes returned by Submit.
var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrUnknownTask = errors.New("unknown task")
	ErrClosed      = errors.New("task pool is closed")
)

type job struct {
	queue string
	task  string
	fn    TaskFunc
	evt   zephyr.Event
}

// Pool is a bounded in-process task runner. It implements
// zephyr.QueueBackend, so it can be plugged into a Dispatcher with
// zephyr.WithQueueBackend.
type Pool struct {
	ch     chan job
	tasks  map[string]TaskFunc
	mu     sync.RWMutex
	wg     sync.WaitGroup
	logger *slog.Logger
	closed bool
}

// New creates a Pool with the given worker count and buffer capacity.
// Non-positive values fall back to the defaults (3 workers, capacity 100).
func New(workers, capacity int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &Pool{
		ch:     make(chan job, capacity),
		tasks:  make(map[string]TaskFunc),
		logger: logger,
	}
	p.start(workers)
	return p
}

// RegisterTask binds an identifier to a task function. Submissions naming an
// unregistered identifier are rejected.
func (p *Pool) RegisterTask(identifier string, fn TaskFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks[identifier] = fn
}

// Submit implements zephyr.QueueBackend. It never blocks: a full buffer, an
// unknown task, a closed pool, or a done context is an immediate rejection.
func (p *Pool) Submit(ctx context.Context, queue, task string, evt zephyr.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	fn, ok := p.tasks[task]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}

	select {
	case p.ch <- job{queue: queue, task: task, fn: fn, evt: evt}:
		return nil
	default:
		return fmt.Errorf("%w: queue %q", ErrQueueFull, queue)
	}
}

func (p *Pool) start(workers int) {
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.ch {
				p.run(j)
			}
		}()
	}
}

// run executes one job with panic recovery so a bad task cannot kill its
// worker.
func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked",
				"task", j.task, "queue", j.queue, "event_type", j.evt.Type, "panic", fmt.Sprint(r))
		}
	}()

	if err := j.fn(context.Background(), j.evt); err != nil {
		p.logger.Warn("task failed",
			"task", j.task, "queue", j.queue, "event_type", j.evt.Type, "error", err)
		return
	}
	p.logger.Debug("task completed", "task", j.task, "queue", j.queue, "event_type", j.evt.Type)
}

// Close stops accepting submissions, drains queued jobs, and waits for the
// workers to finish. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	p.wg.Wait()
}
