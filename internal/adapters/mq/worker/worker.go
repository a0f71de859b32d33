// Package worker drains roster change events and hands them to a Recorder.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/mergington/internal/adapters/mq/queue"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

const poolShutdownTimeout = 10 * time.Second

// Event abstracts what workers read off the queue.
type Event = queue.Event

// Recorder persists or projects a processed roster change.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// InMemoryWorker consumes events until the queue closes or ctx is cancelled.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	name     string
	done     chan struct{}
	onEvent  func()
	logger   logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: recorder,
		name:     "worker",
		done:     make(chan struct{}),
		onEvent:  func() {},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes events until the queue channel closes or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, ev); err != nil {
				w.logger.Error(ctx, "error processing roster change", logger.Error(err))
			}
			w.onEvent()
		}
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) processEvent(ctx context.Context, ev Event) error {
	start := time.Now()

	if err := w.recorder.Record(ctx, ev); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("record roster change %s: %w", ev.ID, err)
	}
	metrics.UpdateEnrollment(ev.Activity, ev.Enrolled)
	metrics.RecordWorkerProcessed(float64(time.Since(start).Microseconds()) / 1000)

	w.logger.Info(ctx, "roster changed",
		logger.String("event_id", ev.ID),
		logger.String("kind", string(ev.Kind)),
		logger.String("activity", ev.Activity),
		logger.String("email", ev.Email),
		logger.Int("enrolled", ev.Enrolled),
	)
	return nil
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed atomic.Int64
	logger    logger.Logger
}

// NewPool creates a pool of workerCount workers (at least one).
func NewPool(workerCount int, q Queue, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, recorder,
			WithName("worker-"+strconv.Itoa(i)),
			withProcessedHook(func() { p.processed.Add(1) }),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many events the pool has handled.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	return nil
}
