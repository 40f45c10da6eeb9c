package slice

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Loop errors.
var (
	// ErrLoopStopped is returned when tasks are posted to a stopped loop.
	ErrLoopStopped = errors.New("slice: loop is stopped")

	// ErrLoopRunning is returned when Run is called twice.
	ErrLoopRunning = errors.New("slice: loop is already running")
)

// Loop is a Service backed by one goroutine. Everything posted to it,
// slices included, runs on the goroutine that called Run, in FIFO order.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	running bool
	stopped bool

	wake   chan struct{}
	done   chan struct{}
	budget BudgetFunc
	logger *slog.Logger
}

// NewLoop creates a loop whose slices get budgets from budget. A nil
// budget means Deadline(DefaultSlice).
func NewLoop(budget BudgetFunc, logger *slog.Logger) *Loop {
	if budget == nil {
		budget = Deadline(DefaultSlice)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		budget: budget,
		logger: logger,
	}
}

// RequestSlice implements Service. It may be called from inside a task.
func (l *Loop) RequestSlice(fn func(Budget)) {
	if err := l.Post(func() { fn(l.budget()) }); err != nil {
		l.logger.Debug("slice dropped", "error", err)
	}
}

// Post enqueues fn to run on the loop goroutine. Safe for concurrent use.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do posts fn and waits for it to finish. It must not be called from the
// loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.done)

	for {
		batch, stopped := l.take()
		for _, fn := range batch {
			l.execute(fn)
		}
		if stopped {
			return nil
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Stop stops accepting tasks. Tasks already queued still run.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// take swaps out the pending queue.
func (l *Loop) take() ([]func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch, l.stopped && len(batch) == 0
}

// execute runs one task, containing panics so the loop survives them.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
