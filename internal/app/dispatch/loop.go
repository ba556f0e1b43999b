// Package dispatch provides the single execution context on which screen
// state is published.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Sync once the loop has exited.
var ErrStopped = errors.New("dispatch: loop stopped")

// Loop runs queued functions one at a time on the goroutine that called Run.
// Dispatch never blocks, so callbacks may enqueue further work.
type Loop struct {
	Logger *slog.Logger

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewLoop returns a loop that is ready to accept work before Run starts.
func NewLoop(logger *slog.Logger) *Loop {
	return &Loop{
		Logger:  logger,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Dispatch enqueues fn. Work dispatched after the loop stopped is dropped.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-l.stopped:
		return
	default:
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Sync enqueues fn and waits until it has run.
func (l *Loop) Sync(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.stopped) })
	for {
		for _, fn := range l.drain() {
			l.exec(fn)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil && l.Logger != nil {
			l.Logger.Error("dispatch: callback panicked", "panic", r)
		}
	}()
	fn()
}
