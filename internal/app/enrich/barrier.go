// Package enrich runs the background second pass that fills in display
// names after a list has been published.
package enrich

import "sync"

// Barrier counts outstanding operations and invokes done exactly once when
// the count reaches zero. A barrier created with n <= 0 fires immediately.
type Barrier struct {
	mu        sync.Mutex
	remaining int
	fired     bool
	done      func()
}

// NewBarrier returns a barrier waiting for n operations.
func NewBarrier(n int, done func()) *Barrier {
	b := &Barrier{remaining: n, done: done}
	if n <= 0 {
		b.fire()
	}
	return b
}

// Done settles one operation. Calls after the barrier fired are ignored.
func (b *Barrier) Done() {
	b.mu.Lock()
	if b.fired || b.remaining <= 0 {
		b.mu.Unlock()
		return
	}
	b.remaining--
	last := b.remaining == 0
	b.mu.Unlock()
	if last {
		b.fire()
	}
}

// Remaining reports how many operations are still outstanding.
func (b *Barrier) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

func (b *Barrier) fire() {
	b.mu.Lock()
	if b.fired {
		b.mu.Unlock()
		return
	}
	b.fired = true
	b.mu.Unlock()
	if b.done != nil {
		b.done()
	}
}
