package resource

import "sync"

// Ticket identifies one issued query. Only the latest ticket of a slot may
// resolve it.
type Ticket uint64

// Slot owns the resource for one logical query and discards results of
// requests that are no longer the latest issued.
type Slot[T any] struct {
	store *Store[T]

	mu  sync.Mutex
	seq Ticket
}

// NewSlot returns an idle slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{store: NewStore[T]()}
}

// State returns the current resource value.
func (s *Slot[T]) State() Resource[T] { return s.store.State() }

// Subscribe forwards to the underlying store.
func (s *Slot[T]) Subscribe(fn Listener[T]) func() { return s.store.Subscribe(fn) }

// Current returns the latest issued ticket.
func (s *Slot[T]) Current() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Begin issues a new query: the slot moves to Loading and any earlier ticket
// becomes stale.
func (s *Slot[T]) Begin() Ticket {
	s.mu.Lock()
	s.seq++
	t := s.seq
	next := s.store.State().Start()
	s.mu.Unlock()

	s.store.Publish(next)
	return t
}

// Resolve publishes Success(value) when t is still current. It reports
// whether the result was applied.
func (s *Slot[T]) Resolve(t Ticket, value T) bool {
	return s.apply(t, func(r Resource[T]) (Resource[T], error) { return r.Succeed(value) })
}

// Reject publishes Error(message) when t is still current.
func (s *Slot[T]) Reject(t Ticket, message string) bool {
	return s.apply(t, func(r Resource[T]) (Resource[T], error) { return r.Fail(message) })
}

// Refine republishes the Success value produced by t after fn transforms it.
// Stale tickets and non-success states are ignored.
func (s *Slot[T]) Refine(t Ticket, fn func(T) T) bool {
	return s.apply(t, func(r Resource[T]) (Resource[T], error) {
		value, ok := r.Value()
		if !ok {
			return r, transitionErr(r.state, StateSuccess)
		}
		return r.Refine(fn(value))
	})
}

// Mutate applies a local change to the current Success value regardless of
// ticket. It reports false when there is no value to change.
func (s *Slot[T]) Mutate(fn func(T) T) bool {
	s.mu.Lock()
	cur := s.store.State()
	value, ok := cur.Value()
	if !ok {
		s.mu.Unlock()
		return false
	}
	next, err := cur.Refine(fn(value))
	s.mu.Unlock()
	if err != nil {
		return false
	}
	s.store.Publish(next)
	return true
}

// Reset invalidates every ticket and returns the slot to Idle.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	s.seq++
	s.mu.Unlock()
	s.store.Publish(Idle[T]())
}

func (s *Slot[T]) apply(t Ticket, step func(Resource[T]) (Resource[T], error)) bool {
	s.mu.Lock()
	if t != s.seq {
		s.mu.Unlock()
		return false
	}
	next, err := step(s.store.State())
	s.mu.Unlock()
	if err != nil {
		return false
	}
	s.store.Publish(next)
	return true
}
