package resource

import "sync"

// Listener observes every published resource value.
type Listener[T any] func(Resource[T])

// Store holds the current resource value and notifies subscribers on publish.
// Publishing is expected from a single execution context; reads are safe from
// any goroutine.
type Store[T any] struct {
	mu        sync.RWMutex
	current   Resource[T]
	listeners map[uint64]Listener[T]
	nextID    uint64
}

// NewStore returns a store starting in Idle.
func NewStore[T any]() *Store[T] {
	return &Store[T]{current: Idle[T](), listeners: make(map[uint64]Listener[T])}
}

// State returns the last published value.
func (s *Store[T]) State() Resource[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store[T]) Subscribe(fn Listener[T]) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Publish stores next and notifies every listener with it.
func (s *Store[T]) Publish(next Resource[T]) {
	s.mu.Lock()
	s.current = next
	listeners := make([]Listener[T], 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}
