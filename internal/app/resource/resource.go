// Package resource models the lifecycle of an asynchronous query as a
// four-state value and provides the store and slot that publish it.
package resource

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a transition is not allowed from the
// resource's current state. The resource is left unchanged.
var ErrInvalidTransition = errors.New("resource: invalid transition")

// State enumerates the resource lifecycle.
type State uint8

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Resource is an immutable Idle | Loading | Success(T) | Error(message) value.
// Transition methods return a new Resource and never modify the receiver.
type Resource[T any] struct {
	state   State
	value   T
	message string
}

func Idle[T any]() Resource[T] { return Resource[T]{state: StateIdle} }

func Loading[T any]() Resource[T] { return Resource[T]{state: StateLoading} }

func Success[T any](value T) Resource[T] {
	return Resource[T]{state: StateSuccess, value: value}
}

func Failed[T any](message string) Resource[T] {
	return Resource[T]{state: StateError, message: message}
}

func (r Resource[T]) State() State { return r.state }

func (r Resource[T]) IsIdle() bool    { return r.state == StateIdle }
func (r Resource[T]) IsLoading() bool { return r.state == StateLoading }
func (r Resource[T]) IsSuccess() bool { return r.state == StateSuccess }
func (r Resource[T]) IsError() bool   { return r.state == StateError }

// Value returns the payload when the resource is in Success.
func (r Resource[T]) Value() (T, bool) {
	if r.state != StateSuccess {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Message returns the error message when the resource is in Error.
func (r Resource[T]) Message() string {
	if r.state != StateError {
		return ""
	}
	return r.message
}

// Start moves any state to Loading. Loading to Loading is a re-issued query.
func (r Resource[T]) Start() Resource[T] {
	return Loading[T]()
}

// Succeed completes a Loading resource.
func (r Resource[T]) Succeed(value T) (Resource[T], error) {
	if r.state != StateLoading {
		return r, transitionErr(r.state, StateSuccess)
	}
	return Success(value), nil
}

// Fail completes a Loading resource with an error message.
func (r Resource[T]) Fail(message string) (Resource[T], error) {
	if r.state != StateLoading {
		return r, transitionErr(r.state, StateError)
	}
	return Failed[T](message), nil
}

// Refine replaces the payload of a Success resource, e.g. after enrichment.
func (r Resource[T]) Refine(value T) (Resource[T], error) {
	if r.state != StateSuccess {
		return r, transitionErr(r.state, StateSuccess)
	}
	return Success(value), nil
}

// Equal compares two resources structurally. Idle and Loading values are
// always equal to themselves; payloads are compared with eq.
func Equal[T any](a, b Resource[T], eq func(T, T) bool) bool {
	if a.state != b.state {
		return false
	}
	switch a.state {
	case StateSuccess:
		return eq(a.value, b.value)
	case StateError:
		return a.message == b.message
	default:
		return true
	}
}

func transitionErr(from, to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
