// Package ports declares the collaborators the client core is written
// against. Implementations live under internal/infra.
package ports

import (
	"context"
	"errors"
	"fmt"
	"io"

	"academy/internal/domain/wire"
)

// HTTP methods used by the screen controllers.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// Transport performs an authenticated request and returns the raw response
// body. Failures are reported as *TransportError. Retries are not performed.
type Transport interface {
	Send(ctx context.Context, method, path string, body any) ([]byte, error)
}

// TransportError describes a failed request. Status is zero when no HTTP
// response was received.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("transport: status %d: %s", e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("transport: status %d", e.Status)
	case e.Err != nil:
		return "transport: " + e.Err.Error()
	default:
		return "transport: " + e.Message
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage returns the text a screen shows for err.
func UserMessage(err error) string {
	var terr *TransportError
	if errors.As(err, &terr) {
		if terr.Message != "" {
			return terr.Message
		}
		if terr.Status != 0 {
			return fmt.Sprintf("request failed with status %d", terr.Status)
		}
		if terr.Err != nil {
			return terr.Err.Error()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Profile is the subset of a user profile the core consumes.
type Profile struct {
	ID          wire.Identifier
	DisplayName string
}

// Directory resolves user profiles.
type Directory interface {
	GetProfile(ctx context.Context, userID wire.Identifier) (Profile, error)
}

// Session exposes the signed-in identity.
type Session interface {
	CurrentUserID() (wire.Identifier, bool)
}

// LocalStore is an opaque key-value blob store.
type LocalStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, blob []byte) error
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// Dispatcher marshals work onto the UI execution context.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Feed delivers raw live-message payloads to deliver until ctx ends.
type Feed interface {
	Run(ctx context.Context, deliver func(raw []byte)) error
}
