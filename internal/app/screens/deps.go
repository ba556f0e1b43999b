// Package screens contains one controller per feature screen. Controllers
// issue transport calls, run the payloads through the decoders and
// reconcilers, and publish resource values for the UI to observe.
//
// Every exported controller method must be called on the dispatcher; network
// calls run on their own goroutines and marshal their results back.
package screens

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"academy/internal/app/enrich"
	"academy/internal/app/ports"
	"academy/internal/domain/wire"
)

var (
	ErrNoSession  = errors.New("screens: no signed-in user")
	ErrNotLoaded  = errors.New("screens: screen has not loaded yet")
	ErrNoUploader = errors.New("screens: image upload is not configured")
)

// Deps are the collaborators shared by every controller.
type Deps struct {
	Transport   ports.Transport
	Session     ports.Session
	Directory   ports.Directory
	Store       ports.LocalStore
	Uploader    ports.Uploader
	Dispatcher  ports.Dispatcher
	Logger      *slog.Logger
	Concurrency int
	Now         func() time.Time
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) coordinator() *enrich.Coordinator {
	return &enrich.Coordinator{
		Directory:   d.Directory,
		Dispatcher:  d.Dispatcher,
		Concurrency: d.Concurrency,
		Logger:      d.Logger,
	}
}

// currentUser re-reads the local identity from the session.
func (d Deps) currentUser() (wire.Identifier, error) {
	if d.Session == nil {
		return "", ErrNoSession
	}
	id, ok := d.Session.CurrentUserID()
	if !ok || id.IsZero() {
		return "", ErrNoSession
	}
	return id, nil
}

// call sends one request off the dispatcher and delivers the outcome on it.
func (d Deps) call(ctx context.Context, method, path string, body any, done func([]byte, error)) {
	go func() {
		raw, err := d.Transport.Send(ctx, method, path, body)
		if err != nil {
			d.logger().Debug("request failed", "method", method, "path", path, "error", err)
		}
		d.Dispatcher.Dispatch(func() { done(raw, err) })
	}()
}
