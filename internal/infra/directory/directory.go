// Package directory resolves user profiles through the backend, caching
// display names in a bounded LRU.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"academy/internal/app/ports"
	"academy/internal/domain/wire"
)

// Directory implements ports.Directory on top of a Transport.
type Directory struct {
	transport ports.Transport
	cache     *expirable.LRU[wire.Identifier, ports.Profile]
	logger    *slog.Logger
}

// New returns a directory caching up to size profiles for ttl. A non-positive
// size disables caching.
func New(transport ports.Transport, size int, ttl time.Duration, logger *slog.Logger) *Directory {
	d := &Directory{transport: transport, logger: logger}
	if size > 0 {
		d.cache = expirable.NewLRU[wire.Identifier, ports.Profile](size, nil, ttl)
	}
	return d
}

// GetProfile returns the cached profile or fetches GET /api/users/{id}.
func (d *Directory) GetProfile(ctx context.Context, id wire.Identifier) (ports.Profile, error) {
	if id.IsZero() {
		return ports.Profile{}, fmt.Errorf("directory: empty user id")
	}
	if d.cache != nil {
		if p, ok := d.cache.Get(id); ok {
			return p, nil
		}
	}
	raw, err := d.transport.Send(ctx, ports.MethodGet, "/api/users/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return ports.Profile{}, err
	}
	profile, err := DecodeProfile(raw)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("directory: user %s: %w", id, err)
	}
	if profile.ID.IsZero() {
		profile.ID = id
	}
	if d.cache != nil {
		d.cache.Add(id, profile)
	}
	if d.logger != nil {
		d.logger.Debug("profile resolved", "user_id", id.String())
	}
	return profile, nil
}

// Forget drops a cached profile, e.g. after the user renamed themselves.
func (d *Directory) Forget(id wire.Identifier) {
	if d.cache != nil {
		d.cache.Remove(id)
	}
}

// DecodeProfile reads a user document, bare or under "user"/"data". The
// display name falls back from name fields to first/last name, then username.
func DecodeProfile(raw []byte) (ports.Profile, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return ports.Profile{}, err
	}
	obj, err := wire.Object(root, "user", "data")
	if err != nil {
		return ports.Profile{}, err
	}
	name := strings.TrimSpace(wire.OptionalString(obj, "displayName", "name", "fullName"))
	if name == "" {
		name = strings.TrimSpace(wire.OptionalString(obj, "firstName") + " " + wire.OptionalString(obj, "lastName"))
	}
	if name == "" {
		name = wire.OptionalString(obj, "username", "email")
	}
	if name == "" {
		return ports.Profile{}, &wire.DecodeError{Field: "name", Reason: "missing"}
	}
	return ports.Profile{ID: wire.OptionalID(obj, "_id", "id"), DisplayName: name}, nil
}

var _ ports.Directory = (*Directory)(nil)
