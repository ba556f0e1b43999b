package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"academy/internal/infra/obs"
	"academy/internal/infra/security"
	"academy/internal/infra/storage/memory"
)

// Options configure NewBackend.
type Options struct {
	Env       string
	Secret    []byte
	TokenTTL  time.Duration
	Hasher    security.BcryptHasher
	Publisher Publisher
	Now       func() time.Time
	Logger    *slog.Logger
}

// Backend is a seeded academy with every handler wired.
type Backend struct {
	Store  *memory.Academy
	Seeded memory.Seeded
	Hub    *Hub
	Tokens security.TokenIssuer
	Router *gin.Engine
}

func NewBackend(opts Options) (*Backend, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := memory.NewAcademy()
	seeded, err := memory.Seed(store, opts.Hasher.Hash, now())
	if err != nil {
		return nil, err
	}
	tokens := security.TokenIssuer{Secret: opts.Secret, TTL: opts.TokenTTL, Now: now}
	hub := NewHub(opts.Logger)
	broadcast := []Broadcaster{hub}
	if opts.Publisher != nil {
		broadcast = append(broadcast, BrokerBroadcaster{Publisher: opts.Publisher})
	}
	router := NewRouter(opts.Env, obs.Middleware{Logger: opts.Logger}, obs.HealthHandlers{Checks: map[string]obs.Check{
		"store": func(context.Context) error {
			_, err := store.UserByID(seeded.Coach.ID.Hex())
			return err
		},
	}}, Handlers{
		Auth:           AuthHandler{Store: store, Hasher: opts.Hasher, Tokens: tokens, Logger: opts.Logger},
		Chat:           ChatHandler{Store: store, Broadcaster: broadcast, Now: now, Logger: opts.Logger},
		Academy:        AcademyHandler{Store: store, Now: now, Logger: opts.Logger},
		Live:           hub.Serve,
		AuthMiddleware: AuthMiddleware{Tokens: tokens, Logger: opts.Logger}.Handle,
	})
	return &Backend{Store: store, Seeded: seeded, Hub: hub, Tokens: tokens, Router: router}, nil
}

// Server returns an http.Server for the backend on addr.
func (b *Backend) Server(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: b.Router, ReadHeaderTimeout: 10 * time.Second}
}
