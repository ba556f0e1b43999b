// Package ws receives live chat messages over a websocket.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"academy/internal/app/ports"
)

// TokenSource yields the bearer token sent during the handshake.
type TokenSource interface {
	Token() string
}

// Config tunes a Feed.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	MinBackoff       time.Duration
	MaxBackoff       time.Duration
}

// Feed dials URL, passes every text frame to deliver and redials with an
// exponential backoff until ctx ends.
type Feed struct {
	cfg    Config
	tokens TokenSource
	logger *slog.Logger
}

func NewFeed(cfg Config, tokens TokenSource, logger *slog.Logger) (*Feed, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("ws: url is required")
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Feed{cfg: cfg, tokens: tokens, logger: logger}, nil
}

func (f *Feed) Run(ctx context.Context, deliver func(raw []byte)) error {
	backoff := f.cfg.MinBackoff
	for {
		connected, err := f.session(ctx, deliver)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = f.cfg.MinBackoff
		}
		f.logger.Warn("live feed disconnected", "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, f.cfg.MaxBackoff)
	}
}

// session runs one connection. connected reports whether the handshake succeeded.
func (f *Feed) session(ctx context.Context, deliver func(raw []byte)) (connected bool, err error) {
	target, header, err := f.target()
	if err != nil {
		return false, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: f.cfg.HandshakeTimeout, Proxy: http.ProxyFromEnvironment}
	conn, _, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		return false, fmt.Errorf("ws: dial: %w", err)
	}
	defer conn.Close()
	f.logger.Info("live feed connected", "url", f.cfg.URL)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("ws: read: %w", err)
		}
		if kind != websocket.TextMessage || len(payload) == 0 {
			continue
		}
		deliver(payload)
	}
}

func (f *Feed) target() (string, http.Header, error) {
	u, err := url.Parse(f.cfg.URL)
	if err != nil {
		return "", nil, fmt.Errorf("ws: parse url: %w", err)
	}
	header := http.Header{}
	if f.tokens != nil {
		if token := f.tokens.Token(); token != "" {
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()
			header.Set("Authorization", "Bearer "+token)
		}
	}
	return u.String(), header, nil
}

var _ ports.Feed = (*Feed)(nil)
