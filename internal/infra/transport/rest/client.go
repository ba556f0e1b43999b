// Package rest implements the HTTP transport collaborator.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"academy/internal/app/ports"
)

const maxErrorBody = 64 << 10

// TokenSource yields the bearer token attached to requests. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// Config defines transport settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// Client sends JSON requests to the academy backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
	logger  *slog.Logger
}

// NewClient returns a transport for cfg. A zero RateLimit disables pacing.
func NewClient(cfg Config, tokens TokenSource, logger *slog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("rest: base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		tokens:  tokens,
		logger:  logger,
	}, nil
}

// Send performs one request. body is JSON-encoded unless it is nil or
// already []byte. Any failure is returned as *ports.TransportError.
func (c *Client) Send(ctx context.Context, method, path string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ports.TransportError{Err: fmt.Errorf("rate limit: %w", err)}
		}
	}
	reader, err := encodeBody(body)
	if err != nil {
		return nil, &ports.TransportError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &ports.TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ports.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		terr := &ports.TransportError{Status: resp.StatusCode, Message: ServerMessage(raw)}
		c.log(method, path, resp.StatusCode, start, terr)
		return nil, terr
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ports.TransportError{Status: resp.StatusCode, Err: err}
	}
	c.log(method, path, resp.StatusCode, start, nil)
	return raw, nil
}

func (c *Client) log(method, path string, status int, start time.Time, err error) {
	if c.logger == nil {
		return
	}
	args := []any{"method", method, "path", path, "status", status, "duration", time.Since(start)}
	if err != nil {
		c.logger.Warn("api request failed", append(args, "error", err)...)
		return
	}
	c.logger.Debug("api request", args...)
}

// ServerMessage extracts a best-effort message from an error body: the
// "error", "message" or "msg" field, nested error objects, or plain text.
func ServerMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	if !gjson.ValidBytes(trimmed) {
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return string(trimmed)
	}
	root := gjson.ParseBytes(trimmed)
	for _, key := range []string{"error", "message", "msg"} {
		v := root.Get(key)
		switch {
		case v.Type == gjson.String && v.Str != "":
			return v.Str
		case v.IsObject():
			if nested := v.Get("message"); nested.Type == gjson.String {
				return nested.Str
			}
		}
	}
	if root.Type == gjson.String {
		return root.Str
	}
	return ""
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(raw), nil
}

var _ ports.Transport = (*Client)(nil)
