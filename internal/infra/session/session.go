// Package session keeps the signed-in user's token and derives the local
// identity from its claims.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"academy/internal/app/ports"
	"academy/internal/domain/wire"
)

// TokenKey is the local-store key holding the bearer token.
const TokenKey = "session:token"

var (
	ErrInvalidCredentials = errors.New("session: email and password are required")
	ErrNoToken            = errors.New("session: login response carried no token")
)

// identityClaims are tried in order when reading the user id.
var identityClaims = []string{"sub", "id", "_id", "userId"}

// Session implements ports.Session and the transport's token source.
// Claims are read without verifying the signature; the backend verifies.
type Session struct {
	store ports.LocalStore
	now   func() time.Time

	mu    sync.RWMutex
	token string
	user  wire.Identifier
}

// New restores a previously stored token, if any.
func New(store ports.LocalStore) (*Session, error) {
	s := &Session{store: store, now: time.Now}
	if store == nil {
		return s, nil
	}
	blob, ok, err := store.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("session: restore token: %w", err)
	}
	if ok {
		s.adopt(string(blob))
	}
	return s, nil
}

// Token returns the current bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUserID returns the identity carried by an unexpired token.
func (s *Session) CurrentUserID() (wire.Identifier, bool) {
	s.mu.RLock()
	token, user := s.token, s.user
	s.mu.RUnlock()
	if token == "" || user.IsZero() {
		return "", false
	}
	if exp, ok := expiry(token); ok && !s.now().Before(exp) {
		return "", false
	}
	return user, true
}

// Credentials are posted to the login route.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts credentials, stores the returned token and reports the
// identity it carries.
func (s *Session) Login(ctx context.Context, transport ports.Transport, creds Credentials) (wire.Identifier, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return "", ErrInvalidCredentials
	}
	raw, err := transport.Send(ctx, ports.MethodPost, "/api/auth/login", creds)
	if err != nil {
		return "", err
	}
	token := tokenFrom(raw)
	if token == "" {
		return "", ErrNoToken
	}
	user, err := IdentityFromToken(token)
	if err != nil {
		user = userFrom(raw)
		if user.IsZero() {
			return "", err
		}
	}
	s.mu.Lock()
	s.token, s.user = token, user
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Set(TokenKey, []byte(token)); err != nil {
			return "", fmt.Errorf("session: persist token: %w", err)
		}
	}
	return user, nil
}

// Logout forgets the token locally.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token, s.user = "", ""
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Set(TokenKey, nil)
}

func (s *Session) adopt(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	user, err := IdentityFromToken(token)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.token, s.user = token, user
	s.mu.Unlock()
}

// IdentityFromToken reads the user id claim from a JWT without verifying it.
// The claim may be a plain string or an object-id wrapper.
func IdentityFromToken(token string) (wire.Identifier, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("session: parse token: %w", err)
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("session: claims: %w", err)
	}
	root := gjson.ParseBytes(raw)
	id, err := wire.RequiredID(root, identityClaims...)
	if err != nil {
		return "", fmt.Errorf("session: identity claim: %w", err)
	}
	return id, nil
}

func expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func tokenFrom(raw []byte) string {
	root := gjson.ParseBytes(raw)
	for _, path := range []string{"token", "accessToken", "access_token", "data.token"} {
		if v := root.Get(path); v.Type == gjson.String {
			return v.Str
		}
	}
	return ""
}

func userFrom(raw []byte) wire.Identifier {
	root := gjson.ParseBytes(raw)
	if user := root.Get("user"); user.Exists() {
		return wire.OptionalID(user, "_id", "id")
	}
	return ""
}

var _ ports.Session = (*Session)(nil)
