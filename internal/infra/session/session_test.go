package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/app/ports"
	"academy/internal/domain/wire"
)

type mapStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (s *mapStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok && len(v) > 0, nil
}

func (s *mapStore) Set(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = blob
	return nil
}

type loginTransport struct{ body string }

func (l loginTransport) Send(context.Context, string, string, any) ([]byte, error) {
	if l.body == "" {
		return nil, &ports.TransportError{Status: 401, Message: "invalid credentials"}
	}
	return []byte(l.body), nil
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestIdentityFromTokenClaims(t *testing.T) {
	for _, claims := range []jwt.MapClaims{
		{"sub": "u1"},
		{"id": map[string]any{"$oid": "u1"}},
		{"userId": "u1", "role": "coach"},
	} {
		id, err := IdentityFromToken(sign(t, claims))
		require.NoError(t, err)
		assert.Equal(t, wire.Identifier("u1"), id)
	}
	_, err := IdentityFromToken(sign(t, jwt.MapClaims{"role": "coach"}))
	assert.Error(t, err)
	_, err = IdentityFromToken("not-a-jwt")
	assert.Error(t, err)
}

func TestLoginStoresTokenAndRestores(t *testing.T) {
	store := &mapStore{m: map[string][]byte{}}
	s, err := New(store)
	require.NoError(t, err)
	_, ok := s.CurrentUserID()
	assert.False(t, ok)

	token := sign(t, jwt.MapClaims{"sub": "u7", "exp": time.Now().Add(time.Hour).Unix()})
	user, err := s.Login(context.Background(), loginTransport{body: `{"token":"` + token + `"}`}, Credentials{Email: "coach@academy.test", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, wire.Identifier("u7"), user)
	assert.Equal(t, token, s.Token())

	restored, err := New(store)
	require.NoError(t, err)
	id, ok := restored.CurrentUserID()
	require.True(t, ok)
	assert.Equal(t, wire.Identifier("u7"), id)

	require.NoError(t, restored.Logout())
	_, ok = restored.CurrentUserID()
	assert.False(t, ok)
}

func TestExpiredTokenHasNoIdentity(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	s.adopt(sign(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()}))
	_, ok := s.CurrentUserID()
	assert.False(t, ok)
}

func TestLoginFailures(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	_, err = s.Login(context.Background(), loginTransport{}, Credentials{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(context.Background(), loginTransport{}, Credentials{Email: "a@b", Password: "x"})
	var terr *ports.TransportError
	assert.ErrorAs(t, err, &terr)

	_, err = s.Login(context.Background(), loginTransport{body: `{"ok":true}`}, Credentials{Email: "a@b", Password: "x"})
	assert.ErrorIs(t, err, ErrNoToken)
}
