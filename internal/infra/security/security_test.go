package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
	assert.Equal(t, bcrypt.DefaultCost, BcryptHasher{}.cost())
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := TokenIssuer{Secret: []byte("k"), TTL: time.Hour, Now: func() time.Time { return now }}

	token, expires, err := issuer.Issue("coach-1", "Coach One")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "coach-1", claims.Subject)
	assert.Equal(t, "Coach One", claims.Name)
}

func TestTokenIssuerRejects(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := TokenIssuer{Secret: []byte("k"), TTL: time.Minute, Now: func() time.Time { return now }}
	token, _, err := issuer.Issue("coach-1", "")
	require.NoError(t, err)

	other := TokenIssuer{Secret: []byte("other"), Now: issuer.Now}
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := TokenIssuer{Secret: []byte("k"), Now: func() time.Time { return now.Add(time.Hour) }}
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = TokenIssuer{}.Issue("x", "")
	assert.Error(t, err)
}
