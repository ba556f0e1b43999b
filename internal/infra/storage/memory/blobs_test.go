package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStoreCopiesAndDeletes(t *testing.T) {
	s := NewBlobStore()
	blob := []byte("hello")
	require.NoError(t, s.Set("k", blob))
	blob[0] = 'j'

	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", string(got))

	got[0] = 'x'
	again, _, _ := s.Get("k")
	assert.Equal(t, "hello", string(again))

	require.NoError(t, s.Set("k", nil))
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}
