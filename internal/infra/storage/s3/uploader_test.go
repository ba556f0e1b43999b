package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient(Config{Bucket: "b"}, nil)
	assert.Error(t, err)
	_, err = NewClient(Config{Endpoint: "http://localhost:9000"}, nil)
	assert.Error(t, err)

	c, err := NewClient(Config{Endpoint: "http://localhost:9000", Bucket: "photos"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.publicBaseURL)
}

func TestUploadRejectsBadInputBeforeNetwork(t *testing.T) {
	c, err := NewClient(Config{Endpoint: "localhost:9000", Bucket: "photos"}, nil)
	require.NoError(t, err)
	_, err = c.Upload(context.Background(), "x.png", nil, 0, "")
	assert.ErrorIs(t, err, ErrNoBody)
	_, err = c.Upload(context.Background(), " / ", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestObjectURLAndHost(t *testing.T) {
	assert.Equal(t, "https://cdn.test/photos/injuries/p1/a.png", ObjectURL("https://cdn.test/", "photos", "/injuries/p1/a.png"))
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "k", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
