package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/app/ports"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestSendAttachesTokenAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/api/messages", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hi", body["text"])
		_, _ = io.WriteString(w, `{"_id":"m1"}`)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/", RateLimit: 100, Burst: 1}, staticToken("tok"), nil)
	require.NoError(t, err)
	raw, err := c.Send(context.Background(), http.MethodPost, "/api/messages", map[string]string{"text": "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"m1"}`, string(raw))
}

func TestSendMapsErrorBodies(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"error":"invalid credentials"}`, "invalid credentials"},
		{`{"message":"not allowed"}`, "not allowed"},
		{`{"error":{"code":"x","message":"nested"}}`, "nested"},
		{`{"msg":"short"}`, "short"},
		{`plain failure`, "plain failure"},
		{``, ""},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, tc.body)
		}))
		c, err := NewClient(Config{BaseURL: srv.URL}, nil, nil)
		require.NoError(t, err)
		_, err = c.Send(context.Background(), http.MethodGet, "/x", nil)
		srv.Close()

		var terr *ports.TransportError
		require.True(t, errors.As(err, &terr), tc.body)
		assert.Equal(t, http.StatusUnprocessableEntity, terr.Status)
		assert.Equal(t, tc.want, terr.Message)
	}
}

func TestSendNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url, Timeout: time.Second}, staticToken(""), nil)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), http.MethodGet, "/x", nil)
	var terr *ports.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.Status)
	assert.NotEmpty(t, ports.UserMessage(err))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, nil, nil)
	assert.Error(t, err)
}
