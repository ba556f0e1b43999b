package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestFeedDeliversTextFramesWithToken(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotToken atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken.Store(r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"m1"}`))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2})
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"m2"}`))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	feed, err := NewFeed(Config{URL: wsURL(srv)}, staticToken("tok"), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- feed.Run(ctx, func(raw []byte) {
			mu.Lock()
			got = append(got, string(raw))
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop")
	}
	assert.Equal(t, []string{`{"id":"m1"}`, `{"id":"m2"}`}, got)
	assert.Equal(t, "tok", gotToken.Load())
}

func TestFeedRedialsAfterDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var dials atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := dials.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte{'0' + byte(n)})
		_ = conn.Close()
	}))
	defer srv.Close()

	feed, err := NewFeed(Config{URL: wsURL(srv), MinBackoff: 5 * time.Millisecond, MaxBackoff: 10 * time.Millisecond}, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = feed.Run(ctx, func([]byte) {}) }()

	require.Eventually(t, func() bool { return dials.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestFeedStopsWhileBackingOff(t *testing.T) {
	feed, err := NewFeed(Config{URL: "ws://127.0.0.1:1/ws", MinBackoff: time.Hour, MaxBackoff: time.Hour}, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, feed.Run(ctx, func([]byte) {}), context.DeadlineExceeded)
}

func TestNewFeedRequiresURL(t *testing.T) {
	_, err := NewFeed(Config{}, nil, nil)
	assert.Error(t, err)
}
