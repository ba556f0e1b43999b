package obs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("prod", "warn", &buf)
	log.Info("hidden")
	log.Warn("shown", "user_id", "u1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"user_id":"u1"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
}

func TestMiddlewareAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	mw := Middleware{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	router := gin.New()
	router.Use(mw.RequestID(), mw.AccessLog())
	router.GET("/livez", HealthHandlers{}.Livez)
	router.GET("/readyz", HealthHandlers{Checks: map[string]Check{
		"store":  func(context.Context) error { return errors.New("store closed") },
		"broker": func(context.Context) error { return nil },
	}}.Readyz)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"not ready","checks":{"store":"store closed","broker":"ok"}}`, rec.Body.String())
}

func TestRequestIDReplacesUnsafeHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen string
	var logged *slog.Logger
	router := gin.New()
	router.Use(Middleware{Logger: slog.New(slog.DiscardHandler)}.RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		logged = LoggerFrom(c.Request.Context(), nil)
	})

	for _, header := range []string{"bad id; drop", strings.Repeat("a", 65), ""} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		_, err := uuid.Parse(seen)
		require.NoError(t, err, "header %q", header)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
		assert.NotNil(t, logged)
	}
	assert.Nil(t, LoggerFrom(context.Background(), nil))
}
