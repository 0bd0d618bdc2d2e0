package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "triggerbot/internal/platform/errors"
	pnet "triggerbot/internal/platform/net"
	"triggerbot/internal/platform/net/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type portFunc func(*http.Request) (string, error)

func (f portFunc) Parse(r *http.Request) (string, error) { return f(r) }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAuth(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pnet.Subject(r.Context())
	})

	t.Run("nil port passes", func(t *testing.T) {
		seen = "unset"
		rec := httptest.NewRecorder()
		middleware.Auth(nil, writeJSON)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "", seen)
	})

	t.Run("subject stored", func(t *testing.T) {
		p := portFunc(func(*http.Request) (string, error) { return "ops", nil })
		rec := httptest.NewRecorder()
		middleware.Auth(p, writeJSON)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "ops", seen)
	})

	t.Run("rejected", func(t *testing.T) {
		seen = "unset"
		p := portFunc(func(*http.Request) (string, error) { return "", perr.Unauthorizedf("invalid bearer token") })
		rec := httptest.NewRecorder()
		middleware.Auth(p, writeJSON)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unset", seen)
		assert.Contains(t, rec.Body.String(), "invalid bearer token")
	})
}

func TestCorrelate(t *testing.T) {
	var got string
	h := chimw.RequestID(middleware.Correlate(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = pnet.RequestID(r.Context())
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", got)
}

func TestRecoverJSON(t *testing.T) {
	h := middleware.RecoverJSON(writeJSON)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var w pnet.Wire
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.Equal(t, perr.ErrorCodePanic, w.Code)
}

func TestAccessLog_PassesThrough(t *testing.T) {
	h := middleware.AccessLog(time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(bytes.Repeat([]byte("x"), 10))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 10, rec.Body.Len())
}

func TestCORS_Preflight(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://ops.example"}})(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/session/status", nil)
	req.Header.Set("Origin", "https://ops.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://ops.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
