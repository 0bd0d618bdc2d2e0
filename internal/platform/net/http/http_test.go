package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"triggerbot/internal/platform/config"
	perr "triggerbot/internal/platform/errors"
	pnet "triggerbot/internal/platform/net"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limitBody struct {
	Hours int `json:"hours" validate:"min=1"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestRouter_GroupsAndRoutes(t *testing.T) {
	mux := chi.NewRouter()
	r := AdaptChi(mux)

	var order []string
	r.Route("/api/v1", func(api Router) {
		api.Use(func(next stdhttp.Handler) stdhttp.Handler {
			return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
				order = append(order, "mw")
				next.ServeHTTP(w, req)
			})
		})
		api.Group(func(g Router) {
			g.Get("/ping", NoBody(func(*stdhttp.Request) (any, error) {
				order = append(order, "h")
				return "pong", nil
			}))
		})
	})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/api/v1/ping", nil))
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, []string{"mw", "h"}, order)
	assert.Equal(t, "pong", decode(t, rec)["data"])
}

func TestHandle_Envelopes(t *testing.T) {
	ctx := pnet.WithRequest(context.Background(), "rq-1")

	cases := []struct {
		name   string
		resp   Response
		status int
	}{
		{"ok", OK(map[string]int{"n": 1}), stdhttp.StatusOK},
		{"accepted", Accepted(nil), stdhttp.StatusAccepted},
		{"zero status", Response{Body: "x"}, stdhttp.StatusOK},
		{"not found", Error(perr.NotFoundf("no record")), stdhttp.StatusNotFound},
		{"fatal", Error(perr.TransportFatalf("gateway closed")), stdhttp.StatusServiceUnavailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handle(func(*stdhttp.Request) Response { return c.resp })(rec,
				httptest.NewRequest(stdhttp.MethodGet, "/", nil).WithContext(ctx))
			require.Equal(t, c.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "rq-1", body["request_id"])
			assert.EqualValues(t, c.status, body["status_code"])
		})
	}
}

func TestHandle_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	Handle(func(*stdhttp.Request) Response { return NoContent() })(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil))
	assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSONHandler(t *testing.T) {
	h := JSONHandler(func(_ *stdhttp.Request, in limitBody) (any, error) {
		if in.Hours > 100 {
			return nil, errors.New("boom")
		}
		return Accepted(in.Hours), nil
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(`{"hours":3}`)))
	require.Equal(t, stdhttp.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(`{"hours":0}`)))
	require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "hours", decode(t, rec)["field"])

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodPost, "/", strings.NewReader(`{"hours":300}`)))
	require.Equal(t, stdhttp.StatusInternalServerError, rec.Code)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Setenv("CORE_API_PORT", "127.0.0.1:0")
	t.Setenv("CORE_API_SHUTDOWN_TIMEOUT", "1s")
	s := NewServer(config.New())
	assert.Equal(t, "127.0.0.1:0", s.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
