package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGatewayConnected(t *testing.T) {
	SetGatewayConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(GatewayConnected))
	SetGatewayConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(GatewayConnected))
}

func TestHTTP_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTP)
	r.Get("/senders/{sender}/limit", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/senders/{sender}/limit", "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/senders/51999/limit", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/senders/{sender}/limit", "418"))
	assert.Equal(t, before+1, after)
}

func TestHandler_Exposes(t *testing.T) {
	InboundEvents.WithLabelValues("matched").Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "triggerbot_inbound_events_total"))
}
