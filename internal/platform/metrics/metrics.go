// Package metrics declares the bot's Prometheus collectors
// Collectors register on the default registry at init; /metrics serves them
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ns = "triggerbot"

var (
	// InboundEvents counts inbound chat events by what happened to them
	InboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "inbound_events_total",
		Help:      "Inbound chat events by outcome",
	}, []string{"outcome"})

	// AdmissionDenied counts triggers refused by the admission gate
	AdmissionDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "admission_denied_total",
		Help:      "Matched triggers refused at admission, by reason",
	}, []string{"reason"})

	// DispatchItems counts plan items by type and result (sent|failed)
	DispatchItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "dispatch_items_total",
		Help:      "Dispatched plan items by type and result",
	}, []string{"type", "result"})

	// ConversationsFinished counts conversations reaching a terminal status
	ConversationsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "conversations_finished_total",
		Help:      "Conversations by terminal status",
	}, []string{"status"})

	// DispatchDuration observes whole-plan dispatch time including pacing delays
	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "dispatch_duration_seconds",
		Help:      "Wall time of one plan dispatch",
		Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	// GatewayConnected is 1 while the gateway websocket is up
	GatewayConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "gateway_connected",
		Help:      "1 when the chat gateway connection is open",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "http_requests_total",
		Help:      "Ops API requests",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "http_request_duration_seconds",
		Help:      "Ops API request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler serves the default registry
func Handler() http.Handler { return promhttp.Handler() }

// SetGatewayConnected flips the gateway gauge
func SetGatewayConnected(up bool) {
	if up {
		GatewayConnected.Set(1)
		return
	}
	GatewayConnected.Set(0)
}

// HTTP records request count and latency labelled by the chi route pattern
func HTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
