package httpkit

import (
	"net/http"
	"time"

	"triggerbot/internal/platform/metrics"
	phttp "triggerbot/internal/platform/net/http"
	"triggerbot/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero values take the defaults
type StackOptions struct {
	Origins []string
	Timeout time.Duration
	Slow    time.Duration
}

// CommonStack is the middleware every ops route runs behind
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Slow <= 0 {
		o.Slow = 500 * time.Millisecond
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.Correlate,
		middleware.RecoverJSON(phttp.JSON),
		middleware.NoCache(),
		middleware.AccessLog(o.Slow),
		metrics.HTTP,
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins}),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
