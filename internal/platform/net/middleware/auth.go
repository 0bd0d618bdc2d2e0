package middleware

import (
	"net/http"

	pnet "triggerbot/internal/platform/net"
)

// AuthPort resolves the operator behind a request
type AuthPort interface {
	Parse(r *http.Request) (subject string, err error)
}

// Auth rejects requests the port cannot authenticate and stores the subject on ctx
// A nil port lets everything through, which is how tests and local runs mount routes
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			sub, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithSubject(r.Context(), sub)))
		})
	}
}

// Correlate copies chi's request id onto the logger context so logger.C picks it up
func Correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
