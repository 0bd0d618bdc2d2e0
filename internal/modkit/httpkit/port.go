package httpkit

import (
	"net/http"
	"strings"

	perr "triggerbot/internal/platform/errors"
)

// TokenFunc verifies a raw bearer token and returns its subject
type TokenFunc func(token string) (subject string, err error)

// Port implements middleware.AuthPort over the Authorization header
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a token parser
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Parse reads "Bearer <token>" (scheme case-insensitive) and delegates to the parser
// every failure is the same unauthorized error so callers learn nothing about why
func (p *Port) Parse(r *http.Request) (string, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	if p == nil || p.parse == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	sub, err := p.parse(raw)
	if err != nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return sub, nil
}
