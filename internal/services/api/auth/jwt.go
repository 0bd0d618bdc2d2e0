// Package auth verifies and mints the operator bearer tokens for the ops API
package auth

import (
	"time"

	perr "triggerbot/internal/platform/errors"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "triggerbot"

// Parser returns a token func that accepts HS256 tokens signed with secret
// The subject claim is required and becomes the request subject
func Parser(secret []byte) func(string) (string, error) {
	return func(raw string) (string, error) {
		tok, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			return secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			return "", perr.Wrap(err, perr.ErrorCodeUnauthorized, "invalid token")
		}
		claims, ok := tok.Claims.(*jwt.RegisteredClaims)
		if !ok || claims.Subject == "" {
			return "", perr.Unauthorizedf("token has no subject")
		}
		return claims.Subject, nil
	}
}

// Sign mints a token for subject valid for ttl from now
func Sign(secret []byte, subject string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", perr.InvalidArgf("auth: empty signing secret")
	}
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
