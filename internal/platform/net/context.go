// Package net holds request scoped context helpers and the error envelope shared by transports
package net

import (
	"context"

	"triggerbot/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keySubject ctxKey = "subject"

// WithRequest stores the request id where chi and the logger both find it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	return logger.WithRequest(ctx, reqID)
}

// WithSubject annotates ctx with the authenticated operator (the token subject)
func WithSubject(ctx context.Context, sub string) context.Context {
	if sub == "" {
		return ctx
	}
	return context.WithValue(ctx, keySubject, sub)
}

// RequestID returns the request id on ctx or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// Subject returns the authenticated operator on ctx or ""
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(keySubject).(string)
	return s
}
