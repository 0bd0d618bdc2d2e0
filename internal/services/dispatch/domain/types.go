// Package domain defines the dispatcher's ports and results
package domain

import (
	"context"

	"triggerbot/internal/core/template"
	plans "triggerbot/internal/services/plans/domain"
)

// Kind is the transport-level message kind
type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// GalleryNone is the send id of a gallery step whose every image failed
const GalleryNone = "gallery:none"

// Payload is one outbound message
type Payload struct {
	Kind     Kind
	Text     string
	Caption  string
	Data     []byte
	Mime     string
	FileName string
	// Voice sends audio as a voice note
	Voice bool
}

// Transport delivers payloads to a chat recipient and returns the transport's message id
// Errors carrying ErrorCodeTransportFatal mean the session is gone
type Transport interface {
	Send(ctx context.Context, recipient string, p Payload) (string, error)
}

// MediaFetcher downloads media bytes
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Resolver turns a stored locator into a fetchable URL
type Resolver interface {
	Resolve(locator string) string
}

// Observer is told the outcome of every item in order
// A non-nil error aborts the dispatch
type Observer interface {
	Sent(ctx context.Context, item plans.Item, messageID string) error
	Failed(ctx context.Context, item plans.Item, cause error) error
}

// Result counts item outcomes of one dispatch
type Result struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// DispatcherPort runs a plan against a recipient
type DispatcherPort interface {
	Dispatch(ctx context.Context, plan []plans.Item, recipient string, vars template.Vars, obs Observer) (Result, error)
}
