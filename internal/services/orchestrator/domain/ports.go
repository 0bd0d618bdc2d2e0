package domain

import "context"

// InboundPort consumes chat events
type InboundPort interface {
	// Handle runs a single event to completion
	Handle(ctx context.Context, ev InboundEvent) (Outcome, error)
	// Run drains events until ctx ends or the channel closes
	Run(ctx context.Context, events <-chan InboundEvent) error
}
