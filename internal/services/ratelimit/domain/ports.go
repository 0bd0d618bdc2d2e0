package domain

import "context"

// LimiterPort is the admission gate keyed by sender
type LimiterPort interface {
	// Check never fails; store errors allow with ReasonErrorCheck
	Check(ctx context.Context, sender string) Decision
	// Update records one consumed trigger
	Update(ctx context.Context, sender string) error
}

// AdminPort is the operator surface over sender blocks
type AdminPort interface {
	// Block blocks sender for hours, or indefinitely when hours is nil
	Block(ctx context.Context, sender, reason string, hours *int) error
	// Unblock lifts temporary and permanent blocks alike
	Unblock(ctx context.Context, sender string) error
	BlockPermanently(ctx context.Context, sender, reason string) error
	// Status returns the record and the decision Check would make now, without side effects
	Status(ctx context.Context, sender string) (Record, bool, Decision, error)
}
