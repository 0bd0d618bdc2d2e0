package domain

import "context"

// SelectorPort picks the campaign a message triggers
type SelectorPort interface {
	// DetectCampaign returns ok=false when no active campaign matches
	DetectCampaign(ctx context.Context, raw string) (d Detection, ok bool, err error)
}
