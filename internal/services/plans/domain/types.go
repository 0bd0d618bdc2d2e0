// Package domain defines message plans
package domain

import "context"

// ItemType is the kind of message a plan item sends
type ItemType string

const (
	ItemText     ItemType = "TEXT"
	ItemImage    ItemType = "IMAGE"
	ItemAudio    ItemType = "AUDIO"
	ItemDocument ItemType = "DOCUMENT"
	ItemGallery  ItemType = "GALLERY"
)

// HasMedia reports whether items of this type carry media refs
func (t ItemType) HasMedia() bool { return t != ItemText }

// MediaRef points at one stored media asset
type MediaRef struct {
	MediaType string
	Locator   string
	MimeType  string
	SortOrder int
}

// Item is one step of a campaign's plan
type Item struct {
	ID              int64
	Type            ItemType
	ContentTemplate *string
	SortOrder       int
	DelaySeconds    int
	Media           []MediaRef
}

// Template returns the content template or ""
func (i Item) Template() string {
	if i.ContentTemplate == nil {
		return ""
	}
	return *i.ContentTemplate
}

// ReaderPort loads plans
type ReaderPort interface {
	// Plan returns the campaign's items by sort order with their media attached
	Plan(ctx context.Context, campaignID int64) ([]Item, error)
}
