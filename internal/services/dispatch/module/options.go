package module

import (
	"time"

	"triggerbot/internal/platform/config"
)

// Options for the dispatch module
type Options struct {
	GalleryGap   time.Duration
	SendTimeout  time.Duration
	MediaTimeout time.Duration
	DocumentName string

	// MediaBaseURL resolves relative locators; empty leaves them as stored
	MediaBaseURL string
	LegacyPrefix string
	PublicPrefix string
}

// FromConfig reads CORE_DISPATCH_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_DISPATCH_")
	o := Options{
		GalleryGap:   c.MayDuration("GALLERY_GAP", time.Second),
		SendTimeout:  c.MayDuration("SEND_TIMEOUT", 30*time.Second),
		MediaTimeout: c.MayDuration("MEDIA_TIMEOUT", 30*time.Second),
		DocumentName: c.MayString("DOCUMENT_NAME", "document.pdf"),
		LegacyPrefix: c.MayString("LEGACY_PREFIX", "/storage/"),
		PublicPrefix: c.MayString("PUBLIC_PREFIX", "/media/"),
	}
	if u := c.MayURL("MEDIA_BASE_URL"); u != nil {
		o.MediaBaseURL = u.String()
	}
	return o
}
