package module

import (
	"context"
	"testing"
	"time"

	"triggerbot/internal/modkit"
	"triggerbot/internal/platform/config"
	"triggerbot/internal/services/dispatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopTransport struct{}

func (nopTransport) Send(context.Context, string, domain.Payload) (string, error) { return "m", nil }

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	assert.Equal(t, time.Second, o.GalleryGap)
	assert.Equal(t, 30*time.Second, o.SendTimeout)
	assert.Equal(t, 30*time.Second, o.MediaTimeout)
	assert.Equal(t, "document.pdf", o.DocumentName)
	assert.Equal(t, "/storage/", o.LegacyPrefix)
	assert.Equal(t, "/media/", o.PublicPrefix)
	assert.Empty(t, o.MediaBaseURL)
}

func TestNew(t *testing.T) {
	t.Setenv("CORE_DISPATCH_MEDIA_BASE_URL", "https://cdn.example.com")
	t.Setenv("CORE_DISPATCH_GALLERY_GAP", "250ms")

	m := New(modkit.Deps{Cfg: config.New()}, nopTransport{})
	assert.Equal(t, "dispatch", m.Name())
	assert.Equal(t, "https://cdn.example.com", m.Options().MediaBaseURL)
	assert.Equal(t, 250*time.Millisecond, m.Options().GalleryGap)

	p, ok := m.Ports().(Ports)
	require.True(t, ok)
	assert.NotNil(t, p.Dispatcher)
}
