// Package media fetches plan media over http and resolves stored locators
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	perr "triggerbot/internal/platform/errors"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 64 << 20
	defaultUA       = "triggerbot-media"
)

// Options configures the Fetcher
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// Fetcher downloads media bytes with a per-fetch timeout
type Fetcher struct {
	Client *http.Client
	opts   Options
}

// NewFetcher creates a Fetcher; zero options take the defaults
func NewFetcher(o Options) *Fetcher {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	return &Fetcher{Client: &http.Client{}, opts: o}
}

// Fetch returns the body at url
// Non-200 statuses, empty or oversized bodies and timeouts are MediaFetch errors
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeMediaFetch, "media: bad url %q", url)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, perr.Wrapf(err, perr.ErrorCodeMediaFetch, "media: %s timed out after %s", url, f.opts.Timeout)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeMediaFetch, "media: get %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, perr.MediaFetchf("media: unexpected status %d for %s", resp.StatusCode, url)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeMediaFetch, "media: read %s", url)
	}
	switch {
	case len(b) == 0:
		return nil, perr.MediaFetchf("media: empty body for %s", url)
	case int64(len(b)) > f.opts.MaxBytes:
		return nil, perr.MediaFetchf("media: %s exceeds %s", url, size(f.opts.MaxBytes))
	}
	return b, nil
}

func size(n int64) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%dMiB", n>>20)
	}
	return fmt.Sprintf("%dB", n)
}
