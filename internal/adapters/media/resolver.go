package media

import (
	"strings"
)

// Resolver maps stored locators onto the public media host
//
// Absolute http(s) locators pass through. Locators under LegacyPrefix are moved to
// PublicPrefix, and relative ones are joined to Base. An empty Base leaves relative
// locators relative.
type Resolver struct {
	Base         string
	LegacyPrefix string
	PublicPrefix string
}

// NewResolver trims the base and normalizes both prefixes to /x/ form
func NewResolver(base, legacy, public string) Resolver {
	return Resolver{
		Base:         strings.TrimRight(strings.TrimSpace(base), "/"),
		LegacyPrefix: slashed(legacy),
		PublicPrefix: slashed(public),
	}
}

// Resolve implements the dispatcher's resolver port
func (r Resolver) Resolve(locator string) string {
	loc := strings.TrimSpace(locator)
	lower := strings.ToLower(loc)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return loc
	}
	if !strings.HasPrefix(loc, "/") {
		loc = "/" + loc
	}
	if r.LegacyPrefix != "" && r.PublicPrefix != "" && strings.HasPrefix(loc, r.LegacyPrefix) {
		loc = r.PublicPrefix + strings.TrimPrefix(loc, r.LegacyPrefix)
	}
	return r.Base + loc
}

func slashed(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p + "/"
}
