// Package version reports what build of the bot is running
package version

import (
	"fmt"
	"runtime/debug"
)

// BuildInfo is served by /meta/version and stamped into the ClickHouse client info
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version,omitempty"`
}

// Set with -ldflags "-X 'triggerbot/internal/core/version.version=v0.3.0' -X ...commit=abcd -X ...date=2026-10-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build stamp; when commit was not injected the vcs revision
// recorded by the toolchain is used instead
func Info() BuildInfo {
	bi := BuildInfo{Service: "triggerbot", Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		bi.GoVersion = info.GoVersion
		if bi.Commit == "none" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					bi.Commit = s.Value
				}
			}
		}
	}
	return bi
}

// String is the one-line form printed by the admin cli
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", b.Service, b.Version, b.Commit, b.Date)
}
