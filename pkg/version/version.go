// Package version reports the rscapture build.
package version

import (
	"runtime"
	"runtime/debug"
)

// These variables are set via ldflags during build
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// Info is the build description served by /healthz and printed by -version.
type Info struct {
	Version   string `json:"version"`
	BuildID   string `json:"build_id"`
	Revision  string `json:"revision,omitempty"`
	GoVersion string `json:"go_version"`
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// GetBuildID returns the current build ID
func GetBuildID() string {
	return buildID
}

// GetFullVersion returns version with build ID
func GetFullVersion() string {
	return version + " (build: " + buildID + ")"
}

// GetInfo returns the version, falling back to the VCS revision recorded
// by the go tool when no build ID was injected.
func GetInfo() Info {
	info := Info{Version: version, BuildID: buildID, GoVersion: runtime.Version()}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}

	return info
}
