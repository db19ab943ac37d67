// Package version provides build version information.
package version

import "fmt"

// These are set at build time via ldflags:
//
//	go build -ldflags "-X apexlens/internal/version.Version=1.0.0 \
//	  -X apexlens/internal/version.Commit=$(git rev-parse HEAD) \
//	  -X apexlens/internal/version.BuildDate=$(date -u +%Y-%m-%d)"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns a short version string, including the abbreviated commit
// when a full hash is available.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return fmt.Sprintf("%s (%s)", Version, Commit[:7])
	}
	return Version
}

// Full returns a multi-line version report
func Full() string {
	return fmt.Sprintf("apexlens version %s\nCommit: %s\nBuilt: %s", Version, Commit, BuildDate)
}
