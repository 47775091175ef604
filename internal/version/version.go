// Package version holds build metadata set via ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/docprep/internal/version.Version=v1.0.0"
package version

import "fmt"

// Version is the release version.
var Version = "unknown"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return "docprep " + Version
	}
	return fmt.Sprintf("docprep %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
