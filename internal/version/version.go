// Package version holds build metadata stamped in by the magefile.
package version

import "fmt"

// Set with -ldflags "-X github.com/dkoosis/stepnotify/internal/version.Version=..." at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String formats the metadata for the version command.
func String() string {
	return fmt.Sprintf("stepnotify %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
