// Package version carries build information injected through ldflags:
//
//	go build -ldflags "-X github.com/MeKo-Tech/rf4catch/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String renders the build information on one line.
func String() string {
	return fmt.Sprintf("rf4catch %s (commit: %s, built: %s, %s)", Version, GitCommit, BuildDate, runtime.Version())
}
