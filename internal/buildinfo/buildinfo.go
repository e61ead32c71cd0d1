// Package buildinfo holds version information injected at build time via ldflags:
//
//	-X github.com/lockbar-io/lockbar/internal/buildinfo.Version=1.2.0
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent returns the User-Agent sent by the given binary.
func UserAgent(binary string) string {
	return fmt.Sprintf("%s/%s (%s/%s)", binary, Version, runtime.GOOS, runtime.GOARCH)
}
