// Package build describes the running binary. The values are set at link time, e.g.
//
//	go build -ldflags "-X github.com/G-Research/rainbow/internal/rainbow/build.GitCommit=$(git rev-parse HEAD)"
package build

import "runtime"

var (
	ReleaseVersion = "UNKNOWN"
	GitCommit      = "UNKNOWN"
	BuildTime      = "UNKNOWN"
	GoVersion      = runtime.Version()
)
