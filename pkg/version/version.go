// Package version carries the release string stamped in by the build:
//
//	go build -ldflags "-X github.com/bookcross/bookcross/pkg/version.Version=1.2.0" ./cmd/api
package version

// Version stays "dev" for local builds.
var Version = "dev"
