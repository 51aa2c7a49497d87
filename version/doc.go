// Package version reports the build version of the riv binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/riv/version.Version=1.2.0" ./cmd/riv
package version
