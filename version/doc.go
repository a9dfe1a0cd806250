// Package version reports build information for the startup summary and
// the diagnostics endpoint.
//
// Version, commit and build time are set with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/lambdacontainer/version.Version=1.0.0"
package version
