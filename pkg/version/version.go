// Package version holds the build version, overridden at link time with
// -ldflags "-X trailgo/pkg/version.Version=...".
package version

// Version is the application version.
var Version = "v0.1.0-dev"
