// Package pixlink holds application-level metadata shared by the CLI.
package pixlink

var (
	// Version is set by the build via ldflags.
	Version = "v0.0.1"

	// Build is the build timestamp, set via ldflags.
	Build = "n/a"
)
