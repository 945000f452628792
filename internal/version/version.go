// Package version carries build metadata injected at link time.
package version

var (
	// Version is the release version, set via -ldflags.
	Version = "dev"
	// Commit is the git commit hash of the build.
	Commit = ""
	// BuildDate is the build timestamp.
	BuildDate = ""
)
