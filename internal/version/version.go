// Package version carries build-time version information for the
// collapse-mapper tools.
package version

// Set at build time via -ldflags.
var (
	// Version is the semantic version of the tools.
	Version = "0.1.0"

	// GitCommit is the git commit hash the binaries were built from.
	GitCommit = "unknown"
)

// String formats the version with the commit it was built from.
func String() string {
	return Version + " (" + GitCommit + ")"
}
