package version

import (
	"fmt"
	"regexp"
)

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "1.0.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// DevLabel is the version value exported to the application in development
// mode. The application recognizes it and relaxes its own version handling.
const DevLabel = "DEV"

// acceptedPattern mirrors the check the Strategy Analyzer application applies
// to STRATEGY_ANALYZER_VERSION before trusting it.
var acceptedPattern = regexp.MustCompile(`^(\d+\.\d+\.\d+|DEV)$`)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// Exported returns the value to publish to the launched application:
// DevLabel in development mode, the build version otherwise.
func Exported(dev bool) string {
	if dev {
		return DevLabel
	}

	return Short()
}

// IsDev reports whether a version string denotes a development build.
func IsDev(s string) bool {
	return s == "" || s == DevLabel || s == "dev"
}

// Accepted reports whether the application will accept s as a version value.
func Accepted(s string) bool {
	return acceptedPattern.MatchString(s)
}
