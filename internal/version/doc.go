// Package version exposes build metadata for the launcher.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. The package
// also owns the version contract with the launched application: Exported
// picks the value published through STRATEGY_ANALYZER_VERSION, and Accepted
// mirrors the pattern the application validates that value against.
package version
