// Package artifact maintains the cached copy of the application.
//
// Each run refreshes <data root>/trading_calendar.py from the configured
// URL. The new bytes land through an atomic swap, so the cache survives an
// interrupted transfer, and a failed fetch degrades to the best available
// version: the cached copy when present, a fatal diagnostic when not.
// Development mode sources the artifact from a local file instead.
package artifact
