// Package launcher sequences the four launcher phases.
//
// Self-update runs first and may schedule a restart, in which case nothing
// else happens in this process. Otherwise provisioning, the artifact fetch
// and the launch run in order, with an exclusive lock on the data root held
// from the moment it exists until the artifact cache is refreshed. The
// pipeline converts component failures into user-facing diagnostics and
// hands the CLI an Outcome.
package launcher
