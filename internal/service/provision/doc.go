// Package provision prepares the host for launching the application.
//
// It creates the per-user data directory tree and resolves the interpreter
// from the configured candidate list. Either failing is fatal: the run
// stops with remedy text instead of limping toward a launch that cannot
// work.
package provision
