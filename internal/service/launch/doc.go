// Package launch runs the fetched application under the interpreter.
//
// The child process inherits the terminal, gets the launcher version and
// the data subdirectory through STRATEGY_ANALYZER_* variables, and runs
// with the data root as its working directory so relative paths resolve
// the same on every host. The orchestrator blocks until the application
// exits and records the exit code without adopting it.
package launch
