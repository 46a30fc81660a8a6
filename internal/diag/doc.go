// Package diag shapes the launcher's user-facing status output.
//
// Pipeline steps are announced as numbered phases, fatal conditions are
// rendered as one delimited block carrying the cause and remedy text, and
// the closing summary names the data directory. Exit codes stay with the
// CLI layer: any error reaching it means 1, everything else 0.
package diag
