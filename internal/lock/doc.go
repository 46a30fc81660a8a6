// Package lock guards the data root against concurrent launcher runs.
//
// The lock is a file holding the owner's PID. Acquire refuses to proceed
// while the recorded process is alive and reclaims the file once it is
// gone, so a crashed run never wedges the next one.
package lock
