// Package relay stages the script that finishes a self-update.
//
// A running executable cannot rewrite its own backing file, so the swap is
// handed to a short-lived platform script: it polls until the launcher PID
// has exited, copies the downloaded candidate over the original path,
// removes the candidate, starts the new binary detached and deletes itself.
// The poll replaces a fixed sleep so the copy never races a still-running
// process, and it is bounded so a wedged launcher cannot leave the relay
// spinning forever.
package relay
