//go:build !windows

package relay

import (
	"fmt"
	"syscall"
)

// relayExtension names staged relay scripts next to the target binary.
const relayExtension = ".relay.sh"

// ScriptPath returns where the relay for target is staged.
func ScriptPath(target string) string {
	return target + relayExtension
}

// scriptContents renders the POSIX shell relay. The poll loop is the
// readiness check: the copy must not start while the old process is alive.
func scriptContents(target, candidate string, pid int) string {
	return fmt.Sprintf(`#!/bin/sh
tries=0
while kill -0 %[1]d 2>/dev/null; do
    tries=$((tries+1))
    if [ "$tries" -ge %[2]d ]; then
        exit 1
    fi
    sleep 1
done
cp -f '%[3]s' '%[4]s'
chmod +x '%[4]s'
rm -f '%[3]s'
nohup '%[4]s' >/dev/null 2>&1 &
rm -f -- "$0"
`, pid, maxWaitTries, candidate, target)
}

// command returns the interpreter invocation for the staged script.
func command(path string) (string, []string) {
	return "/bin/sh", []string{path}
}

// detachedProcAttr puts the relay in its own session so it survives this
// process and any terminal hangup.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
