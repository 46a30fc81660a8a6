//go:build windows

package relay

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// relayExtension names staged relay scripts next to the target binary.
// The .bat suffix is what makes cmd.exe treat the file as a script.
const relayExtension = ".relay.bat"

// ScriptPath returns where the relay for target is staged.
func ScriptPath(target string) string {
	return target + relayExtension
}

// scriptContents renders the batch relay. The tasklist loop is the
// readiness check: the copy must not start while the old process is alive.
// The closing line is the cmd.exe self-delete idiom.
func scriptContents(target, candidate string, pid int) string {
	return fmt.Sprintf(`@echo off
set tries=0
:waitloop
tasklist /fi "pid eq %[1]d" 2>nul | find "%[1]d" >nul
if errorlevel 1 goto replace
set /a tries+=1
if %%tries%% geq %[2]d exit /b 1
rem timeout.exe needs console input, which a detached process has none of.
ping -n 2 127.0.0.1 >nul
goto waitloop
:replace
copy /y "%[3]s" "%[4]s" >nul
del /f /q "%[3]s"
start "" "%[4]s"
(goto) 2>nul & del "%%~f0"
`, pid, maxWaitTries, candidate, target)
}

// command returns the interpreter invocation for the staged script.
func command(path string) (string, []string) {
	return "cmd.exe", []string{"/c", path}
}

// detachedProcAttr detaches the relay from this console so it survives
// this process's exit.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.DETACHED_PROCESS | windows.CREATE_NEW_PROCESS_GROUP,
	}
}
