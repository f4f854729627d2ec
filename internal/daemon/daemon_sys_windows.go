//go:build windows

package daemon

import (
	"os"
	"os/exec"
)

func setDaemonSysProcAttr(cmd *exec.Cmd) {
	// No session detach on Windows; the child outlives the parent by default.
}

func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess on Windows fails for dead processes; a live handle is enough.
	_ = proc.Release()
	return true
}

func signalTerm(proc *os.Process) error {
	// Windows has no SIGTERM; Kill is the only portable stop.
	return proc.Kill()
}
