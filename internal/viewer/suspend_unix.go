//go:build !windows

package viewer

import (
	"os"
	"syscall"
)

func contSignals() []os.Signal {
	return []os.Signal{syscall.SIGCONT}
}

func (v *Viewer) suspendToShell() {
	if err := v.screen.Suspend(); err == nil {
		v.suspended = true
	}
	// Stop only this process so a wrapping shell keeps job control.
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}

// resumeAfterStop re-engages the screen after suspendToShell. A SIGCONT
// that follows an already resumed Ctrl+Z only repaints.
func (v *Viewer) resumeAfterStop() bool {
	if v.suspended {
		if err := v.screen.Resume(); err != nil {
			v.logger.Warn("resume after stop", "err", err)
			return false
		}
		v.suspended = false
	}
	v.screen.Sync()
	v.layout()
	return true
}
