//go:build windows

package viewer

import "os"

func contSignals() []os.Signal { return nil }

// Windows has no SIGTSTP; suspending is a no-op.
func (v *Viewer) suspendToShell() {}

func (v *Viewer) resumeAfterStop() bool { return false }
