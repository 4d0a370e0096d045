//go:build windows

package viewer

import "golang.org/x/sys/windows"

// flushConsoleInput drops keystrokes typed into the editor that the console
// still holds, so they do not reach the viewer.
func flushConsoleInput() error {
	handle, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return err
	}
	return windows.FlushConsoleInputBuffer(handle)
}
