//go:build !windows

package viewer

func flushConsoleInput() error { return nil }
