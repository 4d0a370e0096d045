package viewer

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

var commandBuilder = exec.Command

// Commands are the external programs the viewer hands work to. An empty
// slice disables the matching action.
type Commands struct {
	Clipboard []string
	Editor    []string
}

// DetectCommands looks up a clipboard tool and the user's editor on PATH.
func DetectCommands() Commands {
	clip, _ := detectClipboard(runtime.GOOS, exec.LookPath)
	editor, _ := detectEditorCommand(runtime.GOOS, os.Getenv, exec.LookPath)
	return Commands{Clipboard: clip, Editor: editor}
}

func detectClipboard(goos string, lookPath func(string) (string, error)) ([]string, bool) {
	if strings.EqualFold(goos, "windows") {
		for _, candidate := range []string{"clip.exe", "clip"} {
			if path, err := lookPath(candidate); err == nil && path != "" {
				return []string{path}, true
			}
		}
		for _, ps := range []string{"powershell", "powershell.exe", "pwsh"} {
			if path, err := lookPath(ps); err == nil && path != "" {
				return []string{path, "-NoLogo", "-NoProfile", "-Command", "Set-Clipboard"}, true
			}
		}
	}

	for _, cmd := range []string{"pbcopy", "wl-copy", "xclip", "xsel"} {
		path, err := lookPath(cmd)
		if err != nil || path == "" {
			continue
		}
		switch cmd {
		case "xclip":
			return []string{path, "-selection", "clipboard"}, true
		case "xsel":
			return []string{path, "--clipboard", "--input"}, true
		}
		return []string{path}, true
	}
	return nil, false
}

func detectEditorCommand(goos string, getenv func(string) string, lookPath func(string) (string, error)) ([]string, bool) {
	for _, candidate := range []string{getenv("VISUAL"), getenv("EDITOR")} {
		args := parseCommandLine(candidate)
		if len(args) == 0 {
			continue
		}
		if resolved, err := lookPath(args[0]); err == nil {
			args[0] = resolved
			return args, true
		}
	}

	defaults := [][]string{{"vim"}, {"nano"}, {"vi"}}
	if strings.EqualFold(goos, "windows") {
		defaults = [][]string{{"code", "--wait"}, {"notepad++.exe"}, {"notepad.exe"}}
	}
	for _, def := range defaults {
		if resolved, err := lookPath(def[0]); err == nil {
			return append([]string{resolved}, def[1:]...), true
		}
	}
	return nil, false
}

// parseCommandLine splits cmd on whitespace, honouring single and double
// quotes. A leading ~ in the program name is expanded.
func parseCommandLine(cmd string) []string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}

	var args []string
	var current strings.Builder
	inSingle, inDouble := false, false
	for _, r := range cmd {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	if len(args) > 0 {
		args[0] = expandUserPath(args[0])
	}
	return args
}

func expandUserPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' && path[1] != '\\' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return home
	}
	return filepath.Join(home, path[2:])
}

// copyToClipboard pipes text into the clipboard command.
func (v *Viewer) copyToClipboard(text string) error {
	clip := v.cfg.Commands.Clipboard
	if len(clip) == 0 {
		return fmt.Errorf("no clipboard command")
	}
	cmd := commandBuilder(clip[0], clip[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", clip[0], err, msg)
		}
		return fmt.Errorf("%s: %w", clip[0], err)
	}
	return nil
}

// openInEditor hands the terminal to the editor until it exits.
func (v *Viewer) openInEditor(path string) error {
	editor := v.cfg.Commands.Editor
	if len(editor) == 0 {
		return fmt.Errorf("no editor configured")
	}
	args := append(append([]string(nil), editor[1:]...), path)

	var tty *os.File
	if runtime.GOOS != "windows" {
		if f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
			tty = f
			defer func() {
				_ = tty.Close()
			}()
		}
	}

	if err := v.screen.Suspend(); err != nil {
		return fmt.Errorf("suspend screen: %w", err)
	}
	cmd := commandBuilder(editor[0], args...)
	if tty != nil {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = tty, tty, tty
	} else {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	}
	runErr := cmd.Run()
	if err := flushConsoleInput(); err != nil {
		v.logger.Debug("flush console input", "err", err)
	}

	if err := v.screen.Resume(); err != nil {
		return fmt.Errorf("resume screen: %w", err)
	}
	v.screen.Sync()
	if runErr != nil {
		return fmt.Errorf("%s: %w", editor[0], runErr)
	}
	return nil
}
