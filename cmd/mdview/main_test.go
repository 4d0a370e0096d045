package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func createTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noScreen() (tcell.Screen, error) {
	panic("terminal opened by a non-interactive command")
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut, noScreen)
	return code, out.String(), errOut.String()
}

func TestRenderCmd(t *testing.T) {
	path := createTestFile(t, "doc.md", "# Title\n\nSee [go](https://go.dev)")

	code, stdout, stderr := runCLI(t, "render", path)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "# Title\n\nSee go (https://go.dev)\n", stdout)

	code, stdout, _ = runCLI(t, "render", "--hide-urls", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "# Title\n\nSee go\n", stdout)
}

func TestRenderCmdWidth(t *testing.T) {
	path := createTestFile(t, "doc.md", "aaaa bbbb cccc")

	code, stdout, _ := runCLI(t, "render", "--width", "9", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "aaaa bbbb\ncccc\n", stdout)

	t.Setenv("MDVIEW_WIDTH", "4")
	code, stdout, _ = runCLI(t, "render", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "aaaa\nbbbb\ncccc\n", stdout)

	code, _, stderr := runCLI(t, "render", "--width", "-1", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--width")
}

func TestDumpCmdJSON(t *testing.T) {
	path := createTestFile(t, "doc.md", "# T\n\n| a | b |\n|---|---|\n| 1 | 2 |")

	code, stdout, stderr := runCLI(t, "dump", path)
	require.Equal(t, 0, code, stderr)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "header", records[0]["type"])
	assert.Equal(t, "empty", records[1]["type"])
	assert.Equal(t, "table", records[2]["type"])
	assert.Equal(t, []any{"a", "b"}, records[2]["header"])
}

func TestDumpCmdYAML(t *testing.T) {
	path := createTestFile(t, "doc.md", "1. one\n2. two")

	code, stdout, stderr := runCLI(t, "dump", "-f", "yaml", path)
	require.Equal(t, 0, code, stderr)

	var records []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "ordered_list", records[0]["type"])
	assert.Len(t, records[0]["items"], 2)
}

func TestDumpCmdRejectsUnknownFormat(t *testing.T) {
	path := createTestFile(t, "doc.md", "x")
	code, _, stderr := runCLI(t, "dump", "--format", "xml", path)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "xml")
}

func TestLoadErrorsExitNonZero(t *testing.T) {
	code, stdout, stderr := runCLI(t, "render", filepath.Join(t.TempDir(), "missing.md"))
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.True(t, strings.HasPrefix(stderr, "mdview: "), stderr)

	path := createTestFile(t, "big.md", strings.Repeat("x", 64))
	code, _, stderr = runCLI(t, "--max-size", "16", "render", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "exceeds size limit")

	code, _, stderr = runCLI(t, "render", "ftp://example.com/a.md")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unsupported scheme")
}

func TestHelpExitsZero(t *testing.T) {
	code, stdout, _ := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "render")
	assert.Contains(t, stdout, "dump")
}

func TestLogFile(t *testing.T) {
	path := createTestFile(t, "doc.md", "x")
	logPath := filepath.Join(t.TempDir(), "mdview.log")

	code, _, stderr := runCLI(t, "--log-level", "debug", "--log-format", "json", "--log-file", logPath, "render", path)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"DEBUG"`)
}

func TestViewCmdQuits(t *testing.T) {
	path := createTestFile(t, "doc.md", "# Title\n\n![img](missing.png)")
	var screen tcell.SimulationScreen
	open := func() (tcell.Screen, error) {
		screen = tcell.NewSimulationScreen("")
		if err := screen.Init(); err != nil {
			return nil, err
		}
		screen.SetSize(40, 10)
		screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
		return screen, nil
	}

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"view", "--image-workers", "1", path}, &out, &errOut, open)
	require.Equal(t, 0, code, errOut.String())
	require.NotNil(t, screen)
	assert.Empty(t, out.String())
}

func TestViewCmdIsDefault(t *testing.T) {
	path := createTestFile(t, "doc.md", "text")
	opened := false
	open := func() (tcell.Screen, error) {
		opened = true
		screen := tcell.NewSimulationScreen("")
		if err := screen.Init(); err != nil {
			return nil, err
		}
		screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
		return screen, nil
	}

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{path, "--no-images"}, &out, &errOut, open)
	assert.Equal(t, 0, code, errOut.String())
	assert.True(t, opened)
}

func TestViewCmdRejectsZeroWorkers(t *testing.T) {
	path := createTestFile(t, "doc.md", "text")
	code, _, stderr := runCLI(t, "view", "--image-workers", "0", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--image-workers")
}
