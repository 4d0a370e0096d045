package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/mdview/internal/imagefetch"
	"github.com/kk-code-lab/mdview/internal/logging"
	"github.com/kk-code-lab/mdview/internal/render"
	"github.com/kk-code-lab/mdview/internal/source"
)

const (
	screenWidth  = 40
	screenHeight = 6
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	scr := tcell.NewSimulationScreen("")
	require.NoError(t, scr.Init())
	t.Cleanup(scr.Fini)
	scr.SetSize(screenWidth, screenHeight)
	return scr
}

func loadText(t *testing.T, name, text string) (source.Source, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	src, err := source.Load(context.Background(), p, source.Options{Logger: logging.Discard()})
	require.NoError(t, err)
	return src, p
}

func newTestViewer(t *testing.T, text string, cfg Config) (*Viewer, tcell.SimulationScreen) {
	t.Helper()
	scr := newScreen(t)
	src, _ := loadText(t, "doc.md", text)
	cfg.Logger = logging.Discard()
	v := New(scr, src, cfg)
	v.layout()
	return v, scr
}

func rowText(scr tcell.SimulationScreen, y int) string {
	var b strings.Builder
	w, _ := scr.Size()
	for x := 0; x < w; x++ {
		mainc, _, _, _ := scr.GetContent(x, y)
		b.WriteRune(mainc)
	}
	return strings.TrimRight(b.String(), " ")
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return strings.Join(lines, "\n")
}

func TestDrawShowsDocumentAndStatus(t *testing.T) {
	v, scr := newTestViewer(t, "# Title\nbody **text**", Config{})
	v.draw()

	assert.Equal(t, "# Title", rowText(scr, 0))
	assert.Equal(t, "body text", rowText(scr, 1))
	status := rowText(scr, screenHeight-1)
	assert.True(t, strings.HasPrefix(status, "doc.md"), status)
	assert.True(t, strings.HasSuffix(status, "all"), status)
}

func TestScrollKeys(t *testing.T) {
	v, scr := newTestViewer(t, numberedLines(20), Config{})
	ctx := context.Background()
	body := screenHeight - 1

	assert.True(t, v.handleEvent(ctx, runeKey('j')))
	assert.Equal(t, 1, v.top)
	v.handleEvent(ctx, runeKey('k'))
	v.handleEvent(ctx, runeKey('k'))
	assert.Equal(t, 0, v.top)

	v.handleEvent(ctx, key(tcell.KeyPgDn))
	assert.Equal(t, body, v.top)
	v.handleEvent(ctx, runeKey('G'))
	assert.Equal(t, 20-body, v.top)
	v.handleEvent(ctx, runeKey('j'))
	assert.Equal(t, 20-body, v.top)

	v.draw()
	assert.Equal(t, "line 19", rowText(scr, body-1))
	assert.True(t, strings.HasSuffix(rowText(scr, screenHeight-1), "end"))

	v.handleEvent(ctx, key(tcell.KeyHome))
	assert.Equal(t, 0, v.top)
	v.handleEvent(ctx, runeKey('d'))
	assert.Equal(t, body/2, v.top)

	assert.False(t, v.handleEvent(ctx, runeKey('q')))
	assert.True(t, v.shouldQuit)
}

func TestImageEventUpdatesPlaceholder(t *testing.T) {
	v, scr := newTestViewer(t, "![logo](a.png)", Config{})
	v.draw()
	assert.Equal(t, "[image: logo]", rowText(scr, 0))

	stale := &imageEvent{gen: v.gen - 1, result: imagefetch.Result{Index: 0, Width: 9, Height: 9, Format: "gif"}}
	assert.False(t, v.handleEvent(context.Background(), stale))

	ev := &imageEvent{gen: v.gen, result: imagefetch.Result{Index: 0, Width: 3, Height: 4, Format: "png"}}
	require.True(t, v.handleEvent(context.Background(), ev))
	v.draw()
	assert.Equal(t, "[image: logo 3×4 png]", rowText(scr, 0))

	ev = &imageEvent{gen: v.gen, result: imagefetch.Result{Index: 0, Err: errors.New("gone")}}
	v.handleEvent(context.Background(), ev)
	v.draw()
	assert.Equal(t, "[image: logo (unavailable)]", rowText(scr, 0))
}

func TestLinkCycling(t *testing.T) {
	v, _ := newTestViewer(t, "see [a](u1)\n\n[b](u2)", Config{HideLinkURLs: true})
	ctx := context.Background()

	v.handleEvent(ctx, key(tcell.KeyTab))
	assert.Equal(t, "[1/2] a <u1>", v.status)
	v.handleEvent(ctx, runeKey('l'))
	assert.Equal(t, "[2/2] b <u2>", v.status)
	v.handleEvent(ctx, runeKey('l'))
	assert.Equal(t, "[1/2] a <u1>", v.status)
	v.handleEvent(ctx, key(tcell.KeyBacktab))
	assert.Equal(t, "[2/2] b <u2>", v.status)

	plain, _ := newTestViewer(t, "no links here", Config{})
	plain.handleEvent(ctx, runeKey('l'))
	assert.Equal(t, "no links", plain.status)
}

func TestReloadSkipsUnchangedContent(t *testing.T) {
	scr := newScreen(t)
	src, p := loadText(t, "doc.md", "first")
	reload := func(ctx context.Context) (source.Source, error) {
		return source.Load(ctx, p, source.Options{Logger: logging.Discard()})
	}
	v := New(scr, src, Config{Reload: reload, Logger: logging.Discard()})
	v.layout()
	ctx := context.Background()

	gen := v.gen
	v.handleEvent(ctx, runeKey('r'))
	assert.Equal(t, "unchanged", v.status)
	assert.Equal(t, gen, v.gen)

	require.NoError(t, os.WriteFile(p, []byte("second\n\nthird"), 0o644))
	v.handleEvent(ctx, runeKey('r'))
	assert.Equal(t, "reloaded", v.status)
	assert.Equal(t, 3, v.doc.Len())
	assert.Equal(t, []string{"second", "", "third"}, render.PlainText(v.lines))

	require.NoError(t, os.Remove(p))
	v.handleEvent(ctx, runeKey('r'))
	assert.True(t, strings.HasPrefix(v.status, "reload failed"), v.status)
	assert.Equal(t, 3, v.doc.Len())
}

func TestReloadUnavailable(t *testing.T) {
	v, _ := newTestViewer(t, "x", Config{})
	v.handleEvent(context.Background(), runeKey('r'))
	assert.Equal(t, "reload unavailable", v.status)
}

func TestResizeRelayouts(t *testing.T) {
	v, scr := newTestViewer(t, "aaaa bbbb cccc dddd", Config{})
	require.Len(t, v.lines, 1)
	scr.SetSize(10, screenHeight)
	assert.True(t, v.handleEvent(context.Background(), tcell.NewEventResize(10, screenHeight)))
	assert.Equal(t, []string{"aaaa bbbb", "cccc dddd"}, render.PlainText(v.lines))
}

func TestRunQuitsOnKey(t *testing.T) {
	v, scr := newTestViewer(t, "hello", Config{})
	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	require.Eventually(t, func() bool { return rowText(scr, 0) == "hello" }, 2*time.Second, 10*time.Millisecond)
	scr.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("viewer did not quit")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	v, _ := newTestViewer(t, "hello", Config{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("viewer ignored cancellation")
	}
}

func TestRunFetchesImages(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dot.png"), buf.Bytes(), 0o644))

	scr := newScreen(t)
	src := source.Source{Name: "doc.md", Base: dir, Text: "![dot](dot.png)\n![gone](missing.png)"}
	fetcher := imagefetch.New(imagefetch.Config{Logger: logging.Discard()})
	v := New(scr, src, Config{Fetcher: fetcher, Logger: logging.Discard()})

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return rowText(scr, 0) == "[image: dot 2×2 png]" && rowText(scr, 1) == "[image: gone (unavailable)]"
	}, 5*time.Second, 10*time.Millisecond)

	scr.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	require.NoError(t, <-done)
}

func TestThemeStyleCombinesFlags(t *testing.T) {
	theme := DefaultTheme()
	_, _, attrs := theme.style(render.StyleBold | render.StyleItalic).Decompose()
	assert.NotZero(t, attrs&tcell.AttrBold)
	assert.NotZero(t, attrs&tcell.AttrItalic)

	fg, _, attrs := theme.style(render.StyleLink).Decompose()
	assert.Equal(t, theme.LinkFg, fg)
	assert.NotZero(t, attrs&tcell.AttrUnderline)

	_, bg, _ := theme.style(render.StyleCodeBlock).Decompose()
	_, wantBg, _ := theme.CodeBlock.Decompose()
	assert.Equal(t, wantBg, bg)
}
