// Package viewer is the interactive terminal pager for a rendered document.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/mdview/internal/imagefetch"
	"github.com/kk-code-lab/mdview/internal/markdown"
	"github.com/kk-code-lab/mdview/internal/render"
	"github.com/kk-code-lab/mdview/internal/source"
)

const reloadTimeout = 30 * time.Second

// ReloadFunc loads the document again, typically source.Load with the
// original location.
type ReloadFunc func(ctx context.Context) (source.Source, error)

// Config wires the viewer's collaborators. Fetcher, Reload and Commands are
// optional.
type Config struct {
	Fetcher      *imagefetch.Fetcher
	Reload       ReloadFunc
	Commands     Commands
	HideLinkURLs bool
	Theme        *Theme
	Logger       *slog.Logger
}

// imageEvent carries a fetch result onto the event loop. gen ties it to the
// document it was requested for.
type imageEvent struct {
	tcell.EventTime
	gen    int
	result imagefetch.Result
}

// Viewer owns the screen while Run is active. All fields are touched only
// from the event loop goroutine.
type Viewer struct {
	screen tcell.Screen
	cfg    Config
	theme  Theme
	logger *slog.Logger

	src    source.Source
	doc    markdown.Document
	links  []markdown.Link
	images map[int]imagefetch.Result
	lines  []render.Line

	gen         int
	top         int
	linkIdx     int
	status      string
	search      searchState
	showHelp    bool
	suspended   bool
	shouldQuit  bool
	cancelFetch context.CancelFunc
}

// New prepares a viewer for src. The screen must already be initialised.
func New(screen tcell.Screen, src source.Source, cfg Config) *Viewer {
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	v := &Viewer{
		screen: screen,
		cfg:    cfg,
		theme:  theme,
		logger: logger,
	}
	v.setSource(src)
	return v
}

// Run processes terminal events until the user quits or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer v.stopFetch()

	v.startFetch(ctx)
	v.layout()
	v.draw()

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	for !v.shouldQuit {
		select {
		case ev := <-eventChan:
			if v.handleEvent(ctx, ev) {
				v.draw()
			}
		case <-sigContCh:
			if v.resumeAfterStop() {
				v.draw()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// setSource replaces the document. Image results of the previous document
// are discarded.
func (v *Viewer) setSource(src source.Source) {
	v.src = src
	v.doc = markdown.Segment(src.Text)
	v.links = v.doc.Links()
	v.images = make(map[int]imagefetch.Result)
	v.linkIdx = -1
	v.gen++
}

func (v *Viewer) startFetch(ctx context.Context) {
	if v.cfg.Fetcher == nil {
		return
	}
	refs := imagefetch.RefsFor(v.doc, v.src.Base)
	if len(refs) == 0 {
		return
	}
	v.stopFetch()
	ctx, cancel := context.WithCancel(ctx)
	v.cancelFetch = cancel

	gen := v.gen
	results := v.cfg.Fetcher.Start(ctx, refs)
	go func() {
		for res := range results {
			ev := &imageEvent{gen: gen, result: res}
			ev.SetEventNow()
			if err := v.screen.PostEvent(ev); err != nil {
				v.logger.Debug("dropped image result", "index", res.Index, "err", err)
			}
		}
	}()
}

func (v *Viewer) stopFetch() {
	if v.cancelFetch != nil {
		v.cancelFetch()
		v.cancelFetch = nil
	}
}

// layout re-renders the document for the current screen width.
func (v *Viewer) layout() {
	w, _ := v.screen.Size()
	v.lines = render.Lines(v.doc, render.Options{
		Width:        w,
		Images:       v.images,
		HideLinkURLs: v.cfg.HideLinkURLs,
	})
	v.clampTop()
	if v.search.query != "" {
		v.collectHits()
	}
}

func (v *Viewer) bodyHeight() int {
	_, h := v.screen.Size()
	return max(h-1, 1)
}

func (v *Viewer) clampTop() {
	maxTop := max(len(v.lines)-v.bodyHeight(), 0)
	v.top = min(max(v.top, 0), maxTop)
}

func (v *Viewer) scroll(delta int) {
	v.top += delta
	v.clampTop()
}

// handleEvent applies ev and reports whether the screen needs a redraw.
func (v *Viewer) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ctx, ev)
	case *tcell.EventResize:
		v.screen.Sync()
		v.layout()
		return true
	case *imageEvent:
		if ev.gen != v.gen {
			return false
		}
		v.images[ev.result.Index] = ev.result
		v.layout()
		return true
	}
	return false
}

func (v *Viewer) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		v.shouldQuit = true
		return false
	}
	if v.showHelp {
		if ev.Key() == tcell.KeyEscape || (ev.Key() == tcell.KeyRune && (ev.Rune() == '?' || ev.Rune() == 'q')) {
			v.showHelp = false
			return true
		}
		return false
	}
	if v.search.typing {
		return v.handleSearchKey(ev)
	}

	v.status = ""
	page := v.bodyHeight()
	switch ev.Key() {
	case tcell.KeyEscape:
		if v.search.query != "" {
			v.cancelSearch()
			return true
		}
		v.shouldQuit = true
		return false
	case tcell.KeyDown, tcell.KeyEnter:
		v.scroll(1)
	case tcell.KeyUp:
		v.scroll(-1)
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		v.scroll(page)
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		v.scroll(-page)
	case tcell.KeyHome:
		v.top = 0
	case tcell.KeyEnd:
		v.top = len(v.lines)
		v.clampTop()
	case tcell.KeyTab:
		v.nextLink(1)
	case tcell.KeyBacktab:
		v.nextLink(-1)
	case tcell.KeyCtrlZ:
		v.suspendToShell()
		v.resumeAfterStop()
	case tcell.KeyRune:
		return v.handleRune(ctx, ev.Rune())
	default:
		return false
	}
	return true
}

func (v *Viewer) handleRune(ctx context.Context, r rune) bool {
	page := v.bodyHeight()
	switch r {
	case 'q':
		v.shouldQuit = true
		return false
	case 'j':
		v.scroll(1)
	case 'k':
		v.scroll(-1)
	case ' ', 'f':
		v.scroll(page)
	case 'b':
		v.scroll(-page)
	case 'd':
		v.scroll(page / 2)
	case 'u':
		v.scroll(-page / 2)
	case 'g':
		v.top = 0
	case 'G':
		v.top = len(v.lines)
		v.clampTop()
	case 'l':
		v.nextLink(1)
	case 'L':
		v.nextLink(-1)
	case '/':
		v.enterSearch()
	case 'n':
		v.moveSearchCursor(1)
	case 'N':
		v.moveSearchCursor(-1)
	case '?':
		v.showHelp = true
	case 'r':
		v.reload(ctx)
	case 'y':
		v.yank()
	case 'e':
		v.edit(ctx)
	default:
		return false
	}
	return true
}

// nextLink cycles through the document's links, scrolls to the selected
// one and shows it in the status bar.
func (v *Viewer) nextLink(step int) {
	if len(v.links) == 0 {
		v.status = "no links"
		return
	}
	n := len(v.links)
	if v.linkIdx < 0 && step < 0 {
		v.linkIdx = n - 1
	} else {
		v.linkIdx = ((v.linkIdx+step)%n + n) % n
	}
	link := v.links[v.linkIdx]
	v.status = fmt.Sprintf("[%d/%d] %s <%s>", v.linkIdx+1, n, link.Text, link.URL)
	for i, line := range v.lines {
		if line.Block == link.Block {
			if i < v.top || i >= v.top+v.bodyHeight() {
				v.top = i
				v.clampTop()
			}
			break
		}
	}
}

// reload loads the document again and re-segments it only when its digest
// changed.
func (v *Viewer) reload(ctx context.Context) {
	if v.cfg.Reload == nil {
		v.status = "reload unavailable"
		return
	}
	loadCtx, cancel := context.WithTimeout(ctx, reloadTimeout)
	defer cancel()

	src, err := v.cfg.Reload(loadCtx)
	if err != nil {
		v.logger.Warn("reload failed", "location", v.src.Location, "err", err)
		v.status = "reload failed: " + err.Error()
		return
	}
	if src.Digest == v.src.Digest {
		v.status = "unchanged"
		return
	}
	v.setSource(src)
	v.startFetch(ctx)
	v.layout()
	v.status = "reloaded"
	v.logger.Debug("document reloaded", "location", src.Location, "blocks", v.doc.Len())
}

// yank copies the selected link's URL, or the document location when no
// link is selected.
func (v *Viewer) yank() {
	text := v.src.Location
	if v.linkIdx >= 0 && v.linkIdx < len(v.links) {
		text = v.links[v.linkIdx].URL
	}
	if text == "" {
		v.status = "nothing to copy"
		return
	}
	if err := v.copyToClipboard(text); err != nil {
		v.logger.Warn("copy failed", "err", err)
		v.status = "copy failed: " + err.Error()
		return
	}
	v.status = "copied " + text
}

// edit opens a local document in the editor and reloads it afterwards.
func (v *Viewer) edit(ctx context.Context) {
	if v.src.Path == "" {
		v.status = "cannot edit remote document"
		return
	}
	if v.src.Compressed {
		v.status = "cannot edit compressed document"
		return
	}
	if err := v.openInEditor(v.src.Path); err != nil {
		v.logger.Warn("editor failed", "path", v.src.Path, "err", err)
		v.status = "editor failed: " + err.Error()
		return
	}
	v.reload(ctx)
}
