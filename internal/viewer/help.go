package viewer

import (
	"fmt"

	"github.com/kk-code-lab/mdview/internal/textutil"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

func (v *Viewer) helpLines() []string {
	actions := []helpEntry{}
	if v.cfg.Reload != nil {
		actions = append(actions, helpEntry{"r", "Reload document"})
	}
	if len(v.cfg.Commands.Clipboard) > 0 {
		actions = append(actions, helpEntry{"y", "Copy link or location"})
	}
	if len(v.cfg.Commands.Editor) > 0 && v.src.Path != "" {
		actions = append(actions, helpEntry{"e", "Edit in $EDITOR"})
	}
	actions = append(actions, helpEntry{"Ctrl+Z", "Suspend"})

	sections := []helpSection{
		{"Navigation", []helpEntry{
			{"j/k ↑/↓", "Scroll one line"},
			{"Space/b", "Page down/up"},
			{"d/u", "Half page down/up"},
			{"g/G", "Top/bottom"},
		}},
		{"Links", []helpEntry{
			{"Tab/l", "Next link"},
			{"S-Tab/L", "Previous link"},
		}},
		{"Search", []helpEntry{
			{"/", "Search rendered text"},
			{"n/N", "Next/previous match"},
			{"Esc", "Clear search"},
		}},
		{"Actions", actions},
		{"Exit", []helpEntry{
			{"q", "Quit"},
			{"?", "Close this help"},
		}},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, e := range section.entries {
			lines = append(lines, fmt.Sprintf("  %-10s %s", e.keys, e.desc))
		}
	}
	return lines
}

func (v *Viewer) drawHelp(w, h int) {
	base := v.theme.Base
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v.screen.SetContent(x, y, ' ', nil, base)
		}
	}

	header := v.theme.StatusBar.Bold(true)
	title := " Help "
	v.drawText(max((w-textutil.DisplayWidth(title))/2, 0), 0, w, title, header)

	row := 2
	for _, line := range v.helpLines() {
		if row >= h-1 {
			break
		}
		v.drawText(2, row, w, textutil.Truncate(line, max(w-4, 0), "…"), base)
		row++
	}
	if h > 0 {
		v.drawText(0, h-1, w, textutil.Truncate("? / Esc / q close", w, "…"), header)
	}
}
