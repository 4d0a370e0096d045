package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kk-code-lab/mdview/internal/textutil"
)

// draw repaints the whole screen from the current layout.
func (v *Viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if v.showHelp {
		v.drawHelp(w, h)
		v.screen.Show()
		return
	}
	body := v.bodyHeight()

	for row := 0; row < body; row++ {
		idx := v.top + row
		if idx >= len(v.lines) {
			break
		}
		x := 0
		for _, seg := range v.lines[idx].Segments {
			x = v.drawText(x, row, w, seg.Text, v.theme.style(seg.Style))
		}
		v.highlightLine(idx, row, w)
	}
	if h > 0 {
		v.drawStatus(w, h-1)
	}
	v.screen.Show()
}

// drawText writes text one grapheme cluster at a time and returns the next
// column. Clusters that would cross maxX are not drawn.
func (v *Viewer) drawText(x, y, maxX int, text string, style tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		width := max(g.Width(), 1)
		if x+width > maxX {
			break
		}
		v.screen.SetContent(x, y, runes[0], runes[1:], style)
		for fill := 1; fill < width; fill++ {
			v.screen.SetContent(x+fill, y, ' ', nil, style)
		}
		x += width
	}
	return x
}

func (v *Viewer) drawStatus(w, y int) {
	style := v.theme.StatusBar
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
	right := v.position()
	left := v.status
	if v.search.typing {
		left = "/" + string(v.search.input)
	} else if left == "" {
		left = v.src.Name
	}
	avail := max(w-textutil.DisplayWidth(right)-1, 0)
	v.drawText(0, y, w, textutil.Truncate(textutil.Sanitize(left), avail, "…"), style)
	v.drawText(max(w-textutil.DisplayWidth(right), 0), y, w, right, style)
}

func (v *Viewer) position() string {
	total := len(v.lines)
	if total == 0 {
		return "empty"
	}
	bottom := min(v.top+v.bodyHeight(), total)
	switch {
	case v.top == 0 && bottom >= total:
		return "all"
	case v.top == 0:
		return "top"
	case bottom >= total:
		return "end"
	default:
		return fmt.Sprintf("%d%%", bottom*100/total)
	}
}
