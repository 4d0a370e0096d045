package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const DefaultTabWidth = 4

// DisplayWidth reports the terminal width of text. Width is measured per
// grapheme cluster so emoji sequences and flags count as a single glyph.
func DisplayWidth(text string) int {
	width := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		width += clusterWidth(g)
	}
	return width
}

func clusterWidth(g *uniseg.Graphemes) int {
	w := g.Width()
	if w < 1 {
		w = 1
	}
	return w
}

// Truncate shortens text to at most width columns. When text is cut the
// ellipsis is appended and counted against width.
func Truncate(text string, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(text) <= width {
		return text
	}
	ellWidth := DisplayWidth(ellipsis)
	if ellWidth >= width {
		return TakeWidth(ellipsis, width)
	}
	return TakeWidth(text, width-ellWidth) + ellipsis
}

// TakeWidth returns the longest prefix of text whose width does not exceed
// width. Clusters are never split.
func TakeWidth(text string, width int) string {
	prefix, _ := SplitAtWidth(text, width)
	return prefix
}

// SplitAtWidth cuts text after the last whole cluster that fits in width.
func SplitAtWidth(text string, width int) (head, tail string) {
	used := 0
	cut := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := clusterWidth(g)
		if used+w > width {
			break
		}
		used += w
		_, cut = g.Positions()
	}
	return text[:cut], text[cut:]
}

// ExpandTabs replaces tab characters with spaces respecting terminal column width.
func ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}

	var b strings.Builder
	column := 0
	for _, ru := range text {
		switch ru {
		case '\t':
			spaces := tabWidth - (column % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			column += spaces
		case '\n':
			b.WriteRune(ru)
			column = 0
		default:
			b.WriteRune(ru)
			column += max(runewidth.RuneWidth(ru), 1)
		}
	}
	return b.String()
}

// PadRight appends spaces until text is width columns wide.
func PadRight(text string, width int) string {
	if pad := width - DisplayWidth(text); pad > 0 {
		return text + strings.Repeat(" ", pad)
	}
	return text
}
