// Package render lays a markdown document out as styled terminal lines.
package render

import (
	"strings"

	"github.com/kk-code-lab/mdview/internal/textutil"
)

// Style is a set of presentation flags. Inline styles combine freely with
// the block style of the line they appear on.
type Style uint16

const (
	StyleBold Style = 1 << iota
	StyleItalic
	StyleCode
	StyleStrike
	StyleUnderline
	StyleLink
	StyleHeading
	StyleQuote
	StyleCodeBlock
	StyleRule
	StyleFormula
	StylePlaceholder
	StyleBorder
)

const StylePlain Style = 0

// Has reports whether every flag in f is set.
func (s Style) Has(f Style) bool { return s&f == f }

// Segment is a run of text drawn with one style. URL is set on link text.
type Segment struct {
	Text  string
	Style Style
	URL   string
}

// Line is one terminal row. Block is the index of the document block the
// line was produced from.
type Line struct {
	Segments []Segment
	Block    int
}

// Text concatenates the segment texts.
func (l Line) Text() string {
	var b strings.Builder
	for _, seg := range l.Segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Width is the display width of the line.
func (l Line) Width() int {
	w := 0
	for _, seg := range l.Segments {
		w += textutil.DisplayWidth(seg.Text)
	}
	return w
}

// PlainText flattens lines to strings without trailing blanks.
func PlainText(lines []Line) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(line.Text(), " ")
	}
	return out
}

func segmentsWidth(segs []Segment) int {
	w := 0
	for _, seg := range segs {
		w += textutil.DisplayWidth(seg.Text)
	}
	return w
}
