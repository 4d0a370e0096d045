package markdown

import (
	"strconv"
	"unicode/utf8"
)

// SpanKind identifies an inline style.
type SpanKind int

const (
	SpanBold SpanKind = iota
	SpanItalic
	SpanCode
	SpanStrikethrough
	SpanUnderline
	SpanLink
)

var spanKindNames = [...]string{
	SpanBold:          "bold",
	SpanItalic:        "italic",
	SpanCode:          "code",
	SpanStrikethrough: "strikethrough",
	SpanUnderline:     "underline",
	SpanLink:          "link",
}

func (k SpanKind) String() string {
	if k >= 0 && int(k) < len(spanKindNames) {
		return spanKindNames[k]
	}
	return "SpanKind(" + strconv.Itoa(int(k)) + ")"
}

// Span styles the half-open rune range [Start, End) of an InlineRun's text.
// URL is only set for SpanLink.
type Span struct {
	Kind  SpanKind
	Start int
	End   int
	URL   string
}

// Len returns the number of runes covered.
func (s Span) Len() int { return s.End - s.Start }

// InlineRun is resolved display text plus its style spans, sorted by Start.
type InlineRun struct {
	Text  string
	Spans []Span
}

// PlainRun wraps text that carries no styling.
func PlainRun(text string) InlineRun {
	return InlineRun{Text: text}
}

// Slice returns the text covered by s.
func (r InlineRun) Slice(s Span) string {
	start, end := r.ByteRange(s)
	return r.Text[start:end]
}

// ByteRange converts the rune offsets of s into byte offsets of r.Text.
func (r InlineRun) ByteRange(s Span) (start, end int) {
	return runeToByteOffset(r.Text, s.Start), runeToByteOffset(r.Text, s.End)
}

// UTF16Range converts the rune offsets of s into UTF-16 code unit offsets,
// for renderers whose text APIs index by UTF-16.
func (r InlineRun) UTF16Range(s Span) (start, end int) {
	units, runes := 0, 0
	start, end = -1, -1
	for _, ru := range r.Text {
		if runes == s.Start {
			start = units
		}
		if runes == s.End {
			end = units
		}
		if ru >= 0x10000 {
			units += 2
		} else {
			units++
		}
		runes++
	}
	if start < 0 {
		start = units
	}
	if end < 0 {
		end = units
	}
	return start, end
}

func runeToByteOffset(s string, runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runeOffset {
			return i
		}
		n++
	}
	return len(s)
}

// runeLen is the length unit used for every span offset.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
