package markdown

import (
	"cmp"
	"slices"
)

// inlineMatch locates one marker occurrence in rune offsets. The inner range
// is the captured content; url is only filled by the link marker.
type inlineMatch struct {
	start      int
	end        int
	innerStart int
	innerEnd   int
	url        string
}

type inlineMarker struct {
	name  string
	kinds []SpanKind
	find  func(text []rune) (inlineMatch, bool)
}

// inlineMarkers is ordered by priority: on equal start index the earlier
// entry wins.
var inlineMarkers = []inlineMarker{
	{name: "bold-italic", kinds: []SpanKind{SpanBold, SpanItalic}, find: delimited("***", "***", notLineBreak)},
	{name: "link", kinds: []SpanKind{SpanLink}, find: findLink},
	{name: "strikethrough", kinds: []SpanKind{SpanStrikethrough}, find: delimited("~~", "~~", notLineBreak)},
	{name: "underline", kinds: []SpanKind{SpanUnderline}, find: delimited("__", "__", func(r rune) bool { return r != '_' })},
	{name: "bold", kinds: []SpanKind{SpanBold}, find: delimited("**", "**", notLineBreak)},
	{name: "italic", kinds: []SpanKind{SpanItalic}, find: findItalic},
	{name: "code", kinds: []SpanKind{SpanCode}, find: delimited("`", "`", notLineBreak)},
}

// Resolve strips inline markup from text and returns the display text with
// its style spans. It never fails: text without recognised markup comes back
// unchanged with no spans.
func Resolve(text string) InlineRun {
	return ResolveAt(text, 0)
}

// ResolveAt is Resolve with every span offset shifted by base. Invalid UTF-8
// in text without markup is returned byte for byte.
func ResolveAt(text string, base int) InlineRun {
	run := resolveRunes([]rune(text), base)
	if len(run.Spans) == 0 {
		run.Text = text
	}
	return run
}

func resolveRunes(text []rune, base int) InlineRun {
	var (
		best   inlineMatch
		marker *inlineMarker
	)
	for idx := range inlineMarkers {
		m, ok := inlineMarkers[idx].find(text)
		if !ok {
			continue
		}
		if marker == nil || m.start < best.start {
			best = m
			marker = &inlineMarkers[idx]
		}
	}
	if marker == nil {
		return InlineRun{Text: string(text)}
	}

	before := text[:best.start]
	inner := resolveRunes(text[best.innerStart:best.innerEnd], base+len(before))
	innerLen := runeLen(inner.Text)
	after := resolveRunes(text[best.end:], base+len(before)+innerLen)

	start := base + len(before)
	spans := make([]Span, 0, len(marker.kinds)+len(inner.Spans)+len(after.Spans))
	for _, kind := range marker.kinds {
		span := Span{Kind: kind, Start: start, End: start + innerLen}
		if kind == SpanLink {
			span.URL = best.url
		}
		spans = append(spans, span)
	}
	spans = append(spans, inner.Spans...)
	spans = append(spans, after.Spans...)
	slices.SortStableFunc(spans, func(a, b Span) int { return cmp.Compare(a.Start, b.Start) })

	return InlineRun{
		Text:  string(before) + inner.Text + after.Text,
		Spans: spans,
	}
}

// delimited finds the leftmost open…close pair with the shortest non-empty
// inner run made of runes accepted by allow.
func delimited(open, close string, allow func(rune) bool) func([]rune) (inlineMatch, bool) {
	o, c := []rune(open), []rune(close)
	isClose := func(text []rune, k int) bool { return hasRunePrefix(text[k:], c) }
	return func(text []rune) (inlineMatch, bool) {
		for i := 0; i+len(o) <= len(text); i++ {
			if !hasRunePrefix(text[i:], o) {
				continue
			}
			from := i + len(o)
			if k, ok := scanClose(text, from, isClose, allow); ok {
				return inlineMatch{start: i, end: k + len(c), innerStart: from, innerEnd: k}, true
			}
		}
		return inlineMatch{}, false
	}
}

// findItalic matches a single '*' pair where neither delimiter touches
// another '*'.
func findItalic(text []rune) (inlineMatch, bool) {
	lone := func(k int) bool {
		if text[k] != '*' {
			return false
		}
		if k > 0 && text[k-1] == '*' {
			return false
		}
		return k+1 >= len(text) || text[k+1] != '*'
	}
	isClose := func(_ []rune, k int) bool { return lone(k) }
	for i := 0; i < len(text); i++ {
		if !lone(i) {
			continue
		}
		if k, ok := scanClose(text, i+1, isClose, notLineBreak); ok {
			return inlineMatch{start: i, end: k + 1, innerStart: i + 1, innerEnd: k}, true
		}
	}
	return inlineMatch{}, false
}

// findLink matches [label](url) with shortest non-empty label and url.
func findLink(text []rune) (inlineMatch, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		for k := i + 1; k < len(text); k++ {
			if k > i+1 && text[k] == ']' && k+1 < len(text) && text[k+1] == '(' {
				urlStart := k + 2
				isClose := func(t []rune, m int) bool { return t[m] == ')' }
				if m, ok := scanClose(text, urlStart, isClose, notLineBreak); ok {
					return inlineMatch{
						start:      i,
						end:        m + 1,
						innerStart: i + 1,
						innerEnd:   k,
						url:        string(text[urlStart:m]),
					}, true
				}
			}
			if !notLineBreak(text[k]) {
				break
			}
		}
	}
	return inlineMatch{}, false
}

// scanClose returns the first closer position after at least one inner rune.
func scanClose(text []rune, from int, isClose func([]rune, int) bool, allow func(rune) bool) (int, bool) {
	for k := from; k < len(text); k++ {
		if k > from && isClose(text, k) {
			return k, true
		}
		if !allow(text[k]) {
			return 0, false
		}
	}
	return 0, false
}

func hasRunePrefix(text, prefix []rune) bool {
	if len(text) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if text[i] != r {
			return false
		}
	}
	return true
}

func notLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', 0x85, 0x2028, 0x2029:
		return false
	}
	return true
}
