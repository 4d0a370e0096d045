package render

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/kk-code-lab/mdview/internal/imagefetch"
	"github.com/kk-code-lab/mdview/internal/markdown"
	"github.com/kk-code-lab/mdview/internal/textutil"
)

const (
	defaultRuleWidth = 40
	codeIndent       = "    "
	quotePrefix      = "│ "
)

// Options controls layout.
type Options struct {
	// Width is the target line width in columns. Zero disables wrapping.
	Width int
	// Images holds fetch results by block index. Images without an entry
	// render as plain placeholders.
	Images map[int]imagefetch.Result
	// HideLinkURLs drops the " (url)" suffix after link text.
	HideLinkURLs bool
}

// Lines lays out doc. Every block produces at least one line.
func Lines(doc markdown.Document, opts Options) []Line {
	var out []Line
	for i, block := range doc.Blocks() {
		for _, segs := range renderBlock(i, block, opts) {
			out = append(out, Line{Segments: segs, Block: i})
		}
	}
	return out
}

func renderBlock(idx int, block markdown.Block, opts Options) [][]Segment {
	switch b := block.(type) {
	case markdown.Paragraph:
		return wrap(styleRun(b.Run, StylePlain, opts), opts.Width)
	case markdown.Header:
		prefix := Segment{Text: strings.Repeat("#", b.Level) + " ", Style: StyleHeading | StyleBold}
		segs := append([]Segment{prefix}, styleRun(b.Run, StyleHeading|StyleBold, opts)...)
		return wrap(segs, opts.Width)
	case markdown.List:
		return renderList(b, opts)
	case markdown.BlockQuote:
		return renderPrefixed(b.Lines, quotePrefix, StyleQuote, opts)
	case markdown.LineBlock:
		return renderPrefixed(b.Lines, "", StylePlain, opts)
	case markdown.CodeBlock:
		return renderCode(b, opts.Width)
	case markdown.HorizontalRule:
		width := opts.Width
		if width <= 0 {
			width = defaultRuleWidth
		}
		return [][]Segment{{{Text: strings.Repeat("─", width), Style: StyleRule}}}
	case markdown.Image:
		return wrap([]Segment{imagePlaceholder(b, opts.Images[idx])}, opts.Width)
	case markdown.Formula:
		return wrap([]Segment{{Text: sanitize(b.Raw), Style: StyleFormula}}, opts.Width)
	case markdown.Table:
		return renderTable(b, opts.Width)
	case markdown.EmptyLine:
		return [][]Segment{nil}
	default:
		return [][]Segment{nil}
	}
}

// styleRun converts a resolved run into segments, one per stretch of text
// covered by the same set of spans.
func styleRun(run markdown.InlineRun, base Style, opts Options) []Segment {
	text := []rune(run.Text)
	if len(run.Spans) == 0 {
		return []Segment{{Text: sanitize(run.Text), Style: base}}
	}

	cuts := []int{0, len(text)}
	for _, s := range run.Spans {
		cuts = append(cuts, clamp(s.Start, len(text)), clamp(s.End, len(text)))
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	var out []Segment
	for i := 0; i+1 < len(cuts); i++ {
		from, to := cuts[i], cuts[i+1]
		style, url := base, ""
		for _, s := range run.Spans {
			if s.Start <= from && to <= s.End && s.Start < s.End {
				style |= spanStyle(s.Kind)
				if s.Kind == markdown.SpanLink {
					url = s.URL
				}
			}
		}
		out = append(out, Segment{Text: sanitize(string(text[from:to])), Style: style, URL: url})

		if opts.HideLinkURLs {
			continue
		}
		for _, s := range run.Spans {
			if s.Kind == markdown.SpanLink && s.End == to && s.URL != "" && s.Start < s.End {
				out = append(out,
					Segment{Text: " (", Style: base},
					Segment{Text: sanitize(s.URL), Style: base | StyleLink, URL: s.URL},
					Segment{Text: ")", Style: base},
				)
			}
		}
	}
	return out
}

func clamp(v, n int) int {
	return min(max(v, 0), n)
}

func spanStyle(kind markdown.SpanKind) Style {
	switch kind {
	case markdown.SpanBold:
		return StyleBold
	case markdown.SpanItalic:
		return StyleItalic
	case markdown.SpanCode:
		return StyleCode
	case markdown.SpanStrikethrough:
		return StyleStrike
	case markdown.SpanUnderline:
		return StyleUnderline
	case markdown.SpanLink:
		return StyleLink
	default:
		return StylePlain
	}
}

func renderList(list markdown.List, opts Options) [][]Segment {
	var out [][]Segment
	for i, item := range list.Items {
		marker := list.Marker(i) + " "
		indent := strings.Repeat(" ", textutil.DisplayWidth(marker))
		width := opts.Width
		if width > 0 {
			width = max(width-len(indent), 1)
		}
		lines := wrap(styleRun(item, StylePlain, opts), width)
		for j, line := range lines {
			lead := indent
			if j == 0 {
				lead = marker
			}
			out = append(out, append([]Segment{{Text: lead}}, line...))
		}
	}
	return out
}

func renderPrefixed(runs []markdown.InlineRun, prefix string, style Style, opts Options) [][]Segment {
	width := opts.Width
	if width > 0 {
		width = max(width-textutil.DisplayWidth(prefix), 1)
	}
	var out [][]Segment
	for _, run := range runs {
		for _, line := range wrap(styleRun(run, style, opts), width) {
			if prefix != "" {
				line = append([]Segment{{Text: prefix, Style: style}}, line...)
			}
			out = append(out, line)
		}
	}
	return out
}

func renderCode(block markdown.CodeBlock, width int) [][]Segment {
	inner := width
	if width > 0 {
		inner = max(width-len(codeIndent), 1)
	}
	var out [][]Segment
	if block.Info != "" {
		out = append(out, []Segment{{Text: codeIndent + "[" + sanitize(block.Info) + "]", Style: StyleCodeBlock}})
	}
	for _, line := range strings.Split(block.Text, "\n") {
		for _, part := range hardWrap(Segment{Text: sanitize(line), Style: StyleCodeBlock}, inner) {
			out = append(out, []Segment{{Text: codeIndent, Style: StyleCodeBlock}, part})
		}
	}
	return out
}

// imagePlaceholder describes an image until, and unless, it can be shown.
func imagePlaceholder(img markdown.Image, res imagefetch.Result) Segment {
	label := img.Alt
	if label == "" && img.URL != "" {
		label = path.Base(img.URL)
	}
	if label == "" {
		label = "image"
	}
	if img.HasTitle && img.Title != "" {
		label += fmt.Sprintf(" %q", img.Title)
	}
	switch {
	case res.Err != nil:
		label += " (unavailable)"
	case res.Width > 0 && res.Height > 0:
		label += fmt.Sprintf(" %d×%d %s", res.Width, res.Height, res.Format)
	}
	return Segment{Text: sanitize("[image: " + label + "]"), Style: StylePlaceholder, URL: img.URL}
}

func sanitize(text string) string {
	return textutil.Sanitize(text)
}
