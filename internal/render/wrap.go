package render

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/kk-code-lab/mdview/internal/textutil"
)

type word struct {
	gap    []Segment
	pieces []Segment
}

// wrap breaks segs into lines no wider than width, breaking at blanks where
// possible and inside words only when a word alone is too wide. Blanks at a
// wrapped line start are dropped. width <= 0 disables wrapping.
func wrap(segs []Segment, width int) [][]Segment {
	if width <= 0 {
		return [][]Segment{segs}
	}

	var (
		lines [][]Segment
		cur   []Segment
		curW  int
	)
	flush := func() {
		lines = append(lines, cur)
		cur = nil
		curW = 0
	}

	for _, w := range splitWords(segs) {
		gapW := segmentsWidth(w.gap)
		pieces := w.pieces
		wordW := segmentsWidth(pieces)
		if curW > 0 && curW+gapW+wordW <= width {
			cur = append(cur, w.gap...)
			cur = append(cur, pieces...)
			curW += gapW + wordW
			continue
		}
		if curW > 0 {
			flush()
		}
		for wordW > width {
			head, rest := splitSegmentsAt(pieces, width)
			lines = append(lines, head)
			pieces, wordW = rest, segmentsWidth(rest)
		}
		if wordW > 0 {
			cur = append(cur, pieces...)
			curW = wordW
		}
	}
	if len(cur) > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// splitWords groups segments into words, each carrying the blanks before it.
// A word may span several segments when its style changes mid-word.
func splitWords(segs []Segment) []word {
	var (
		words  []word
		cur    word
		inWord bool
	)
	for _, seg := range segs {
		text := seg.Text
		for text != "" {
			if text[0] == ' ' {
				n := len(text) - len(strings.TrimLeft(text, " "))
				if inWord {
					words = append(words, cur)
					cur = word{}
					inWord = false
				}
				cur.gap = append(cur.gap, Segment{Text: text[:n], Style: seg.Style, URL: seg.URL})
				text = text[n:]
				continue
			}
			n := strings.IndexByte(text, ' ')
			if n < 0 {
				n = len(text)
			}
			cur.pieces = append(cur.pieces, Segment{Text: text[:n], Style: seg.Style, URL: seg.URL})
			inWord = true
			text = text[n:]
		}
	}
	if inWord {
		words = append(words, cur)
	}
	return words
}

// splitSegmentsAt cuts pieces after width columns. At least one grapheme
// cluster always goes to head so callers make progress.
func splitSegmentsAt(pieces []Segment, width int) (head, rest []Segment) {
	used := 0
	for i, p := range pieces {
		pw := textutil.DisplayWidth(p.Text)
		if used+pw <= width {
			head = append(head, p)
			used += pw
			continue
		}
		h, t := textutil.SplitAtWidth(p.Text, width-used)
		if h == "" && used == 0 {
			h, t, _, _ = uniseg.FirstGraphemeClusterInString(p.Text, -1)
		}
		if h != "" {
			head = append(head, Segment{Text: h, Style: p.Style, URL: p.URL})
		}
		if t != "" {
			rest = append(rest, Segment{Text: t, Style: p.Style, URL: p.URL})
		}
		rest = append(rest, pieces[i+1:]...)
		return head, rest
	}
	return head, nil
}

// hardWrap cuts text into lines of at most width columns without looking
// for word boundaries. Used for code, where blanks are significant.
func hardWrap(seg Segment, width int) []Segment {
	if width <= 0 || textutil.DisplayWidth(seg.Text) <= width {
		return []Segment{seg}
	}
	var out []Segment
	pieces := []Segment{seg}
	for len(pieces) > 0 {
		var head []Segment
		head, pieces = splitSegmentsAt(pieces, width)
		out = append(out, head...)
	}
	return out
}
