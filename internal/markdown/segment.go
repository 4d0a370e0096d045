package markdown

import "strings"

// blockRule tries to consume a block at lines[i]. It returns the block, the
// index of the first unconsumed line and whether the rule applied. A rule
// that applies must consume at least one line.
type blockRule struct {
	name  string
	match func(lines []string, i int) (Block, int, bool)
}

// blockRules is evaluated in order at every cursor position; the first rule
// that applies wins. The paragraph rule always applies, so the cursor always
// advances.
var blockRules = []blockRule{
	{name: "empty", match: matchEmptyLine},
	{name: "indented-code", match: matchIndentedCode},
	{name: "header", match: matchHeader},
	{name: "unordered-list", match: matchUnorderedList},
	{name: "ordered-list", match: matchOrderedList},
	{name: "quote", match: matchBlockQuote},
	{name: "rule", match: matchHorizontalRule},
	{name: "fenced-code", match: matchFencedCode},
	{name: "pipe-table", match: matchPipeTable},
	{name: "line-block", match: matchLineBlock},
	{name: "image", match: matchImage},
	{name: "formula", match: matchFormula},
	{name: "loose-table", match: matchLooseTable},
	{name: "paragraph", match: matchParagraph},
}

// Segment parses a whole document into blocks.
func Segment(source string) Document {
	return Document{blocks: segmentLines(SplitLines(source))}
}

// SegmentLines parses a document that is already split into lines.
func SegmentLines(lines []string) Document {
	return Document{blocks: segmentLines(lines)}
}

func segmentLines(lines []string) []Block {
	var blocks []Block
	i := 0
	for i < len(lines) {
		block, next := classify(lines, i)
		blocks = append(blocks, block)
		i = next
	}
	return blocks
}

func classify(lines []string, i int) (Block, int) {
	for _, rule := range blockRules {
		if block, next, ok := rule.match(lines, i); ok && next > i {
			return block, next
		}
	}
	// unreachable while the paragraph rule is last
	return Paragraph{Run: Resolve(strings.TrimSpace(lines[i]))}, i + 1
}

// RuleName reports which block rule applies at lines[i]. It exists so the
// priority order can be inspected line by line.
func RuleName(lines []string, i int) string {
	for _, rule := range blockRules {
		if _, next, ok := rule.match(lines, i); ok && next > i {
			return rule.name
		}
	}
	return ""
}

// SplitLines splits on "\r\n", "\n" and "\r". A trailing line terminator
// does not produce an extra empty line.
func SplitLines(source string) []string {
	if source == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			lines = append(lines, source[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, source[start:i])
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}
