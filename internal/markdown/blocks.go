package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxHeaderLevel = 6

var imagePattern = regexp.MustCompile(`!\[(.*?)\]\((.*?)(?:\s+"(.*?)")?\)`)

func matchEmptyLine(lines []string, i int) (Block, int, bool) {
	if strings.TrimSpace(lines[i]) != "" {
		return nil, i, false
	}
	return EmptyLine{}, i + 1, true
}

func matchIndentedCode(lines []string, i int) (Block, int, bool) {
	if !isIndentedCode(lines[i]) {
		return nil, i, false
	}
	var content []string
	next := i
	for next < len(lines) && isIndentedCode(lines[next]) {
		content = append(content, lines[next][4:])
		next++
	}
	return CodeBlock{Text: trimTrailingSpace(strings.Join(content, "\n"))}, next, true
}

func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "    ")
}

func matchHeader(lines []string, i int) (Block, int, bool) {
	trimmed := strings.TrimSpace(lines[i])
	if strings.HasPrefix(trimmed, "#") {
		run := countRepeatRune(trimmed, '#')
		level := min(run, maxHeaderLevel)
		return Header{Level: level, Run: PlainRun(strings.TrimSpace(trimmed[run:]))}, i + 1, true
	}
	if level, ok := setextLevel(lines, i); ok {
		return Header{Level: level, Run: PlainRun(trimmed)}, i + 2, true
	}
	return nil, i, false
}

func setextLevel(lines []string, i int) (int, bool) {
	if i+1 >= len(lines) {
		return 0, false
	}
	next := strings.TrimSpace(lines[i+1])
	switch {
	case isRunOf(next, '='):
		return 1, true
	case isRunOf(next, '-'):
		return 2, true
	default:
		return 0, false
	}
}

func matchUnorderedList(lines []string, i int) (Block, int, bool) {
	if !isUnorderedItem(strings.TrimSpace(lines[i])) {
		return nil, i, false
	}
	var items []InlineRun
	next := i
	for next < len(lines) {
		trimmed := strings.TrimSpace(lines[next])
		if !isUnorderedItem(trimmed) {
			break
		}
		items = append(items, PlainRun(trimmed[2:]))
		next++
	}
	return List{Items: items}, next, true
}

func isUnorderedItem(trimmed string) bool {
	return strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- ")
}

func matchOrderedList(lines []string, i int) (Block, int, bool) {
	if _, ok := orderedItem(strings.TrimSpace(lines[i])); !ok {
		return nil, i, false
	}
	var items []InlineRun
	next := i
	for next < len(lines) {
		text, ok := orderedItem(strings.TrimSpace(lines[next]))
		if !ok {
			break
		}
		items = append(items, PlainRun(text))
		next++
	}
	return List{Ordered: true, Items: items}, next, true
}

// orderedItem matches "<digits>. <text>" and returns text.
func orderedItem(trimmed string) (string, bool) {
	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits == 0 || !strings.HasPrefix(trimmed[digits:], ". ") {
		return "", false
	}
	rest := trimmed[digits+2:]
	if rest == "" {
		return "", false
	}
	return rest, true
}

func matchBlockQuote(lines []string, i int) (Block, int, bool) {
	if !strings.HasPrefix(strings.TrimSpace(lines[i]), "> ") {
		return nil, i, false
	}
	var quoted []InlineRun
	next := i
	for next < len(lines) {
		trimmed := strings.TrimSpace(lines[next])
		if !strings.HasPrefix(trimmed, ">") {
			break
		}
		quoted = append(quoted, PlainRun(strings.TrimSpace(trimmed[1:])))
		next++
	}
	return BlockQuote{Lines: quoted}, next, true
}

func matchHorizontalRule(lines []string, i int) (Block, int, bool) {
	if !isHorizontalRule(strings.TrimSpace(lines[i])) {
		return nil, i, false
	}
	return HorizontalRule{}, i + 1, true
}

// isHorizontalRule accepts a line that opens with three '-' or '*' and
// contains nothing but that character and blanks.
func isHorizontalRule(trimmed string) bool {
	var ch rune
	switch {
	case strings.HasPrefix(trimmed, "---"):
		ch = '-'
	case strings.HasPrefix(trimmed, "***"):
		ch = '*'
	default:
		return false
	}
	return strings.IndexFunc(trimmed, func(r rune) bool {
		return r != ch && r != ' ' && r != '\t'
	}) == -1
}

type fenceSpec struct {
	delimiter rune
	length    int
	info      string
}

func detectFence(trimmed string) (fenceSpec, bool) {
	if trimmed == "" {
		return fenceSpec{}, false
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	if first != '`' && first != '~' {
		return fenceSpec{}, false
	}
	count := countRepeatRune(trimmed, first)
	if count < 3 {
		return fenceSpec{}, false
	}
	info := strings.TrimSpace(trimmed[count:])
	if first == '`' && strings.ContainsRune(info, '`') {
		return fenceSpec{}, false
	}
	return fenceSpec{delimiter: first, length: count, info: info}, true
}

func matchFencedCode(lines []string, i int) (Block, int, bool) {
	fence, ok := detectFence(strings.TrimSpace(lines[i]))
	if !ok {
		return nil, i, false
	}
	var content []string
	next := i + 1
	for next < len(lines) {
		line := lines[next]
		if closesFence(fence, strings.TrimSpace(line)) {
			next++
			break
		}
		content = append(content, line)
		next++
	}
	return CodeBlock{
		Text:   trimTrailingSpace(strings.Join(content, "\n")),
		Fenced: true,
		Info:   fence.info,
	}, next, true
}

// closesFence reports whether trimmed ends the block opened by fence. A tilde
// block ends on any line starting with "~~~"; a backtick block needs a bare
// backtick run at least as long as the opener.
func closesFence(fence fenceSpec, trimmed string) bool {
	if fence.delimiter == '~' {
		return strings.HasPrefix(trimmed, "~~~")
	}
	closing, ok := detectFence(trimmed)
	return ok && closing.delimiter == fence.delimiter && closing.length >= fence.length
}

func matchLineBlock(lines []string, i int) (Block, int, bool) {
	if !isLineBlockLine(lines, i) {
		return nil, i, false
	}
	var verse []InlineRun
	next := i
	for next < len(lines) && isLineBlockLine(lines, next) {
		verse = append(verse, PlainRun(strings.TrimSpace(lines[next])[2:]))
		next++
	}
	return LineBlock{Lines: verse}, next, true
}

func isLineBlockLine(lines []string, i int) bool {
	return strings.HasPrefix(strings.TrimSpace(lines[i]), "| ") && !isPipeTableStart(lines, i)
}

func matchImage(lines []string, i int) (Block, int, bool) {
	trimmed := strings.TrimSpace(lines[i])
	if !strings.HasPrefix(trimmed, "!") {
		return nil, i, false
	}
	return parseImage(trimmed), i + 1, true
}

func parseImage(trimmed string) Image {
	m := imagePattern.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return Image{Alt: strings.TrimSpace(trimmed[1:])}
	}
	img := Image{
		Alt: trimmed[m[2]:m[3]],
		URL: strings.TrimSpace(trimmed[m[4]:m[5]]),
	}
	if m[6] >= 0 {
		img.Title = trimmed[m[6]:m[7]]
		img.HasTitle = true
	}
	return img
}

func matchFormula(lines []string, i int) (Block, int, bool) {
	trimmed := strings.TrimSpace(lines[i])
	if !strings.HasPrefix(trimmed, "$") {
		return nil, i, false
	}
	return Formula{Raw: trimmed}, i + 1, true
}

func matchParagraph(lines []string, i int) (Block, int, bool) {
	return Paragraph{Run: Resolve(strings.TrimSpace(lines[i]))}, i + 1, true
}

func countRepeatRune(s string, target rune) int {
	n := 0
	for _, r := range s {
		if r != target {
			break
		}
		n++
	}
	return n
}

func isRunOf(s string, ch rune) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != ch {
			return false
		}
	}
	return true
}

func trimTrailingSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
