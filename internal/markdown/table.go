package markdown

import "strings"

// isPipeTableStart reports whether lines[i] is a |-framed header directly
// followed by a separator row.
func isPipeTableStart(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	header := strings.TrimSpace(lines[i])
	if len(header) < 2 || !strings.HasPrefix(header, "|") || !strings.HasSuffix(header, "|") {
		return false
	}
	return isPipeSeparator(strings.TrimSpace(lines[i+1]))
}

func isPipeSeparator(trimmed string) bool {
	if !strings.Contains(trimmed, "|") || !strings.Contains(trimmed, "-") {
		return false
	}
	return strings.IndexFunc(trimmed, func(r rune) bool {
		return r != '|' && r != '-' && r != ':' && r != ' ' && r != '\t'
	}) == -1
}

func matchPipeTable(lines []string, i int) (Block, int, bool) {
	if !isPipeTableStart(lines, i) {
		return nil, i, false
	}
	header := splitTableRow(strings.TrimSpace(lines[i]))
	columns := len(header)
	align := parseTableAlignment(splitTableRow(strings.TrimSpace(lines[i+1])), columns)

	var rows [][]string
	next := i + 2
	for next < len(lines) {
		trimmed := strings.TrimSpace(lines[next])
		if trimmed == "" || !strings.Contains(trimmed, "|") {
			break
		}
		cells := splitTableRow(trimmed)
		if len(cells) != columns {
			break
		}
		rows = append(rows, cells)
		next++
	}

	return Table{
		Header:      header,
		Rows:        rows,
		ColumnCount: columns,
		Align:       align,
	}, next, true
}

// parseTableAlignment reads ':' markers from separator cells; columns the
// separator does not describe get AlignDefault.
func parseTableAlignment(parts []string, columns int) []Alignment {
	align := make([]Alignment, columns)
	for i := 0; i < columns && i < len(parts); i++ {
		part := strings.TrimSpace(parts[i])
		left := strings.HasPrefix(part, ":")
		right := strings.HasSuffix(part, ":") && len(part) > 1
		switch {
		case left && right:
			align[i] = AlignCenter
		case right:
			align[i] = AlignRight
		case left:
			align[i] = AlignLeft
		default:
			align[i] = AlignDefault
		}
	}
	return align
}

// looksLikeLooseTable is the fallback heuristic: any pipe, or a two-space
// column gap together with a dashed line (same line or the next one).
func looksLikeLooseTable(lines []string, i int) bool {
	line := lines[i]
	if strings.Contains(line, "|") {
		return true
	}
	if !strings.Contains(strings.TrimSpace(line), "  ") {
		return false
	}
	if strings.Contains(line, "---") {
		return true
	}
	return i+1 < len(lines) && strings.Contains(lines[i+1], "---") && isSeparatorLine(lines[i+1])
}

func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	return strings.IndexFunc(trimmed, func(r rune) bool {
		return r != '-' && r != '|' && r != ':' && r != ' ' && r != '\t'
	}) == -1
}

func matchLooseTable(lines []string, i int) (Block, int, bool) {
	if !looksLikeLooseTable(lines, i) {
		return nil, i, false
	}

	var (
		rows      [][]string
		colStarts []int
	)
	next := i
	for next < len(lines) {
		line := trimTrailingSpace(lines[next])
		if strings.TrimSpace(line) == "" {
			break
		}
		if !strings.Contains(line, "|") && !strings.Contains(line, "  ") {
			break
		}
		next++
		if isSeparatorLine(line) {
			continue
		}

		var cells []string
		if strings.Contains(line, "|") {
			cells = splitTableRow(strings.TrimSpace(line))
		} else {
			if colStarts == nil {
				colStarts = columnStarts(line)
			}
			cells = sliceColumns(line, colStarts)
		}
		rows = append(rows, cells)

		for next < len(lines) && isContinuationLine(lines[next], colStarts) {
			last := rows[len(rows)-1]
			last[len(last)-1] += "\n" + strings.TrimSpace(lines[next])
			next++
		}
	}
	if len(rows) == 0 {
		return nil, i, false
	}

	columns := 0
	for _, row := range rows {
		columns = max(columns, len(row))
	}
	for r, row := range rows {
		for len(row) < columns {
			row = append(row, "")
		}
		rows[r] = row
	}

	var body [][]string
	if len(rows) > 1 {
		body = rows[1:]
	}
	return Table{
		Header:      rows[0],
		Rows:        body,
		ColumnCount: columns,
		Align:       make([]Alignment, columns),
	}, next, true
}

// columnStarts returns the rune offset of every word in line.
func columnStarts(line string) []int {
	var starts []int
	inWord := false
	idx := 0
	for _, r := range line {
		blank := r == ' ' || r == '\t'
		if !blank && !inWord {
			starts = append(starts, idx)
		}
		inWord = !blank
		idx++
	}
	return starts
}

// sliceColumns cuts line into one trimmed cell per start offset; a cell
// runs up to the next start. Starts past the end of line give empty cells.
func sliceColumns(line string, starts []int) []string {
	runes := []rune(line)
	cells := make([]string, len(starts))
	for c, begin := range starts {
		end := len(runes)
		if c+1 < len(starts) {
			end = min(starts[c+1], len(runes))
		}
		if begin >= end {
			continue
		}
		cells[c] = strings.TrimSpace(string(runes[begin:end]))
	}
	return cells
}

func isContinuationLine(line string, colStarts []int) bool {
	if !strings.HasPrefix(line, " ") || strings.TrimSpace(line) == "" || strings.Contains(line, "|") {
		return false
	}
	if len(colStarts) == 0 {
		return true
	}
	cells := sliceColumns(trimTrailingSpace(line), colStarts)
	return len(cells) > 1 && cells[0] == ""
}

// splitTableRow removes one framing pipe on each side and splits the rest
// into trimmed cells.
func splitTableRow(trimmed string) []string {
	trimmed = strings.TrimPrefix(trimmed, "|")
	if strings.HasSuffix(trimmed, "|") && !strings.HasSuffix(trimmed, `\|`) {
		trimmed = strings.TrimSuffix(trimmed, "|")
	}
	parts := splitPipes(trimmed)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitPipes splits on '|' outside code spans; "\|" is a literal pipe.
func splitPipes(line string) []string {
	var parts []string
	var buf []rune
	inCode := false
	backticks := 0
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\\':
			if i+1 < len(runes) && runes[i+1] == '|' {
				buf = append(buf, '|')
				i++
				continue
			}
		case '`':
			run := countRepeat(runes[i:], '`')
			if !inCode {
				inCode = true
				backticks = run
			} else if run == backticks {
				inCode = false
				backticks = 0
			}
			buf = append(buf, runes[i:i+run]...)
			i += run - 1
			continue
		case '|':
			if !inCode {
				parts = append(parts, string(buf))
				buf = buf[:0]
				continue
			}
		}
		buf = append(buf, r)
	}
	parts = append(parts, string(buf))
	return parts
}

func countRepeat(runes []rune, target rune) int {
	n := 0
	for n < len(runes) && runes[n] == target {
		n++
	}
	return n
}
