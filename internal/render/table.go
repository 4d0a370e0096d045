package render

import (
	"strings"

	"github.com/kk-code-lab/mdview/internal/markdown"
)

const minColumnWidth = 3

type tableBorders struct {
	topLeft, topSep, topRight          string
	midLeft, midSep, midRight          string
	bottomLeft, bottomSep, bottomRight string
	vertical                           string
	horizontal                         string
}

var boxBorders = tableBorders{
	topLeft: "┌", topSep: "┬", topRight: "┐",
	midLeft: "├", midSep: "┼", midRight: "┤",
	bottomLeft: "└", bottomSep: "┴", bottomRight: "┘",
	vertical:   "│",
	horizontal: "─",
}

// tableCell holds the wrapped lines of one cell.
type tableCell [][]Segment

// renderTable draws t with box borders. maxWidth <= 0 means unlimited;
// otherwise columns shrink, widest first, until the table fits or every
// column is at its minimum.
func renderTable(t markdown.Table, maxWidth int) [][]Segment {
	if t.ColumnCount == 0 {
		return nil
	}
	widths := computeColumnWidths(t)
	widths = clampColumnWidths(widths, maxWidth)

	header := make([]tableCell, t.ColumnCount)
	for c := range header {
		header[c] = wrapCell(cellAt(t.Header, c), widths[c], StyleBold)
	}
	rows := make([][]tableCell, len(t.Rows))
	for r, row := range t.Rows {
		rows[r] = make([]tableCell, t.ColumnCount)
		for c := range rows[r] {
			rows[r][c] = wrapCell(cellAt(row, c), widths[c], StylePlain)
		}
	}

	b := boxBorders
	var out [][]Segment
	out = append(out, borderLine(widths, b.topLeft, b.topSep, b.topRight))
	out = append(out, renderRow(header, widths, t.Align)...)
	out = append(out, borderLine(widths, b.midLeft, b.midSep, b.midRight))
	for _, row := range rows {
		out = append(out, renderRow(row, widths, t.Align)...)
	}
	out = append(out, borderLine(widths, b.bottomLeft, b.bottomSep, b.bottomRight))
	return out
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func cellLines(text string) []string {
	return strings.Split(text, "\n")
}

func computeColumnWidths(t markdown.Table) []int {
	widths := make([]int, t.ColumnCount)
	update := func(cells []string) {
		for c := range widths {
			for _, line := range cellLines(cellAt(cells, c)) {
				widths[c] = max(widths[c], segmentsWidth([]Segment{{Text: sanitize(line)}}))
			}
		}
	}
	update(t.Header)
	for _, row := range t.Rows {
		update(row)
	}
	for c := range widths {
		widths[c] = max(widths[c], 1)
	}
	return widths
}

func clampColumnWidths(widths []int, maxWidth int) []int {
	if maxWidth <= 0 {
		return widths
	}
	total := tableWidth(widths)
	for total > maxWidth {
		idx := widestColumn(widths, minColumnWidth)
		if idx == -1 {
			break
		}
		widths[idx]--
		total--
	}
	return widths
}

func widestColumn(widths []int, minWidth int) int {
	maxIdx := -1
	maxVal := minWidth
	for i, w := range widths {
		if w > maxVal {
			maxVal = w
			maxIdx = i
		}
	}
	return maxIdx
}

// tableWidth counts one padding blank on each side of a column and one
// border between and around columns.
func tableWidth(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	total := 0
	for _, w := range widths {
		total += w
	}
	return total + len(widths)*3 + 1
}

func wrapCell(text string, width int, style Style) tableCell {
	var cell tableCell
	for _, line := range cellLines(text) {
		cell = append(cell, wrap([]Segment{{Text: sanitize(line), Style: style}}, width)...)
	}
	return cell
}

func borderLine(widths []int, left, sep, right string) []Segment {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat(boxBorders.horizontal, w+2)
	}
	return []Segment{{Text: left + strings.Join(parts, sep) + right, Style: StyleBorder}}
}

func renderRow(cells []tableCell, widths []int, align []markdown.Alignment) [][]Segment {
	height := 1
	for _, cell := range cells {
		height = max(height, len(cell))
	}
	lines := make([][]Segment, height)
	for i := range lines {
		line := []Segment{{Text: boxBorders.vertical + " ", Style: StyleBorder}}
		for c, cell := range cells {
			var content []Segment
			if i < len(cell) {
				content = cell[i]
			}
			line = append(line, alignCell(content, widths[c], alignAt(c, align))...)
			if c == len(cells)-1 {
				line = append(line, Segment{Text: " " + boxBorders.vertical, Style: StyleBorder})
			} else {
				line = append(line, Segment{Text: " " + boxBorders.vertical + " ", Style: StyleBorder})
			}
		}
		lines[i] = line
	}
	return lines
}

func alignCell(content []Segment, width int, alignment markdown.Alignment) []Segment {
	space := max(width-segmentsWidth(content), 0)
	left, right := 0, space
	switch alignment {
	case markdown.AlignCenter:
		left = space / 2
		right = space - left
	case markdown.AlignRight:
		left, right = space, 0
	}

	out := make([]Segment, 0, len(content)+2)
	if left > 0 {
		out = append(out, Segment{Text: strings.Repeat(" ", left)})
	}
	out = append(out, content...)
	if right > 0 {
		out = append(out, Segment{Text: strings.Repeat(" ", right)})
	}
	return out
}

func alignAt(idx int, align []markdown.Alignment) markdown.Alignment {
	if idx < len(align) {
		return align[idx]
	}
	return markdown.AlignDefault
}
