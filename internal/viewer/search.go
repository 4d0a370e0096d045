package viewer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/mdview/internal/textutil"
)

// colSpan is a half-open range of display columns on one rendered line.
type colSpan struct {
	start, end int
}

type searchHit struct {
	line int
	span colSpan
}

type searchState struct {
	// typing is true while the query is being edited in the status bar.
	typing bool
	input  []rune
	query  string
	hits   []searchHit
	cursor int
}

// smartCaseInsensitive folds case unless the query has an upper-case letter.
func smartCaseInsensitive(query string) bool {
	for _, r := range query {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// matchSpans returns the columns of every non-overlapping occurrence of
// needle in line.
func matchSpans(line, needle string, caseInsensitive bool) []colSpan {
	if needle == "" || line == "" {
		return nil
	}
	if caseInsensitive {
		return matchFolded(line, strings.ToLower(needle))
	}

	var spans []colSpan
	for from := 0; ; {
		idx := strings.Index(line[from:], needle)
		if idx < 0 {
			return spans
		}
		start := from + idx
		end := start + len(needle)
		spans = append(spans, columnSpan(line, start, end))
		from = end
	}
}

func matchFolded(line, needleLower string) []colSpan {
	var spans []colSpan
	for i := 0; i < len(line); {
		if end, ok := matchesAtFolded(line, i, needleLower); ok {
			spans = append(spans, columnSpan(line, i, end))
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(line[i:])
		i += max(size, 1)
	}
	return spans
}

// matchesAtFolded compares rune by rune so folding that changes byte length
// keeps offsets into the original line.
func matchesAtFolded(haystack string, start int, needleLower string) (int, bool) {
	i := start
	for _, nr := range needleLower {
		if i >= len(haystack) {
			return 0, false
		}
		hr, size := utf8.DecodeRuneInString(haystack[i:])
		if unicode.ToLower(hr) != nr {
			return 0, false
		}
		i += size
	}
	return i, true
}

func columnSpan(line string, start, end int) colSpan {
	startCol := textutil.DisplayWidth(line[:start])
	return colSpan{start: startCol, end: startCol + textutil.DisplayWidth(line[start:end])}
}

func (v *Viewer) enterSearch() {
	v.search.typing = true
	v.search.input = []rune(v.search.query)
}

func (v *Viewer) cancelSearch() {
	v.search = searchState{}
}

// handleSearchKey edits the query while typing. Matches update as the
// query changes.
func (v *Viewer) handleSearchKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		v.cancelSearch()
	case tcell.KeyEnter:
		v.search.typing = false
		v.reportSearch()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(v.search.input) == 0 {
			v.cancelSearch()
			break
		}
		v.search.input = v.search.input[:len(v.search.input)-1]
		v.executeSearch(string(v.search.input))
	case tcell.KeyCtrlU:
		v.search.input = nil
		v.executeSearch("")
	case tcell.KeyRune:
		v.search.input = append(v.search.input, ev.Rune())
		v.executeSearch(string(v.search.input))
	default:
		return false
	}
	return true
}

// executeSearch collects matches over the rendered lines and focuses the
// first one at or below the top of the screen.
func (v *Viewer) executeSearch(query string) {
	v.search.query = query
	v.collectHits()
	v.search.cursor = 0
	for i, hit := range v.search.hits {
		if hit.line >= v.top {
			v.search.cursor = i
			break
		}
	}
	v.focusHit()
}

// collectHits recomputes matches for the current layout.
func (v *Viewer) collectHits() {
	v.search.hits = nil
	query := v.search.query
	if query == "" {
		return
	}
	fold := smartCaseInsensitive(query)
	for i, line := range v.lines {
		for _, span := range matchSpans(line.Text(), query, fold) {
			v.search.hits = append(v.search.hits, searchHit{line: i, span: span})
		}
	}
	if v.search.cursor >= len(v.search.hits) {
		v.search.cursor = 0
	}
}

func (v *Viewer) moveSearchCursor(delta int) {
	if v.search.query == "" {
		v.status = "no search"
		return
	}
	if n := len(v.search.hits); n > 0 {
		v.search.cursor = ((v.search.cursor+delta)%n + n) % n
		v.focusHit()
	}
	v.reportSearch()
}

// focusHit scrolls the focused match into the middle of the screen when it
// is not visible.
func (v *Viewer) focusHit() {
	if len(v.search.hits) == 0 {
		return
	}
	line := v.search.hits[v.search.cursor].line
	body := v.bodyHeight()
	if line < v.top || line >= v.top+body {
		v.top = line - body/2
		v.clampTop()
	}
}

func (v *Viewer) reportSearch() {
	switch {
	case v.search.query == "":
		v.status = ""
	case len(v.search.hits) == 0:
		v.status = "pattern not found: " + v.search.query
	default:
		v.status = fmt.Sprintf("[%d/%d] /%s", v.search.cursor+1, len(v.search.hits), v.search.query)
	}
}

// highlightLine restyles matched cells of the screen row that shows line.
func (v *Viewer) highlightLine(line, row, width int) {
	for i, hit := range v.search.hits {
		if hit.line != line {
			continue
		}
		style := v.theme.SearchMatch
		if i == v.search.cursor {
			style = v.theme.SearchFocus
		}
		for x := hit.span.start; x < min(hit.span.end, width); x++ {
			mainc, combc, _, _ := v.screen.GetContent(x, row)
			v.screen.SetContent(x, row, mainc, combc, style)
		}
	}
}
