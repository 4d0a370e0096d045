package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanOf(t *testing.T, run InlineRun, kind SpanKind) Span {
	t.Helper()
	for _, s := range run.Spans {
		if s.Kind == kind {
			return s
		}
	}
	require.FailNowf(t, "span not found", "no %s span in %#v", kind, run.Spans)
	return Span{}
}

func TestResolveSingleMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		text  string
		kind  SpanKind
		start int
		end   int
	}{
		{"bold", "Это **жирный** текст", "Это жирный текст", SpanBold, 4, 10},
		{"italic", "Это *курсив* текст", "Это курсив текст", SpanItalic, 4, 10},
		{"code", "Это код `val s = \"hello world!\"` внутри текста", "Это код val s = \"hello world!\" внутри текста", SpanCode, 8, 30},
		{"strikethrough", "Это ~~зачёркнутый~~ текст", "Это зачёркнутый текст", SpanStrikethrough, 4, 15},
		{"underline", "Это __подчёркнутый__ текст", "Это подчёркнутый текст", SpanUnderline, 4, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := Resolve(tt.input)
			assert.Equal(t, tt.text, run.Text)
			require.Len(t, run.Spans, 1)
			assert.Equal(t, Span{Kind: tt.kind, Start: tt.start, End: tt.end}, run.Spans[0])
		})
	}
}

func TestResolveBoldItalicSharesRange(t *testing.T) {
	run := Resolve("Это ***жирный и одновременно курсив*** текст")
	assert.Equal(t, "Это жирный и одновременно курсив текст", run.Text)
	require.Len(t, run.Spans, 2)
	bold := spanOf(t, run, SpanBold)
	italic := spanOf(t, run, SpanItalic)
	assert.Equal(t, 4, bold.Start)
	assert.Equal(t, 32, bold.End)
	assert.Equal(t, bold.Start, italic.Start)
	assert.Equal(t, bold.End, italic.End)

	run = Resolve("***X***")
	assert.Equal(t, "X", run.Text)
	assert.Equal(t, []Span{
		{Kind: SpanBold, Start: 0, End: 1},
		{Kind: SpanItalic, Start: 0, End: 1},
	}, run.Spans)
}

func TestResolveLink(t *testing.T) {
	run := Resolve("[A](u)")
	assert.Equal(t, "A", run.Text)
	assert.Equal(t, []Span{{Kind: SpanLink, Start: 0, End: 1, URL: "u"}}, run.Spans)

	run = Resolve("Ссылка на [Google](https://google.com)")
	assert.Equal(t, "Ссылка на Google", run.Text)
	assert.Equal(t, []Span{{Kind: SpanLink, Start: 10, End: 16, URL: "https://google.com"}}, run.Spans)
}

func TestResolveMultipleLinks(t *testing.T) {
	run := Resolve("Ссылки: [A](a.com) и [B](b.com)")
	assert.Equal(t, "Ссылки: A и B", run.Text)
	require.Len(t, run.Spans, 2)
	assert.Equal(t, "a.com", run.Spans[0].URL)
	assert.Equal(t, "b.com", run.Spans[1].URL)
	assert.Equal(t, "A", run.Slice(run.Spans[0]))
	assert.Equal(t, "B", run.Slice(run.Spans[1]))
}

func TestResolveLinkLabelKeepsStyles(t *testing.T) {
	run := Resolve("see [**docs**](http://x.io) now")
	assert.Equal(t, "see docs now", run.Text)
	assert.Equal(t, []Span{
		{Kind: SpanLink, Start: 4, End: 8, URL: "http://x.io"},
		{Kind: SpanBold, Start: 4, End: 8},
	}, run.Spans)
}

func TestResolveNested(t *testing.T) {
	run := Resolve("**жирный и *курсив* внутри**")
	assert.Equal(t, "жирный и курсив внутри", run.Text)
	require.Len(t, run.Spans, 2)
	bold := spanOf(t, run, SpanBold)
	italic := spanOf(t, run, SpanItalic)
	assert.Equal(t, Span{Kind: SpanBold, Start: 0, End: 22}, bold)
	assert.Equal(t, Span{Kind: SpanItalic, Start: 9, End: 15}, italic)

	run = Resolve("**bold and *italic* inside**")
	bold = spanOf(t, run, SpanBold)
	italic = spanOf(t, run, SpanItalic)
	assert.Greater(t, italic.Start, bold.Start)
	assert.Less(t, italic.End, bold.End)
	assert.Equal(t, "italic", run.Slice(italic))
}

func TestResolveMultipleIndependentMarkers(t *testing.T) {
	run := Resolve("**A** and *B* and ~~C~~")
	assert.Equal(t, "A and B and C", run.Text)
	assert.Equal(t, []Span{
		{Kind: SpanBold, Start: 0, End: 1},
		{Kind: SpanItalic, Start: 6, End: 7},
		{Kind: SpanStrikethrough, Start: 12, End: 13},
	}, run.Spans)

	run = Resolve("Это **жирный** и *курсив* и ~~зачёркнутый~~ текст")
	assert.Equal(t, "Это жирный и курсив и зачёркнутый текст", run.Text)
	assert.Len(t, run.Spans, 3)
}

func TestResolveLeavesUnmatchedMarkers(t *testing.T) {
	for _, input := range []string{
		"**no close",
		"Это **не закрытый жирный",
		"a ~~ b",
		"lonely ` tick",
		"[label] (not a link)",
		"[](empty)",
		"____",
	} {
		t.Run(input, func(t *testing.T) {
			run := Resolve(input)
			assert.Equal(t, input, run.Text)
			assert.Empty(t, run.Spans)
		})
	}
}

func TestResolvePlainTextIsIdentity(t *testing.T) {
	for _, input := range []string{"", "Обычный текст без markdown", "a + b = c", "snake case word", "a\xffb", "\xfe\xff"} {
		run := Resolve(input)
		assert.Equal(t, input, run.Text)
		assert.Empty(t, run.Spans)
	}
}

func TestResolveLazyClosesAtFirstCloser(t *testing.T) {
	run := Resolve("**a** b**")
	assert.Equal(t, "a b**", run.Text)
	assert.Equal(t, []Span{{Kind: SpanBold, Start: 0, End: 1}}, run.Spans)
}

func TestResolveLeftmostMatchWins(t *testing.T) {
	// underline has higher priority but bold starts first.
	run := Resolve("**__x__**")
	assert.Equal(t, "x", run.Text)
	assert.Equal(t, []Span{
		{Kind: SpanBold, Start: 0, End: 1},
		{Kind: SpanUnderline, Start: 0, End: 1},
	}, run.Spans)

	run = Resolve("`[a](b)`")
	assert.Equal(t, "a", run.Text)
	assert.Equal(t, SpanCode, run.Spans[0].Kind)
}

func TestResolveItalicIgnoresDoubledStars(t *testing.T) {
	run := Resolve("*a**b*")
	assert.Equal(t, "a**b", run.Text)
	assert.Equal(t, []Span{{Kind: SpanItalic, Start: 0, End: 4}}, run.Spans)
}

func TestResolveUnderlineInnerExcludesUnderscore(t *testing.T) {
	run := Resolve("__a_b__ and __c__")
	assert.Equal(t, "__a_b and c__", run.Text)
	assert.Equal(t, []Span{{Kind: SpanUnderline, Start: 5, End: 10}}, run.Spans)
}

func TestResolveTripleStarFallsBackToBold(t *testing.T) {
	run := Resolve("***a** b*")
	assert.Equal(t, "*a b*", run.Text)
	assert.Equal(t, []Span{{Kind: SpanBold, Start: 0, End: 2}}, run.Spans)
}

func TestResolveAtShiftsOffsets(t *testing.T) {
	run := ResolveAt("x **y**", 10)
	assert.Equal(t, "x y", run.Text)
	assert.Equal(t, []Span{{Kind: SpanBold, Start: 12, End: 13}}, run.Spans)
}

func TestResolveHeaderSourceKeepsHashes(t *testing.T) {
	headers := []struct {
		src   string
		level int
	}{
		{"# Заголовок 1", 1},
		{"## Заголовок 2", 2},
		{"### Заголовок 3", 3},
		{"#### Заголовок 4", 4},
		{"##### Заголовок 5", 5},
		{"###### Заголовок 6", 6},
	}
	for _, h := range headers {
		run := Resolve(h.src)
		assert.Equal(t, h.src, run.Text)
		assert.Empty(t, run.Spans)
	}

	run := Resolve("### Заголовок с **жирным** и *курсивом*")
	assert.Equal(t, "### Заголовок с жирным и курсивом", run.Text)
	require.Len(t, run.Spans, 2)
	spanOf(t, run, SpanBold)
	spanOf(t, run, SpanItalic)
}

func TestSpanOffsetConversions(t *testing.T) {
	run := Resolve("ж 😀 **b**")
	require.Len(t, run.Spans, 1)
	span := run.Spans[0]
	assert.Equal(t, Span{Kind: SpanBold, Start: 4, End: 5}, span)

	start, end := run.ByteRange(span)
	assert.Equal(t, "b", run.Text[start:end])

	u16start, u16end := run.UTF16Range(span)
	assert.Equal(t, 5, u16start)
	assert.Equal(t, 6, u16end)
}

func TestSpansStayInRange(t *testing.T) {
	inputs := []string{
		"***a*** [b](c) ~~d~~ __e__ **f** *g* `h`",
		"**x *y* z** and [*l*](u) `c *d*`",
		"mixed ~~**deep *nest***~~ tail",
	}
	for _, input := range inputs {
		assertRunOffsets(t, Resolve(input))
	}
}

func assertRunOffsets(t *testing.T, run InlineRun) {
	t.Helper()
	n := runeLen(run.Text)
	for i, s := range run.Spans {
		assert.GreaterOrEqual(t, s.Start, 0)
		assert.LessOrEqual(t, s.Start, s.End)
		assert.LessOrEqual(t, s.End, n)
		if i > 0 {
			assert.LessOrEqual(t, run.Spans[i-1].Start, s.Start)
		}
	}
}
