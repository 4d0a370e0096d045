package viewer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/mdview/internal/render"
)

// Theme maps rendered styles onto terminal attributes.
type Theme struct {
	Base        tcell.Style
	Heading     tcell.Style
	Quote       tcell.Style
	CodeBlock   tcell.Style
	Rule        tcell.Style
	Formula     tcell.Style
	Placeholder tcell.Style
	Border      tcell.Style
	CodeFg      tcell.Color
	LinkFg      tcell.Color
	StatusBar   tcell.Style
	SearchMatch tcell.Style
	SearchFocus tcell.Style
}

// DefaultTheme keeps the terminal's own colours for body text.
func DefaultTheme() Theme {
	base := tcell.StyleDefault
	return Theme{
		Base:        base,
		Heading:     base.Foreground(tcell.Color33),
		Quote:       base.Foreground(tcell.ColorLightSlateGray).Italic(true),
		CodeBlock:   base.Background(tcell.Color234).Foreground(tcell.Color252),
		Rule:        base.Foreground(tcell.ColorLightSlateGray),
		Formula:     base.Foreground(tcell.Color179),
		Placeholder: base.Foreground(tcell.Color51).Dim(true),
		Border:      base.Foreground(tcell.ColorLightSlateGray),
		CodeFg:      tcell.Color44,
		LinkFg:      tcell.Color33,
		StatusBar:   base.Reverse(true),
		SearchMatch: base.Background(tcell.Color58).Foreground(tcell.ColorWhite),
		SearchFocus: base.Background(tcell.Color214).Foreground(tcell.ColorBlack).Bold(true),
	}
}

func (t Theme) style(s render.Style) tcell.Style {
	st := t.Base
	switch {
	case s.Has(render.StyleCodeBlock):
		st = t.CodeBlock
	case s.Has(render.StyleHeading):
		st = t.Heading
	case s.Has(render.StyleQuote):
		st = t.Quote
	case s.Has(render.StyleRule):
		st = t.Rule
	case s.Has(render.StyleFormula):
		st = t.Formula
	case s.Has(render.StylePlaceholder):
		st = t.Placeholder
	case s.Has(render.StyleBorder):
		st = t.Border
	}

	if s.Has(render.StyleBold) {
		st = st.Bold(true)
	}
	if s.Has(render.StyleItalic) {
		st = st.Italic(true)
	}
	if s.Has(render.StyleStrike) {
		st = st.StrikeThrough(true)
	}
	if s.Has(render.StyleUnderline) {
		st = st.Underline(true)
	}
	if s.Has(render.StyleCode) {
		st = st.Foreground(t.CodeFg)
	}
	if s.Has(render.StyleLink) {
		st = st.Foreground(t.LinkFg).Underline(true)
	}
	return st
}
