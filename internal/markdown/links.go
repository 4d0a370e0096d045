package markdown

// Link is a resolved link span together with the block it came from.
type Link struct {
	Block int
	Text  string
	URL   string
}

// Links lists every link span of the document's paragraphs in order.
func (d Document) Links() []Link {
	var out []Link
	for i, b := range d.blocks {
		p, ok := b.(Paragraph)
		if !ok {
			continue
		}
		for _, s := range p.Run.Spans {
			if s.Kind == SpanLink {
				out = append(out, Link{Block: i, Text: p.Run.Slice(s), URL: s.URL})
			}
		}
	}
	return out
}
