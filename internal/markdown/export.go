package markdown

import "encoding/json"

// Record is the flat, serialisable form of a block. Only the fields of the
// block's variant are populated.
type Record struct {
	Type        string      `json:"type" yaml:"type"`
	Level       int         `json:"level,omitempty" yaml:"level,omitempty"`
	Run         *RunRecord  `json:"run,omitempty" yaml:"run,omitempty"`
	Items       []RunRecord `json:"items,omitempty" yaml:"items,omitempty"`
	Lines       []RunRecord `json:"lines,omitempty" yaml:"lines,omitempty"`
	Text        string      `json:"text,omitempty" yaml:"text,omitempty"`
	Fenced      bool        `json:"fenced,omitempty" yaml:"fenced,omitempty"`
	Info        string      `json:"info,omitempty" yaml:"info,omitempty"`
	Alt         string      `json:"alt,omitempty" yaml:"alt,omitempty"`
	URL         string      `json:"url,omitempty" yaml:"url,omitempty"`
	Title       *string     `json:"title,omitempty" yaml:"title,omitempty"`
	Raw         string      `json:"raw,omitempty" yaml:"raw,omitempty"`
	Header      []string    `json:"header,omitempty" yaml:"header,omitempty"`
	Rows        [][]string  `json:"rows,omitempty" yaml:"rows,omitempty"`
	ColumnCount int         `json:"column_count,omitempty" yaml:"column_count,omitempty"`
	Align       []string    `json:"align,omitempty" yaml:"align,omitempty"`
}

type RunRecord struct {
	Text  string       `json:"text" yaml:"text"`
	Spans []SpanRecord `json:"spans,omitempty" yaml:"spans,omitempty"`
}

type SpanRecord struct {
	Kind  string `json:"kind" yaml:"kind"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Records converts the document into serialisable records, one per block.
func (d Document) Records() []Record {
	out := make([]Record, 0, len(d.blocks))
	for _, b := range d.blocks {
		out = append(out, RecordOf(b))
	}
	return out
}

// MarshalJSON encodes the document as an array of block records.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Records())
}

// RecordOf converts a single block.
func RecordOf(b Block) Record {
	rec := Record{Type: b.Kind().String()}
	switch v := b.(type) {
	case Paragraph:
		run := recordRun(v.Run)
		rec.Run = &run
	case Header:
		run := recordRun(v.Run)
		rec.Level = v.Level
		rec.Run = &run
	case List:
		rec.Items = recordRuns(v.Items)
	case BlockQuote:
		rec.Lines = recordRuns(v.Lines)
	case LineBlock:
		rec.Lines = recordRuns(v.Lines)
	case CodeBlock:
		rec.Text = v.Text
		rec.Fenced = v.Fenced
		rec.Info = v.Info
	case Image:
		rec.Alt = v.Alt
		rec.URL = v.URL
		if v.HasTitle {
			title := v.Title
			rec.Title = &title
		}
	case Formula:
		rec.Raw = v.Raw
	case Table:
		rec.Header = v.Header
		rec.Rows = v.Rows
		rec.ColumnCount = v.ColumnCount
		for _, a := range v.Align {
			rec.Align = append(rec.Align, a.String())
		}
	}
	return rec
}

func recordRuns(runs []InlineRun) []RunRecord {
	out := make([]RunRecord, len(runs))
	for i, r := range runs {
		out[i] = recordRun(r)
	}
	return out
}

func recordRun(r InlineRun) RunRecord {
	rec := RunRecord{Text: r.Text}
	for _, s := range r.Spans {
		rec.Spans = append(rec.Spans, SpanRecord{Kind: s.Kind.String(), Start: s.Start, End: s.End, URL: s.URL})
	}
	return rec
}
