package markdown

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRecordOfCoversEveryVariant(t *testing.T) {
	doc := Segment("# T\nSee **x**\n1. one\n> q\n```sh\nls\n```\n---\n![a](u \"t\")\n$y$\n| v\n| a |\n|:-|\n| 1 |\n")
	recs := doc.Records()
	types := make([]string, len(recs))
	for i, r := range recs {
		types[i] = r.Type
	}
	assert.Equal(t, []string{"header", "paragraph", "ordered_list", "quote", "code", "rule", "image", "formula", "line_block", "table"}, types)

	assert.Equal(t, 1, recs[0].Level)
	require.NotNil(t, recs[1].Run)
	assert.Equal(t, []SpanRecord{{Kind: "bold", Start: 4, End: 5}}, recs[1].Run.Spans)
	assert.Equal(t, "sh", recs[4].Info)
	assert.True(t, recs[4].Fenced)
	require.NotNil(t, recs[6].Title)
	assert.Equal(t, "t", *recs[6].Title)
	assert.Equal(t, []string{"left"}, recs[9].Align)
}

func TestDocumentMarshalJSON(t *testing.T) {
	doc := Segment("[go](https://go.dev)\n\n![x](y)")
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"paragraph","run":{"text":"go","spans":[{"kind":"link","start":0,"end":2,"url":"https://go.dev"}]}},
		{"type":"empty"},
		{"type":"image","alt":"x","url":"y"}
	]`, string(data))
}

func TestRecordsMarshalYAML(t *testing.T) {
	doc := Segment("| a | b |\n|---|---|\n| 1 | 2 |")
	data, err := yaml.Marshal(doc.Records())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "table", decoded[0]["type"])
	assert.Equal(t, 2, decoded[0]["column_count"])
	assert.Equal(t, []any{"a", "b"}, decoded[0]["header"])
}

func TestImageWithoutTitleOmitsField(t *testing.T) {
	rec := RecordOf(Image{Alt: "a", URL: "u"})
	assert.Nil(t, rec.Title)
	rec = RecordOf(Image{Alt: "a", URL: "u", HasTitle: true})
	require.NotNil(t, rec.Title)
	assert.Equal(t, "", *rec.Title)
}
