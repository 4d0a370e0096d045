package markdown

import (
	"slices"
	"strconv"
)

// Document is the ordered block sequence produced by Segment. It is never
// mutated after construction; accessors hand out copies.
type Document struct {
	blocks []Block
}

// NewDocument builds a document from blocks. The slice is copied.
func NewDocument(blocks ...Block) Document {
	return Document{blocks: slices.Clone(blocks)}
}

// Len reports the number of blocks.
func (d Document) Len() int { return len(d.blocks) }

// Block returns the block at index i.
func (d Document) Block(i int) Block { return d.blocks[i] }

// Blocks returns a copy of the block sequence.
func (d Document) Blocks() []Block { return slices.Clone(d.blocks) }

// Images returns the image blocks together with their block index.
func (d Document) Images() []IndexedImage {
	var out []IndexedImage
	for i, b := range d.blocks {
		if img, ok := b.(Image); ok {
			out = append(out, IndexedImage{Index: i, Image: img})
		}
	}
	return out
}

// IndexedImage pairs an image block with its position in the document.
type IndexedImage struct {
	Index int
	Image Image
}

// BlockKind identifies a block variant.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeader
	KindUnorderedList
	KindOrderedList
	KindBlockQuote
	KindCodeBlock
	KindHorizontalRule
	KindImage
	KindFormula
	KindLineBlock
	KindTable
	KindEmptyLine
)

var blockKindNames = [...]string{
	KindParagraph:      "paragraph",
	KindHeader:         "header",
	KindUnorderedList:  "list",
	KindOrderedList:    "ordered_list",
	KindBlockQuote:     "quote",
	KindCodeBlock:      "code",
	KindHorizontalRule: "rule",
	KindImage:          "image",
	KindFormula:        "formula",
	KindLineBlock:      "line_block",
	KindTable:          "table",
	KindEmptyLine:      "empty",
}

func (k BlockKind) String() string {
	if k >= 0 && int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "BlockKind(" + strconv.Itoa(int(k)) + ")"
}

// Block is one structural unit of a document.
type Block interface {
	Kind() BlockKind
	isBlock()
}

type Paragraph struct {
	Run InlineRun
}

func (Paragraph) Kind() BlockKind { return KindParagraph }
func (Paragraph) isBlock()        {}

// Header text is never inline-resolved; Run carries no spans.
type Header struct {
	Level int
	Run   InlineRun
}

func (Header) Kind() BlockKind { return KindHeader }
func (Header) isBlock()        {}

// List holds unordered or ordered items. Ordered items are numbered by
// position starting at 1.
type List struct {
	Ordered bool
	Items   []InlineRun
}

func (l List) Kind() BlockKind {
	if l.Ordered {
		return KindOrderedList
	}
	return KindUnorderedList
}

func (List) isBlock() {}

// Marker returns the item label a renderer should show for item i.
func (l List) Marker(i int) string {
	if l.Ordered {
		return strconv.Itoa(i+1) + "."
	}
	return "•"
}

type BlockQuote struct {
	Lines []InlineRun
}

func (BlockQuote) Kind() BlockKind { return KindBlockQuote }
func (BlockQuote) isBlock()        {}

// CodeBlock text is verbatim; fence lines or the 4-space indent are removed.
type CodeBlock struct {
	Text   string
	Fenced bool
	Info   string
}

func (CodeBlock) Kind() BlockKind { return KindCodeBlock }
func (CodeBlock) isBlock()        {}

type HorizontalRule struct{}

func (HorizontalRule) Kind() BlockKind { return KindHorizontalRule }
func (HorizontalRule) isBlock()        {}

// Image is a reference only; an empty URL means there is nothing to fetch.
type Image struct {
	Alt      string
	URL      string
	Title    string
	HasTitle bool
}

func (Image) Kind() BlockKind { return KindImage }
func (Image) isBlock()        {}

type Formula struct {
	Raw string
}

func (Formula) Kind() BlockKind { return KindFormula }
func (Formula) isBlock()        {}

type LineBlock struct {
	Lines []InlineRun
}

func (LineBlock) Kind() BlockKind { return KindLineBlock }
func (LineBlock) isBlock()        {}

// Table rows always hold exactly ColumnCount cells.
type Table struct {
	Header      []string
	Rows        [][]string
	ColumnCount int
	Align       []Alignment
}

func (Table) Kind() BlockKind { return KindTable }
func (Table) isBlock()        {}

// Alignment is the column alignment declared by a pipe table separator.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "default"
	}
}

type EmptyLine struct{}

func (EmptyLine) Kind() BlockKind { return KindEmptyLine }
func (EmptyLine) isBlock()        {}
