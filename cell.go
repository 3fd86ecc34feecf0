package bcon

import "fmt"

// CellKind identifies the variant held by a Cell.
type CellKind uint8

const (
	CellTerminator CellKind = iota // End of stream; the zero Cell.
	CellLiteral                    // Key or bare string value.
	CellMarker                     // Next two cells are a tag and a payload.
	CellTag                        // Value kind of an indirect entry.
	CellPayload                    // Opaque payload of an indirect entry.
	CellOpenDocument
	CellCloseDocument
	CellOpenArray
	CellCloseArray
)

var cellKindNames = [...]string{
	CellTerminator:    "terminator",
	CellLiteral:       "literal",
	CellMarker:        "marker",
	CellTag:           "tag",
	CellPayload:       "payload",
	CellOpenDocument:  "open-document",
	CellCloseDocument: "close-document",
	CellOpenArray:     "open-array",
	CellCloseArray:    "close-array",
}

func (k CellKind) String() string {
	if int(k) < len(cellKindNames) {
		return cellKindNames[k]
	}
	return fmt.Sprintf("cell(%d)", uint8(k))
}

// Cell is one slot of a flat stream. The variant is explicit, so a literal
// string can never be mistaken for a marker whatever its content.
type Cell struct {
	kind    CellKind
	str     string
	tag     Kind
	payload any
}

// Kind reports the variant of the cell.
func (c Cell) Kind() CellKind { return c.kind }

// Literal returns the string of a literal cell.
func (c Cell) Literal() (string, bool) { return c.str, c.kind == CellLiteral }

// Tag returns the value kind of a tag cell.
func (c Cell) Tag() (Kind, bool) { return c.tag, c.kind == CellTag }

// Payload returns the payload of a payload cell.
func (c Cell) Payload() (any, bool) { return c.payload, c.kind == CellPayload }

func (c Cell) String() string {
	switch c.kind {
	case CellLiteral:
		return fmt.Sprintf("literal(%q)", c.str)
	case CellTag:
		return "tag(" + c.tag.String() + ")"
	case CellPayload:
		return fmt.Sprintf("payload(%T)", c.payload)
	default:
		return c.kind.String()
	}
}

// Stream is a flat, terminated sequence of cells. Streams are read-only once
// built; every consumer keeps its own cursor.
type Stream []Cell

// Lit returns a literal cell.
func Lit(s string) Cell { return Cell{kind: CellLiteral, str: s} }

// End returns a terminator cell.
func End() Cell { return Cell{} }

// Marker returns the cell that introduces an indirect entry.
func Marker() Cell { return Cell{kind: CellMarker} }

// Tag returns a tag cell for k.
func Tag(k Kind) Cell { return Cell{kind: CellTag, tag: k} }

// Payload returns a payload cell holding v.
func Payload(v any) Cell { return Cell{kind: CellPayload, payload: v} }

// OpenDoc, CloseDoc, OpenArray and CloseArray delimit a nested document or
// array written inline in the enclosing stream.
func OpenDoc() Cell    { return Cell{kind: CellOpenDocument} }
func CloseDoc() Cell   { return Cell{kind: CellCloseDocument} }
func OpenArray() Cell  { return Cell{kind: CellOpenArray} }
func CloseArray() Cell { return Cell{kind: CellCloseArray} }

// New flattens items into a terminated stream. Items may be strings
// (literal cells), single cells, or cell slices such as the ones returned by
// Double or Doc. Any other item type panics, including Stream: nested
// streams go through Doc or Array.
func New(items ...any) Stream {
	s := make(Stream, 0, len(items)+1)
	for _, it := range items {
		switch v := it.(type) {
		case string:
			s = append(s, Lit(v))
		case Cell:
			s = append(s, v)
		case []Cell:
			s = append(s, v...)
		default:
			panic(fmt.Sprintf("bcon: unsupported stream item %T", it))
		}
	}
	return append(s, End())
}
