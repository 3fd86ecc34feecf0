package bcon

// TokenKind enumerates decoder token kinds.
type TokenKind uint8

const (
	TokenEnd     TokenKind = iota // terminator reached
	TokenLiteral                  // plain string (key or value)
	TokenTyped                    // indirect entry: Tag + Payload
	TokenOpen                     // inline document/array opens (Mode)
	TokenClose                    // inline document/array closes (Mode)
	TokenError                    // malformed cells: Code + Message
)

// Token describes the next semantic item of a stream.
type Token struct {
	Kind    TokenKind
	String  string // Stored for literal tokens.
	Tag     Kind
	Payload any
	Mode    Mode   // Stored for open/close tokens.
	Code    string // Stored for error tokens; one of the Code* constants.
	Message string
}

// Next decodes the token at pos and returns it together with the position
// of the following token. It never panics: running off the end of the slice
// or a broken indirect entry yields a TokenError. For an indirect entry the
// cursor always advances by three cells, even when the tag is unknown, so
// callers can keep walking for diagnostics.
func (s Stream) Next(pos int) (Token, int) {
	if pos < 0 || pos >= len(s) {
		return Token{Kind: TokenError, Code: CodeTruncated, Message: "stream ended without terminator"}, pos + 1
	}
	c := s[pos]
	switch c.kind {
	case CellTerminator:
		return Token{Kind: TokenEnd}, pos + 1
	case CellLiteral:
		return Token{Kind: TokenLiteral, String: c.str}, pos + 1
	case CellOpenDocument:
		return Token{Kind: TokenOpen, Mode: ModeDocument}, pos + 1
	case CellCloseDocument:
		return Token{Kind: TokenClose, Mode: ModeDocument}, pos + 1
	case CellOpenArray:
		return Token{Kind: TokenOpen, Mode: ModeArray}, pos + 1
	case CellCloseArray:
		return Token{Kind: TokenClose, Mode: ModeArray}, pos + 1
	case CellMarker:
		return s.indirect(pos)
	default:
		return Token{Kind: TokenError, Code: CodeTruncated, Message: c.kind.String() + " cell without marker"}, pos + 1
	}
}

func (s Stream) indirect(pos int) (Token, int) {
	next := pos + 3
	if pos+1 >= len(s) || s[pos+1].kind != CellTag {
		return Token{Kind: TokenError, Code: CodeTruncated, Message: "marker not followed by a tag cell"}, next
	}
	tag := s[pos+1].tag
	if _, ok := registry[tag]; !ok {
		return Token{Kind: TokenError, Tag: tag, Code: CodeUnrecognizedKind, Message: "unrecognized " + tag.String()}, next
	}
	if pos+2 >= len(s) || s[pos+2].kind != CellPayload {
		return Token{Kind: TokenError, Tag: tag, Code: CodeTruncated, Message: "tag " + tag.String() + " not followed by a payload cell"}, next
	}
	return Token{Kind: TokenTyped, Tag: tag, Payload: s[pos+2].payload}, next
}
