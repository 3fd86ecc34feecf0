package bcon

import (
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/bcon/internal/engine"
)

// ErrorMarker is written where rendering could not proceed.
const ErrorMarker = "<ERROR HERE>"

// Render returns an indented dump of a document-mode stream. It always
// succeeds: a malformed stream renders up to the first fault, followed by
// ErrorMarker, and nothing after it.
func Render(s Stream) string { return render(s, ModeDocument, DefaultMaxDepth, nil) }

// RenderArray is Render for an array-mode stream.
func RenderArray(s Stream) string { return render(s, ModeArray, DefaultMaxDepth, nil) }

// RenderWith is Render for either mode with conversion options applied.
// Only MaxDepth affects the output.
func RenderWith(s Stream, mode Mode, opts ...Options) string {
	opt := pickOptions(opts)
	return render(s, mode, opt.MaxDepth, nil)
}

func render(s Stream, mode Mode, maxDepth int, stop *Issue) string {
	p := &printer{
		maxDepth: maxDepth,
		stop:     stop,
		track:    eng.NewTracker(eng.EnforceOptions{OnDuplicate: eng.DupIgnore}),
	}
	if _, ok := p.level(s, 0, mode, false, "", 0, 1); ok && stop != nil {
		// the conversion failed after the last entry, e.g. closing the root
		p.b.WriteString(ErrorMarker)
	}
	return p.b.String()
}

// diagnostic renders s for a conversion that failed with is. Decoding
// faults are found by the printer itself; duplicate keys and writer
// rejections are located through the issue's path and position.
func diagnostic(s Stream, mode Mode, maxDepth int, is Issue) string {
	switch is.Code {
	case CodeDuplicateKey, CodeUnsupportedValue:
	default:
		is.Path, is.Pos = "", -1
	}
	return render(s, mode, maxDepth, &is)
}

type printer struct {
	b        strings.Builder
	maxDepth int
	stop     *Issue
	track    *eng.Tracker // paths only
}

// level renders one document or array. It returns the position after the
// level and false once ErrorMarker was written; callers stop on false.
func (p *printer) level(s Stream, pos int, mode Mode, inline bool, path string, indent, depth int) (int, bool) {
	if p.maxDepth > 0 && depth > p.maxDepth {
		return p.fault(pos)
	}
	if mode == ModeArray {
		_ = p.track.EnterArray(path)
		p.b.WriteString("[\n")
	} else {
		_ = p.track.EnterObject(path)
		p.b.WriteString("{\n")
	}
	defer p.track.Leave()
	for i := 0; ; i++ {
		var tok Token
		var entry string
		at := pos
		tok, pos = s.Next(pos)
		if mode == ModeDocument {
			switch tok.Kind {
			case TokenEnd:
				if inline {
					return p.fault(pos)
				}
				return p.close(pos, mode, indent)
			case TokenClose:
				if inline && tok.Mode == ModeDocument {
					return p.close(pos, mode, indent)
				}
				return p.fault(pos)
			case TokenLiteral:
				entry = p.track.Path(tok.String)
				p.pad(indent + 2)
				if p.stopsAt(entry, at) {
					return p.fault(pos)
				}
				p.quote(tok.String)
				p.b.WriteString(" : ")
			default:
				return p.fault(pos)
			}
			at = pos
			tok, pos = s.Next(pos)
			if tok.Kind == TokenEnd || tok.Kind == TokenClose {
				// dangling key
				return p.fault(pos)
			}
		} else {
			entry = p.track.Path(strconv.Itoa(i))
			switch tok.Kind {
			case TokenEnd:
				if inline {
					return p.fault(pos)
				}
				return p.close(pos, mode, indent)
			case TokenClose:
				if inline && tok.Mode == ModeArray {
					return p.close(pos, mode, indent)
				}
				return p.fault(pos)
			case TokenError:
			default:
				p.pad(indent + 2)
			}
		}
		if p.stopsAt(entry, at) {
			return p.fault(pos)
		}

		var ok bool
		pos, ok = p.value(s, pos, tok, entry, indent, depth)
		if !ok {
			return pos, false
		}
		p.b.WriteString(",\n")
	}
}

func (p *printer) value(s Stream, pos int, tok Token, path string, indent, depth int) (int, bool) {
	switch tok.Kind {
	case TokenLiteral:
		p.quote(tok.String)
	case TokenOpen:
		return p.level(s, pos, tok.Mode, true, path, indent+2, depth+1)
	case TokenTyped:
		return pos, p.typed(tok, path, indent, depth)
	default:
		return p.fault(pos)
	}
	return pos, true
}

func (p *printer) typed(tok Token, path string, indent, depth int) bool {
	d, ok := Describe(tok.Tag)
	if !ok {
		p.b.WriteString(ErrorMarker)
		return false
	}
	v, err := d.Extract(tok.Payload)
	if err != nil {
		p.b.WriteString(ErrorMarker)
		return false
	}
	switch v := v.(type) {
	case documentValue:
		_, ok = p.level(v.s, 0, ModeDocument, false, path, indent+2, depth+1)
	case arrayValue:
		_, ok = p.level(v.s, 0, ModeArray, false, path, indent+2, depth+1)
	case codeWithScopeValue:
		if v.scope == nil {
			p.b.WriteString(registry[KindCode].Label)
			return true
		}
		p.b.WriteString(d.Label)
		p.b.WriteByte('(')
		if _, ok = p.level(v.scope, 0, ModeDocument, false, path, indent+2, depth+1); ok {
			p.b.WriteByte(')')
		}
	default:
		p.b.WriteString(d.Label)
	}
	return ok
}

func (p *printer) close(pos int, mode Mode, indent int) (int, bool) {
	p.pad(indent)
	if mode == ModeArray {
		p.b.WriteByte(']')
	} else {
		p.b.WriteByte('}')
	}
	return pos, true
}

// stopsAt reports whether the entry at path, whose key or value starts at
// cell pos, is where the failing conversion stopped.
func (p *printer) stopsAt(path string, pos int) bool {
	return p.stop != nil && p.stop.Pos == pos && p.stop.Path == path
}

func (p *printer) fault(pos int) (int, bool) {
	p.b.WriteString(ErrorMarker)
	return pos, false
}

func (p *printer) pad(n int) {
	p.b.WriteString(strings.Repeat(" ", n))
}

// quote writes s as a JSON string.
func (p *printer) quote(s string) {
	b, err := j.MarshalNoEscape(s)
	if err != nil {
		p.b.WriteString(strconv.Quote(s))
		return
	}
	p.b.Write(b)
}
