package bcon

import (
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
	"go.uber.org/zap"

	eng "github.com/reoring/bcon/internal/engine"
)

// Convert builds a BSON document from a document-mode stream. On failure it
// returns a *ConvertError whose Diagnostic renders the stream with the
// fault marked; no partial document is returned.
func Convert(s Stream, opts ...Options) (bsoncore.Document, error) {
	w := NewWriter()
	if err := ConvertInto(w, s, ModeDocument, opts...); err != nil {
		return nil, err
	}
	return w.Document()
}

// ConvertArray builds a BSON array from an array-mode stream.
func ConvertArray(s Stream, opts ...Options) (bsoncore.Array, error) {
	w := NewArrayWriter()
	if err := ConvertInto(w, s, ModeArray, opts...); err != nil {
		return nil, err
	}
	return w.Array()
}

// ConvertInto drives the decoder over s and appends every entry to w. The
// root level of w must already be open in the matching mode. Entries
// appended before a failure are not rolled back; callers discard w.
func ConvertInto(w Writer, s Stream, mode Mode, opts ...Options) error {
	opt := pickOptions(opts)
	b := &builder{w: w, opt: opt}
	b.track = eng.NewTracker(eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		IssueSink:   b.warn,
	})
	err := b.root(s, mode)
	if err == nil {
		return nil
	}
	iss, ok := AsIssues(err)
	if !ok {
		iss = Issues{{Code: CodeUnsupportedValue, Path: "/", Message: err.Error(), Cause: err}}
	}
	Logger().Debug("bcon conversion failed",
		zap.String("code", iss[0].Code),
		zap.String("path", iss[0].Path),
		zap.Int("pos", iss[0].Pos),
		zap.String("message", iss[0].Message))
	return &ConvertError{Issues: iss, Diagnostic: diagnostic(s, mode, opt.MaxDepth, iss[0])}
}

type builder struct {
	w     Writer
	opt   Options
	track *eng.Tracker
	pos   int // cell index of the entry being processed, for warnings
}

func (b *builder) root(s Stream, mode Mode) error {
	if err := b.enter(mode, "", 0); err != nil {
		return err
	}
	defer b.track.Leave()
	_, err := b.level(s, 0, mode, false)
	return err
}

// level consumes one document or array starting at pos and returns the
// position after its end. inline levels end at a close cell of the same
// mode; stream levels end at the terminator.
func (b *builder) level(s Stream, pos int, mode Mode, inline bool) (int, error) {
	for i := 0; ; i++ {
		var key string
		if mode == ModeArray {
			key = strconv.Itoa(i)
		} else {
			at := pos
			tok, next := s.Next(pos)
			pos = next
			switch tok.Kind {
			case TokenEnd:
				if inline {
					return pos, b.fail(CodeTruncated, at, b.levelPath(), "stream ended inside inline document", nil)
				}
				return pos, nil
			case TokenClose:
				if inline && tok.Mode == ModeDocument {
					return pos, nil
				}
				return pos, b.fail(CodeUnbalanced, at, b.levelPath(), "unexpected close "+tok.Mode.String(), nil)
			case TokenLiteral:
				key = tok.String
			case TokenError:
				return pos, b.fail(tok.Code, at, b.levelPath(), tok.Message, nil)
			default:
				return pos, b.fail(CodeExpectedKey, at, b.levelPath(), "key must be a plain string", nil)
			}
			b.pos = at
			if err := b.track.Key(key); err != nil {
				return pos, b.fromEngine(err, at)
			}
		}

		at := pos
		path := b.track.Path(key)
		tok, next := s.Next(pos)
		pos = next
		switch tok.Kind {
		case TokenEnd:
			if mode == ModeDocument {
				return pos, b.fail(CodeDanglingKey, at, path, "key '"+key+"' has no value", nil)
			}
			if inline {
				return pos, b.fail(CodeTruncated, at, b.levelPath(), "stream ended inside inline array", nil)
			}
			return pos, nil
		case TokenClose:
			if mode == ModeArray && inline && tok.Mode == ModeArray {
				return pos, nil
			}
			if mode == ModeDocument {
				return pos, b.fail(CodeDanglingKey, at, path, "key '"+key+"' has no value", nil)
			}
			return pos, b.fail(CodeUnbalanced, at, b.levelPath(), "unexpected close "+tok.Mode.String(), nil)
		case TokenLiteral:
			if err := b.w.AppendString(key, tok.String); err != nil {
				return pos, b.fail(CodeUnsupportedValue, at, path, err.Error(), err)
			}
		case TokenOpen:
			n, err := b.inline(s, pos, key, path, tok.Mode, at)
			if err != nil {
				return n, err
			}
			pos = n
		case TokenTyped:
			if err := b.typed(key, path, tok, at); err != nil {
				return pos, err
			}
		case TokenError:
			return pos, b.fail(tok.Code, at, path, tok.Message, nil)
		}
	}
}

func (b *builder) inline(s Stream, pos int, key, path string, mode Mode, at int) (int, error) {
	if err := b.begin(key, mode, path, at); err != nil {
		return pos, err
	}
	n, err := b.level(s, pos, mode, true)
	b.track.Leave()
	if err != nil {
		return n, err
	}
	return n, b.end(mode, path, at)
}

func (b *builder) typed(key, path string, tok Token, at int) error {
	d, ok := Describe(tok.Tag)
	if !ok {
		return b.fail(CodeUnrecognizedKind, at, path, "unrecognized "+tok.Tag.String(), nil)
	}
	v, err := d.Extract(tok.Payload)
	if err != nil {
		return b.fail(CodeInvalidPayload, at, path, err.Error(), err)
	}
	switch v := v.(type) {
	case documentValue:
		return b.nested(v.s, key, path, ModeDocument, at)
	case arrayValue:
		return b.nested(v.s, key, path, ModeArray, at)
	case codeWithScopeValue:
		return b.codeWithScope(v, key, path, at)
	}
	if err := v.appendTo(b.w, key); err != nil {
		return b.fail(CodeUnsupportedValue, at, path, err.Error(), err)
	}
	return nil
}

func (b *builder) nested(s Stream, key, path string, mode Mode, at int) error {
	if err := b.begin(key, mode, path, at); err != nil {
		return err
	}
	_, err := b.level(s, 0, mode, false)
	b.track.Leave()
	if err != nil {
		return err
	}
	return b.end(mode, path, at)
}

// codeWithScope builds the scope into its own document before appending.
func (b *builder) codeWithScope(v codeWithScopeValue, key, path string, at int) error {
	if v.scope == nil {
		if err := b.w.AppendCode(key, v.code); err != nil {
			return b.fail(CodeUnsupportedValue, at, path, err.Error(), err)
		}
		return nil
	}
	if err := b.enter(ModeDocument, path, at); err != nil {
		return err
	}
	sw := NewWriter()
	parent := b.w
	b.w = sw
	_, err := b.level(v.scope, 0, ModeDocument, false)
	b.w = parent
	b.track.Leave()
	if err != nil {
		return err
	}
	scope, err := sw.Document()
	if err != nil {
		return b.fail(CodeUnsupportedValue, at, path, err.Error(), err)
	}
	if err := b.w.AppendCodeWithScope(key, v.code, scope); err != nil {
		return b.fail(CodeUnsupportedValue, at, path, err.Error(), err)
	}
	return nil
}

func (b *builder) begin(key string, mode Mode, path string, at int) error {
	if err := b.enter(mode, path, at); err != nil {
		return err
	}
	var err error
	if mode == ModeArray {
		err = b.w.BeginArray(key)
	} else {
		err = b.w.BeginDocument(key)
	}
	if err != nil {
		b.track.Leave()
		return b.fail(CodeUnsupportedValue, at, path, err.Error(), err)
	}
	return nil
}

func (b *builder) end(mode Mode, path string, at int) error {
	var err error
	if mode == ModeArray {
		err = b.w.EndArray()
	} else {
		err = b.w.EndDocument()
	}
	if err != nil {
		return b.fail(CodeUnsupportedValue, at, path, err.Error(), err)
	}
	return nil
}

func (b *builder) enter(mode Mode, path string, at int) error {
	var err error
	if mode == ModeArray {
		err = b.track.EnterArray(path)
	} else {
		err = b.track.EnterObject(path)
	}
	if err != nil {
		return b.fromEngine(err, at)
	}
	return nil
}

// levelPath is the pointer of the innermost open level.
func (b *builder) levelPath() string { return b.track.LevelPath() }

func (b *builder) fail(code string, pos int, path, msg string, cause error) error {
	return Issues{{Code: code, Path: eng.NormalizePath(path), Pos: pos, Message: msg, Cause: cause}}
}

func (b *builder) fromEngine(err error, pos int) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{{Code: ie.Code, Path: ie.Path, Pos: pos, Message: ie.Message}}
	}
	return b.fail(CodeUnsupportedValue, pos, "/", err.Error(), err)
}

func (b *builder) warn(si eng.SimpleIssue) {
	it := Issue{Code: si.Code, Path: si.Path, Pos: b.pos, Message: si.Message}
	Logger().Warn("bcon duplicate key",
		zap.String("path", it.Path),
		zap.Int("pos", it.Pos))
	if b.opt.IssueSink != nil {
		b.opt.IssueSink(it)
	}
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Ignore:
		return eng.DupIgnore
	default:
		return eng.DupError
	}
}
