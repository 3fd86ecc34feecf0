// Package fixture turns a decoded fixture tree into a cell stream.
//
// A fixture is a sequence whose elements are strings (literal cells), nulls
// (terminator cells) or single-key mappings:
//
//	- $<name>: arg          typed entry; <name> is a registry name
//	- $tag: n               raw entry with tag n and no payload
//	- $open: document|array inline open bracket
//	- $close: document|array inline close bracket
//
// The loaders in source/yaml and source/json decode a file into a generic
// tree and hand it to Stream.
package fixture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reoring/bcon"
)

// ErrNotSequence is returned when a fixture root is not a sequence.
var ErrNotSequence = errors.New("fixture: root must be a sequence")

// Error locates a fixture fault by element index.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return "fixture " + e.Path + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Stream converts v into a stream and appends the final terminator.
func Stream(v any) (bcon.Stream, error) { return stream(Normalize(v), "") }

func stream(v any, path string) (bcon.Stream, error) {
	seq, ok := v.([]any)
	if !ok {
		if path == "" {
			return nil, ErrNotSequence
		}
		return nil, &Error{Path: path, Err: fmt.Errorf("expected sequence, got %T", v)}
	}
	out := make(bcon.Stream, 0, len(seq)+1)
	for i, el := range seq {
		p := path + "/" + strconv.Itoa(i)
		cells, err := element(el, p)
		if err != nil {
			return nil, err
		}
		out = append(out, cells...)
	}
	return append(out, bcon.End()), nil
}

func element(el any, path string) ([]bcon.Cell, error) {
	switch t := el.(type) {
	case nil:
		return []bcon.Cell{bcon.End()}, nil
	case string:
		return []bcon.Cell{bcon.Lit(t)}, nil
	case map[string]any:
		if len(t) != 1 {
			return nil, &Error{Path: path, Err: fmt.Errorf("mapping must have exactly one key, got %d", len(t))}
		}
		for k, arg := range t {
			return directive(k, arg, path)
		}
	}
	return nil, &Error{Path: path, Err: fmt.Errorf("unsupported element %T", el)}
}

func directive(key string, arg any, path string) ([]bcon.Cell, error) {
	name, ok := strings.CutPrefix(key, "$")
	if !ok {
		return nil, &Error{Path: path, Err: fmt.Errorf("directive %q must start with '$'", key)}
	}
	switch name {
	case "tag":
		n, err := toInt64(arg)
		if err != nil || n < 0 || n > math.MaxUint8 {
			return nil, &Error{Path: path, Err: fmt.Errorf("$tag wants an integer in [0,255], got %v", arg)}
		}
		return bcon.Typed(bcon.Kind(n), nil), nil
	case "open", "close":
		mode, _ := arg.(string)
		switch {
		case mode == "document" && name == "open":
			return []bcon.Cell{bcon.OpenDoc()}, nil
		case mode == "document":
			return []bcon.Cell{bcon.CloseDoc()}, nil
		case mode == "array" && name == "open":
			return []bcon.Cell{bcon.OpenArray()}, nil
		case mode == "array":
			return []bcon.Cell{bcon.CloseArray()}, nil
		}
		return nil, &Error{Path: path, Err: fmt.Errorf("$%s wants document or array, got %v", name, arg)}
	}
	k, ok := bcon.KindByName(name)
	if !ok {
		return nil, &Error{Path: path, Err: fmt.Errorf("unknown kind %q", name)}
	}
	payload, err := payloadFor(k, arg, path)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &Error{Path: path, Err: fmt.Errorf("$%s: %w", name, err)}
	}
	return bcon.Typed(k, payload), nil
}

func payloadFor(k bcon.Kind, arg any, path string) (any, error) {
	switch k {
	case bcon.KindString, bcon.KindSymbol, bcon.KindCode:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", arg)
		}
		return s, nil
	case bcon.KindDouble:
		return toFloat64(arg)
	case bcon.KindInt32:
		n, err := toInt64(arg)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%d overflows int32", n)
		}
		return int32(n), nil
	case bcon.KindInt64:
		return toInt64(arg)
	case bcon.KindBool:
		b, ok := arg.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", arg)
		}
		return b, nil
	case bcon.KindNull, bcon.KindUndefined, bcon.KindMinKey, bcon.KindMaxKey:
		return nil, nil
	case bcon.KindBinary:
		return binary(arg)
	case bcon.KindRegex:
		m, err := fields(arg)
		if err != nil {
			return nil, err
		}
		pattern, err := stringField(m, "pattern")
		if err != nil {
			return nil, err
		}
		options, err := stringField(m, "options")
		if err != nil {
			return nil, err
		}
		return bcon.Regex{Pattern: pattern, Options: options}, nil
	case bcon.KindDBPointer:
		m, err := fields(arg)
		if err != nil {
			return nil, err
		}
		coll, err := stringField(m, "collection")
		if err != nil {
			return nil, err
		}
		hex, err := stringField(m, "id")
		if err != nil {
			return nil, err
		}
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, err
		}
		return bcon.DBPointer{Collection: coll, ID: id}, nil
	case bcon.KindCodeWithScope:
		m, err := fields(arg)
		if err != nil {
			return nil, err
		}
		code, err := stringField(m, "code")
		if err != nil {
			return nil, err
		}
		cws := bcon.CodeWithScope{Code: code}
		if sc, ok := m["scope"]; ok && sc != nil {
			if cws.Scope, err = stream(sc, path+"/scope"); err != nil {
				return nil, err
			}
		}
		return cws, nil
	case bcon.KindTimestamp:
		m, err := fields(arg)
		if err != nil {
			return nil, err
		}
		t, err := toUint32(m["t"])
		if err != nil {
			return nil, err
		}
		i, err := toUint32(m["i"])
		if err != nil {
			return nil, err
		}
		return bcon.Timestamp{T: t, I: i}, nil
	case bcon.KindObjectID:
		if arg == nil {
			return nil, nil
		}
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("want hex string or null, got %T", arg)
		}
		return primitive.ObjectIDFromHex(s)
	case bcon.KindDateTime:
		return dateTime(arg)
	case bcon.KindDocument, bcon.KindArray:
		return stream(arg, path)
	case bcon.KindBSONDocument:
		s, err := stream(arg, path)
		if err != nil {
			return nil, err
		}
		return bcon.Convert(s)
	case bcon.KindBSONArray:
		s, err := stream(arg, path)
		if err != nil {
			return nil, err
		}
		return bcon.ConvertArray(s)
	}
	return nil, fmt.Errorf("kind %s has no fixture form", k)
}

func binary(arg any) (bcon.Binary, error) {
	m, err := fields(arg)
	if err != nil {
		return bcon.Binary{}, err
	}
	var sub int64
	if v, ok := m["subtype"]; ok {
		if sub, err = toInt64(v); err != nil {
			return bcon.Binary{}, err
		}
		if sub < 0 || sub > math.MaxUint8 {
			return bcon.Binary{}, fmt.Errorf("subtype %d out of range", sub)
		}
	}
	out := bcon.Binary{Subtype: byte(sub)}
	switch {
	case m["base64"] != nil:
		s, err := stringField(m, "base64")
		if err != nil {
			return bcon.Binary{}, err
		}
		if out.Data, err = base64.StdEncoding.DecodeString(s); err != nil {
			return bcon.Binary{}, err
		}
	case m["data"] != nil:
		s, err := stringField(m, "data")
		if err != nil {
			return bcon.Binary{}, err
		}
		out.Data = []byte(s)
	default:
		out.Data = []byte{}
	}
	return out, nil
}

// stringField returns m[name]; a missing or null field is empty.
func stringField(m map[string]any, name string) (string, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: want string, got %T", name, v)
	}
	return s, nil
}

func dateTime(arg any) (any, error) {
	switch t := arg.(type) {
	case time.Time:
		return t, nil
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, err
		}
		return ts, nil
	}
	return toInt64(arg)
}

func fields(arg any) (map[string]any, error) {
	m, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("want mapping, got %T", arg)
	}
	return m, nil
}
