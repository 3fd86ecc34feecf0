package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/reoring/bcon"
)

func sameBSON(t *testing.T, got, want bcon.Stream) {
	t.Helper()
	g, err := bcon.Convert(got)
	if err != nil {
		t.Fatalf("convert fixture: %v\n%s", err, bcon.Render(got))
	}
	w, err := bcon.Convert(want)
	if err != nil {
		t.Fatalf("convert expected: %v", err)
	}
	if !bytes.Equal(g, w) {
		t.Fatalf("fixture mismatch\n got: %s\nwant: %s", bcon.Render(got), bcon.Render(want))
	}
}

func TestStream_Kinds(t *testing.T) {
	tree := []any{
		"s", "plain",
		"d", map[string]any{"$double": 1.5},
		"i", map[string]any{"$int32": 7},
		"l", map[string]any{"$int64": json.Number("9007199254740993")},
		"b", map[string]any{"$bool": true},
		"n", map[string]any{"$null": nil},
		"bin", map[string]any{"$binary": map[string]any{"subtype": 4, "base64": "AQI="}},
		"raw", map[string]any{"$binary": map[string]any{"data": "hi"}},
		"re", map[string]any{"$regex": map[string]any{"pattern": "^a", "options": "i"}},
		"ts", map[string]any{"$timestamp": map[string]any{"t": 10, "i": 3}},
		"at", map[string]any{"$datetime": "2024-05-01T12:00:00Z"},
		"ms", map[string]any{"$datetime": 5},
		"doc", map[string]any{"$document": []any{"k", "v"}},
		"arr", map[string]any{"$array": []any{"x", map[string]any{"$int32": 1}}},
		"cws", map[string]any{"$codewscope": map[string]any{"code": "f()", "scope": []any{"x", "y"}}},
		"code", map[string]any{"$codewscope": map[string]any{"code": "g()"}},
	}
	got, err := Stream(tree)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	want := bcon.New(
		"s", "plain",
		"d", bcon.Double(1.5),
		"i", bcon.Int32(7),
		"l", bcon.Int64(9007199254740993),
		"b", bcon.Bool(true),
		"n", bcon.Null(),
		"bin", bcon.BinaryOf(4, []byte{1, 2}),
		"raw", bcon.BinaryOf(0, []byte("hi")),
		"re", bcon.RegexOf("^a", "i"),
		"ts", bcon.TimestampOf(10, 3),
		"at", bcon.DateTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		"ms", bcon.Typed(bcon.KindDateTime, int64(5)),
		"doc", bcon.Doc("k", "v"),
		"arr", bcon.Array("x", bcon.Int32(1)),
		"cws", bcon.CodeWScope("f()", "x", "y"),
		"code", bcon.Code("g()"),
	)
	sameBSON(t, got, want)
}

func TestStream_Brackets(t *testing.T) {
	got, err := Stream([]any{
		"a", map[string]any{"$open": "document"}, "b", "c", map[string]any{"$close": "document"},
		"l", map[string]any{"$open": "array"}, "x", map[string]any{"$close": "array"},
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	want := bcon.New("a", bcon.OpenDoc(), "b", "c", bcon.CloseDoc(), "l", bcon.OpenArray(), "x", bcon.CloseArray())
	if len(got) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Kind() != want[i].Kind() {
			t.Fatalf("cell %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestStream_RawTagAndTerminator(t *testing.T) {
	got, err := Stream([]any{"a", map[string]any{"$tag": 99}, nil, "ignored"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 cells, got %d", len(got))
	}
	if k, ok := got[2].Tag(); !ok || k != bcon.Kind(99) {
		t.Fatalf("expected raw tag 99, got %s", got[2])
	}
	if got[4].Kind() != bcon.CellTerminator || got[6].Kind() != bcon.CellTerminator {
		t.Fatalf("expected explicit and final terminators")
	}
	_, cerr := bcon.Convert(got)
	var ce *bcon.ConvertError
	if !errors.As(cerr, &ce) || ce.Code() != bcon.CodeUnrecognizedKind {
		t.Fatalf("expected unrecognized_kind, got %v", cerr)
	}
}

func TestStream_YAMLMapsAreNormalized(t *testing.T) {
	got, err := Stream([]any{"k", map[any]any{"$int32": 3}})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	sameBSON(t, got, bcon.New("k", bcon.Int32(3)))
}

func TestStream_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   any
		path string
	}{
		{"number element", []any{"a", 1}, "/1"},
		{"two keys", []any{map[string]any{"$int32": 1, "$int64": 2}}, "/0"},
		{"no dollar", []any{map[string]any{"int32": 1}}, "/0"},
		{"unknown kind", []any{map[string]any{"$decimal": "1"}}, "/0"},
		{"int32 overflow", []any{"a", map[string]any{"$int32": int64(1) << 40}}, "/1"},
		{"bad tag", []any{map[string]any{"$tag": 300}}, "/0"},
		{"bad bracket", []any{map[string]any{"$open": "set"}}, "/0"},
		{"bad oid", []any{"a", map[string]any{"$oid": "xyz"}}, "/1"},
		{"nested", []any{"a", map[string]any{"$document": []any{"k", 2}}}, "/1/1"},
		{"bad base64", []any{"a", map[string]any{"$binary": map[string]any{"base64": "!!"}}}, "/1"},
		{"regex pattern not string", []any{"a", map[string]any{"$regex": map[string]any{"pattern": 123}}}, "/1"},
		{"regex options not string", []any{"a", map[string]any{"$regex": map[string]any{"pattern": "^a", "options": true}}}, "/1"},
		{"dbpointer collection not string", []any{"a", map[string]any{"$dbpointer": map[string]any{"collection": 5, "id": "5f1d8a3b9c2e4a0011223344"}}}, "/1"},
		{"dbpointer id not string", []any{"a", map[string]any{"$dbpointer": map[string]any{"collection": "c", "id": 7}}}, "/1"},
		{"codewscope code not string", []any{"a", map[string]any{"$codewscope": map[string]any{"code": []any{}}}}, "/1"},
		{"binary base64 not string", []any{"a", map[string]any{"$binary": map[string]any{"base64": 7}}}, "/1"},
		{"binary data not string", []any{"a", map[string]any{"$binary": map[string]any{"data": []any{1}}}}, "/1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Stream(tc.in)
			var fe *Error
			if !errors.As(err, &fe) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if fe.Path != tc.path {
				t.Fatalf("expected path %s, got %s (%v)", tc.path, fe.Path, err)
			}
		})
	}
	if _, err := Stream(map[string]any{}); !errors.Is(err, ErrNotSequence) {
		t.Fatalf("expected ErrNotSequence, got %v", err)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int(3), 3, true},
		{uint64(4), 4, true},
		{float64(5), 5, true},
		{float64(5.5), 0, false},
		{json.Number("6"), 6, true},
		{"7", 7, true},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, err := toInt64(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("toInt64(%v) = %d, %v", tc.in, got, err)
		}
	}
}

func TestStream_StringFields(t *testing.T) {
	_, err := Stream([]any{"a", map[string]any{"$regex": map[string]any{"pattern": 123}}})
	if err == nil || !strings.Contains(err.Error(), "pattern: want string, got int") {
		t.Fatalf("expected pattern type error, got %v", err)
	}
	s, err := Stream([]any{"a", map[string]any{"$regex": map[string]any{"pattern": "^a", "options": nil}}})
	if err != nil {
		t.Fatalf("null options should be accepted: %v", err)
	}
	if _, err := bcon.Convert(s); err != nil {
		t.Fatalf("convert: %v", err)
	}
}
