package yaml

import (
	"bytes"
	"errors"
	"testing"

	"github.com/reoring/bcon"
)

const person = `
- name
- {$string: Ada}
- age
- {$int32: 36}
- tags
- $array: [x, y]
- address
- $document:
    - city
    - London
`

func TestLoad(t *testing.T) {
	s, err := Load([]byte(person))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := bcon.Convert(s)
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, bcon.Render(s))
	}
	want, err := bcon.Convert(bcon.New(
		"name", bcon.String("Ada"),
		"age", bcon.Int32(36),
		"tags", bcon.Array("x", "y"),
		"address", bcon.Doc("city", "London"),
	))
	if err != nil {
		t.Fatalf("convert expected: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("mismatch\n got: %v\nwant: %v", got, want)
	}
}

func TestLoad_NullIsTerminator(t *testing.T) {
	s, err := Load([]byte("- zip\n- null\n- code\n- x\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = bcon.Convert(s)
	var ce *bcon.ConvertError
	if !errors.As(err, &ce) || ce.Code() != bcon.CodeDanglingKey {
		t.Fatalf("expected dangling_key, got %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load([]byte("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := Load([]byte("a: b\n")); err == nil {
		t.Fatalf("expected error for mapping root")
	}
	if _, err := Load([]byte("- [unclosed\n")); err == nil {
		t.Fatalf("expected syntax error")
	}
}
