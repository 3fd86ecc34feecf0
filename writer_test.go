package bcon_test

import (
	"bytes"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/reoring/bcon"
)

func TestBSONWriter_Nesting(t *testing.T) {
	w := bcon.NewWriter()
	steps := []error{
		w.BeginDocument("a"),
		w.AppendInt32("x", 1),
		w.BeginArray("b"),
		w.AppendString("0", "y"),
		w.EndArray(),
		w.EndDocument(),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	got, err := w.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	arr := doc(bsoncore.AppendStringElement(nil, "0", "y"))
	a := doc(bsoncore.AppendInt32Element(nil, "x", 1), bsoncore.AppendArrayElement(nil, "b", arr))
	if want := doc(bsoncore.AppendDocumentElement(nil, "a", a)); !bytes.Equal(got, want) {
		t.Fatalf("unexpected bytes: %v", got)
	}
	again, _ := w.Document()
	if !bytes.Equal(again, got) {
		t.Fatalf("Document must be repeatable")
	}
	if err := w.AppendNull("late"); !errors.Is(err, bcon.ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
}

func TestBSONWriter_Unbalanced(t *testing.T) {
	w := bcon.NewWriter()
	if err := w.EndDocument(); !errors.Is(err, bcon.ErrUnbalanced) {
		t.Fatalf("closing the root must fail, got %v", err)
	}
	if err := w.BeginArray("a"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := w.EndDocument(); !errors.Is(err, bcon.ErrUnbalanced) {
		t.Fatalf("mismatched end must fail, got %v", err)
	}
	if _, err := w.Document(); !errors.Is(err, bcon.ErrUnbalanced) {
		t.Fatalf("open level must fail finish, got %v", err)
	}
	if _, err := bcon.NewArrayWriter().Document(); !errors.Is(err, bcon.ErrUnbalanced) {
		t.Fatalf("array root finished as document must fail, got %v", err)
	}
}

func TestBSONWriter_Rejects(t *testing.T) {
	w := bcon.NewWriter()
	if err := w.AppendString("a\x00", "v"); !errors.Is(err, bcon.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := w.AppendRegex("r", "a\x00", ""); !errors.Is(err, bcon.ErrInvalidCString) {
		t.Fatalf("expected ErrInvalidCString, got %v", err)
	}
	if err := w.AppendDocument("d", bsoncore.Document{1, 2}); err == nil {
		t.Fatalf("expected invalid document error")
	}
	if err := w.AppendCodeWithScope("c", "f", bsoncore.Document{9}); err == nil {
		t.Fatalf("expected invalid scope error")
	}
	got, err := w.Document()
	if err != nil {
		t.Fatalf("rejected appends must leave the writer usable: %v", err)
	}
	if !bytes.Equal(got, doc()) {
		t.Fatalf("rejected appends must not write bytes, got %v", got)
	}
}
