package bcon

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Writer is the serialization collaborator the builder appends to. Every
// method takes the element key; BeginDocument/BeginArray open a nested level
// that the matching End call closes.
type Writer interface {
	AppendString(key, s string) error
	AppendDouble(key string, f float64) error
	AppendInt32(key string, i int32) error
	AppendInt64(key string, i int64) error
	AppendBool(key string, b bool) error
	AppendNull(key string) error
	AppendUndefined(key string) error
	AppendMinKey(key string) error
	AppendMaxKey(key string) error
	AppendBinary(key string, subtype byte, data []byte) error
	AppendSymbol(key, s string) error
	AppendRegex(key, pattern, options string) error
	AppendDBPointer(key, collection string, id primitive.ObjectID) error
	AppendCode(key, code string) error
	AppendCodeWithScope(key, code string, scope bsoncore.Document) error
	AppendTimestamp(key string, t, i uint32) error
	AppendObjectID(key string, id primitive.ObjectID) error
	AppendDateTime(key string, ms int64) error
	BeginDocument(key string) error
	EndDocument() error
	BeginArray(key string) error
	EndArray() error
	AppendDocument(key string, doc bsoncore.Document) error
	AppendArray(key string, arr bsoncore.Array) error
}

var (
	ErrInvalidKey     = errors.New("bcon: key contains NUL byte")
	ErrInvalidCString = errors.New("bcon: regex pattern or options contain NUL byte")
	ErrUnbalanced     = errors.New("bcon: unbalanced begin/end")
	ErrWriterClosed   = errors.New("bcon: writer already finished")
)

type writerFrame struct {
	start int32
	array bool
}

// BSONWriter is a Writer that encodes into a bsoncore byte slice.
type BSONWriter struct {
	buf    []byte
	stack  []writerFrame
	done   bool
	result []byte
}

var _ Writer = (*BSONWriter)(nil)

// NewWriter returns a writer whose root is a document.
func NewWriter() *BSONWriter {
	idx, buf := bsoncore.AppendDocumentStart(nil)
	return &BSONWriter{buf: buf, stack: []writerFrame{{start: idx}}}
}

// NewArrayWriter returns a writer whose root is an array. Keys passed to it
// must be the decimal positions.
func NewArrayWriter() *BSONWriter {
	idx, buf := bsoncore.AppendArrayStart(nil)
	return &BSONWriter{buf: buf, stack: []writerFrame{{start: idx, array: true}}}
}

// Document closes the root level and returns the encoded document.
func (w *BSONWriter) Document() (bsoncore.Document, error) {
	b, err := w.finish(false)
	return bsoncore.Document(b), err
}

// Array closes the root level and returns the encoded array.
func (w *BSONWriter) Array() (bsoncore.Array, error) {
	b, err := w.finish(true)
	return bsoncore.Array(b), err
}

func (w *BSONWriter) finish(array bool) ([]byte, error) {
	if w.done {
		return w.result, nil
	}
	if len(w.stack) != 1 || w.stack[0].array != array {
		return nil, fmt.Errorf("%w: %d open levels", ErrUnbalanced, len(w.stack)-1)
	}
	var err error
	if array {
		w.buf, err = bsoncore.AppendArrayEnd(w.buf, w.stack[0].start)
	} else {
		w.buf, err = bsoncore.AppendDocumentEnd(w.buf, w.stack[0].start)
	}
	if err != nil {
		return nil, err
	}
	w.stack = nil
	w.done = true
	w.result = w.buf
	return w.result, nil
}

func (w *BSONWriter) check(key string) error {
	if w.done {
		return ErrWriterClosed
	}
	if strings.IndexByte(key, 0) >= 0 {
		return ErrInvalidKey
	}
	return nil
}

func (w *BSONWriter) AppendString(key, s string) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendStringElement(w.buf, key, s)
	return nil
}

func (w *BSONWriter) AppendDouble(key string, f float64) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendDoubleElement(w.buf, key, f)
	return nil
}

func (w *BSONWriter) AppendInt32(key string, i int32) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendInt32Element(w.buf, key, i)
	return nil
}

func (w *BSONWriter) AppendInt64(key string, i int64) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendInt64Element(w.buf, key, i)
	return nil
}

func (w *BSONWriter) AppendBool(key string, b bool) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendBooleanElement(w.buf, key, b)
	return nil
}

func (w *BSONWriter) AppendNull(key string) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendNullElement(w.buf, key)
	return nil
}

func (w *BSONWriter) AppendUndefined(key string) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendUndefinedElement(w.buf, key)
	return nil
}

func (w *BSONWriter) AppendMinKey(key string) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendMinKeyElement(w.buf, key)
	return nil
}

func (w *BSONWriter) AppendMaxKey(key string) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendMaxKeyElement(w.buf, key)
	return nil
}

func (w *BSONWriter) AppendBinary(key string, subtype byte, data []byte) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendBinaryElement(w.buf, key, subtype, data)
	return nil
}

func (w *BSONWriter) AppendSymbol(key, s string) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendSymbolElement(w.buf, key, s)
	return nil
}

func (w *BSONWriter) AppendRegex(key, pattern, options string) error {
	if err := w.check(key); err != nil {
		return err
	}
	if strings.IndexByte(pattern, 0) >= 0 || strings.IndexByte(options, 0) >= 0 {
		return ErrInvalidCString
	}
	w.buf = bsoncore.AppendRegexElement(w.buf, key, pattern, options)
	return nil
}

func (w *BSONWriter) AppendDBPointer(key, collection string, id primitive.ObjectID) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendDBPointerElement(w.buf, key, collection, id)
	return nil
}

func (w *BSONWriter) AppendCode(key, code string) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendJavaScriptElement(w.buf, key, code)
	return nil
}

func (w *BSONWriter) AppendCodeWithScope(key, code string, scope bsoncore.Document) error {
	if err := w.check(key); err != nil {
		return err
	}
	if err := scope.Validate(); err != nil {
		return fmt.Errorf("bcon: invalid scope document: %w", err)
	}
	w.buf = bsoncore.AppendCodeWithScopeElement(w.buf, key, code, scope)
	return nil
}

func (w *BSONWriter) AppendTimestamp(key string, t, i uint32) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendTimestampElement(w.buf, key, t, i)
	return nil
}

func (w *BSONWriter) AppendObjectID(key string, id primitive.ObjectID) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendObjectIDElement(w.buf, key, id)
	return nil
}

func (w *BSONWriter) AppendDateTime(key string, ms int64) error {
	if err := w.check(key); err != nil {
		return err
	}
	w.buf = bsoncore.AppendDateTimeElement(w.buf, key, ms)
	return nil
}

func (w *BSONWriter) BeginDocument(key string) error {
	if err := w.check(key); err != nil {
		return err
	}
	var idx int32
	idx, w.buf = bsoncore.AppendDocumentElementStart(w.buf, key)
	w.stack = append(w.stack, writerFrame{start: idx})
	return nil
}

func (w *BSONWriter) EndDocument() error { return w.end(false) }

func (w *BSONWriter) BeginArray(key string) error {
	if err := w.check(key); err != nil {
		return err
	}
	var idx int32
	idx, w.buf = bsoncore.AppendArrayElementStart(w.buf, key)
	w.stack = append(w.stack, writerFrame{start: idx, array: true})
	return nil
}

func (w *BSONWriter) EndArray() error { return w.end(true) }

// end closes the innermost nested level; the root is closed by finish.
func (w *BSONWriter) end(array bool) error {
	if w.done {
		return ErrWriterClosed
	}
	n := len(w.stack)
	if n < 2 || w.stack[n-1].array != array {
		return ErrUnbalanced
	}
	top := w.stack[n-1]
	w.stack = w.stack[:n-1]
	var err error
	if array {
		w.buf, err = bsoncore.AppendArrayEnd(w.buf, top.start)
	} else {
		w.buf, err = bsoncore.AppendDocumentEnd(w.buf, top.start)
	}
	return err
}

func (w *BSONWriter) AppendDocument(key string, doc bsoncore.Document) error {
	if err := w.check(key); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("bcon: invalid prebuilt document: %w", err)
	}
	w.buf = bsoncore.AppendDocumentElement(w.buf, key, doc)
	return nil
}

func (w *BSONWriter) AppendArray(key string, arr bsoncore.Array) error {
	if err := w.check(key); err != nil {
		return err
	}
	if err := arr.Validate(); err != nil {
		return fmt.Errorf("bcon: invalid prebuilt array: %w", err)
	}
	w.buf = bsoncore.AppendArrayElement(w.buf, key, arr)
	return nil
}
