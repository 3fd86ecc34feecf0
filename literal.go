package bcon

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Typed returns the three cells of an indirect entry.
func Typed(k Kind, payload any) []Cell {
	return []Cell{Marker(), Tag(k), Payload(payload)}
}

func String(s string) []Cell    { return Typed(KindString, s) }
func Double(f float64) []Cell   { return Typed(KindDouble, f) }
func Int32(i int32) []Cell      { return Typed(KindInt32, i) }
func Int64(i int64) []Cell      { return Typed(KindInt64, i) }
func Bool(b bool) []Cell        { return Typed(KindBool, b) }
func Null() []Cell              { return Typed(KindNull, nil) }
func Undefined() []Cell         { return Typed(KindUndefined, nil) }
func MinKey() []Cell            { return Typed(KindMinKey, nil) }
func MaxKey() []Cell            { return Typed(KindMaxKey, nil) }
func Symbol(s string) []Cell    { return Typed(KindSymbol, s) }
func Code(code string) []Cell   { return Typed(KindCode, code) }

// DateTime returns a UTC datetime entry with millisecond precision.
func DateTime(t time.Time) []Cell { return Typed(KindDateTime, t) }

// BinaryOf returns a binary entry with the given subtype.
func BinaryOf(subtype byte, data []byte) []Cell {
	return Typed(KindBinary, Binary{Subtype: subtype, Data: data})
}

// RegexOf returns a regular expression entry.
func RegexOf(pattern, options string) []Cell {
	return Typed(KindRegex, Regex{Pattern: pattern, Options: options})
}

// DBPointerOf returns a database pointer entry.
func DBPointerOf(collection string, id primitive.ObjectID) []Cell {
	return Typed(KindDBPointer, DBPointer{Collection: collection, ID: id})
}

// TimestampOf returns a timestamp entry.
func TimestampOf(t, i uint32) []Cell {
	return Typed(KindTimestamp, Timestamp{T: t, I: i})
}

// ObjectID returns an object id entry; NewObjectID defers generation to
// conversion time.
func ObjectID(id primitive.ObjectID) []Cell { return Typed(KindObjectID, id) }
func NewObjectID() []Cell                   { return Typed(KindObjectID, nil) }

// Doc returns an entry for a nested document written as its own stream.
func Doc(items ...any) []Cell { return Typed(KindDocument, New(items...)) }

// Array returns an entry for a nested array written as its own stream.
func Array(items ...any) []Cell { return Typed(KindArray, New(items...)) }

// CodeWScope returns a code-with-scope entry; items form the scope document.
func CodeWScope(code string, items ...any) []Cell {
	return Typed(KindCodeWithScope, CodeWithScope{Code: code, Scope: New(items...)})
}

// BSONDocument and BSONArray pass an already built value through.
func BSONDocument(d bsoncore.Document) []Cell { return Typed(KindBSONDocument, d) }
func BSONArray(a bsoncore.Array) []Cell       { return Typed(KindBSONArray, a) }
