package bcon

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Binary is the payload of a KindBinary entry.
type Binary struct {
	Subtype byte
	Data    []byte
}

// Regex is the payload of a KindRegex entry.
type Regex struct {
	Pattern string
	Options string
}

// DBPointer is the payload of a KindDBPointer entry.
type DBPointer struct {
	Collection string
	ID         primitive.ObjectID
}

// Timestamp is the payload of a KindTimestamp entry.
type Timestamp struct {
	T uint32 // counter (seconds)
	I uint32 // increment
}

// CodeWithScope is the payload of a KindCodeWithScope entry. A nil Scope
// produces plain JavaScript code.
type CodeWithScope struct {
	Code  string
	Scope Stream
}

// Value is a payload resolved by the Type Registry. Scalar and compound
// values append themselves to a Writer; nested documents, arrays and
// code-with-scope are expanded by the builder.
type Value interface {
	Kind() Kind
	appendTo(w Writer, key string) error
}

type (
	stringValue    string
	doubleValue    float64
	int32Value     int32
	int64Value     int64
	boolValue      bool
	nullValue      struct{}
	undefinedValue struct{}
	minKeyValue    struct{}
	maxKeyValue    struct{}
	binaryValue    Binary
	symbolValue    string
	regexValue     Regex
	dbPointerValue DBPointer
	codeValue      string
	timestampValue Timestamp
	objectIDValue  primitive.ObjectID
	dateTimeValue  int64
	rawDocValue    bsoncore.Document
	rawArrayValue  bsoncore.Array
)

func (stringValue) Kind() Kind    { return KindString }
func (doubleValue) Kind() Kind    { return KindDouble }
func (int32Value) Kind() Kind     { return KindInt32 }
func (int64Value) Kind() Kind     { return KindInt64 }
func (boolValue) Kind() Kind      { return KindBool }
func (nullValue) Kind() Kind      { return KindNull }
func (undefinedValue) Kind() Kind { return KindUndefined }
func (minKeyValue) Kind() Kind    { return KindMinKey }
func (maxKeyValue) Kind() Kind    { return KindMaxKey }
func (binaryValue) Kind() Kind    { return KindBinary }
func (symbolValue) Kind() Kind    { return KindSymbol }
func (regexValue) Kind() Kind     { return KindRegex }
func (dbPointerValue) Kind() Kind { return KindDBPointer }
func (codeValue) Kind() Kind      { return KindCode }
func (timestampValue) Kind() Kind { return KindTimestamp }
func (objectIDValue) Kind() Kind  { return KindObjectID }
func (dateTimeValue) Kind() Kind  { return KindDateTime }
func (rawDocValue) Kind() Kind    { return KindBSONDocument }
func (rawArrayValue) Kind() Kind  { return KindBSONArray }

func (v stringValue) appendTo(w Writer, key string) error { return w.AppendString(key, string(v)) }
func (v doubleValue) appendTo(w Writer, key string) error { return w.AppendDouble(key, float64(v)) }
func (v int32Value) appendTo(w Writer, key string) error  { return w.AppendInt32(key, int32(v)) }
func (v int64Value) appendTo(w Writer, key string) error  { return w.AppendInt64(key, int64(v)) }
func (v boolValue) appendTo(w Writer, key string) error   { return w.AppendBool(key, bool(v)) }
func (nullValue) appendTo(w Writer, key string) error     { return w.AppendNull(key) }
func (undefinedValue) appendTo(w Writer, key string) error {
	return w.AppendUndefined(key)
}
func (minKeyValue) appendTo(w Writer, key string) error { return w.AppendMinKey(key) }
func (maxKeyValue) appendTo(w Writer, key string) error { return w.AppendMaxKey(key) }
func (v binaryValue) appendTo(w Writer, key string) error {
	return w.AppendBinary(key, v.Subtype, v.Data)
}
func (v symbolValue) appendTo(w Writer, key string) error { return w.AppendSymbol(key, string(v)) }
func (v regexValue) appendTo(w Writer, key string) error {
	return w.AppendRegex(key, v.Pattern, v.Options)
}
func (v dbPointerValue) appendTo(w Writer, key string) error {
	return w.AppendDBPointer(key, v.Collection, v.ID)
}
func (v codeValue) appendTo(w Writer, key string) error { return w.AppendCode(key, string(v)) }
func (v timestampValue) appendTo(w Writer, key string) error {
	return w.AppendTimestamp(key, v.T, v.I)
}
func (v objectIDValue) appendTo(w Writer, key string) error {
	return w.AppendObjectID(key, primitive.ObjectID(v))
}
func (v dateTimeValue) appendTo(w Writer, key string) error { return w.AppendDateTime(key, int64(v)) }
func (v rawDocValue) appendTo(w Writer, key string) error {
	return w.AppendDocument(key, bsoncore.Document(v))
}
func (v rawArrayValue) appendTo(w Writer, key string) error {
	return w.AppendArray(key, bsoncore.Array(v))
}

// Nested values own no cells: they reference a separately rooted stream.
type (
	documentValue      struct{ s Stream }
	arrayValue         struct{ s Stream }
	codeWithScopeValue struct {
		code  string
		scope Stream
	}
)

func (documentValue) Kind() Kind      { return KindDocument }
func (arrayValue) Kind() Kind         { return KindArray }
func (codeWithScopeValue) Kind() Kind { return KindCodeWithScope }

// Nested values are never appended directly; the builder expands them.
func (documentValue) appendTo(Writer, string) error      { return errNested }
func (arrayValue) appendTo(Writer, string) error         { return errNested }
func (codeWithScopeValue) appendTo(Writer, string) error { return errNested }
