package bcon

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Kind is the value-kind tag carried by a tag cell.
type Kind uint8

// The zero Kind is never registered, so an uninitialized tag is rejected.
const (
	KindString Kind = iota + 1
	KindDouble
	KindInt32
	KindInt64
	KindBool
	KindNull
	KindUndefined
	KindMinKey
	KindMaxKey
	KindBinary
	KindSymbol
	KindRegex
	KindDBPointer
	KindCode
	KindCodeWithScope
	KindTimestamp
	KindObjectID
	KindDateTime
	KindDocument
	KindArray
	KindBSONDocument
	KindBSONArray
)

func (k Kind) String() string {
	if d, ok := Describe(k); ok {
		return d.Name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Descriptor is the registry entry for one value kind.
type Descriptor struct {
	Kind Kind
	// Name is the lower-case identifier used by fixtures and the CLI.
	Name string
	// Label is the diagnostic text the printer emits for the kind.
	Label string
	// PayloadCells is the number of cells after the tag cell.
	PayloadCells int
	// Extract resolves a payload into a typed Value.
	Extract func(payload any) (Value, error)
}

var (
	errNested     = errors.New("nested value must be expanded by the builder")
	errNilPayload = errors.New("nil payload")
)

func shapeError(payload any, k Kind) error {
	return fmt.Errorf("payload %T does not fit kind %s", payload, k)
}

var registry = map[Kind]Descriptor{
	KindString: {Name: "string", Label: "STRING", Extract: func(p any) (Value, error) {
		s, err := extractString(p, KindString)
		return stringValue(s), err
	}},
	KindDouble: {Name: "double", Label: "DOUBLE", Extract: extractDouble},
	KindInt32:  {Name: "int32", Label: "INT32", Extract: extractInt32},
	KindInt64:  {Name: "int64", Label: "INT64", Extract: extractInt64},
	KindBool:   {Name: "bool", Label: "BOOL", Extract: extractBool},
	KindNull: {Name: "null", Label: "NULL", Extract: func(any) (Value, error) {
		return nullValue{}, nil
	}},
	KindUndefined: {Name: "undefined", Label: "UNDEFINED", Extract: func(any) (Value, error) {
		return undefinedValue{}, nil
	}},
	KindMinKey: {Name: "minkey", Label: "MINKEY", Extract: func(any) (Value, error) {
		return minKeyValue{}, nil
	}},
	KindMaxKey: {Name: "maxkey", Label: "MAXKEY", Extract: func(any) (Value, error) {
		return maxKeyValue{}, nil
	}},
	KindBinary: {Name: "binary", Label: "BINARY", Extract: extractBinary},
	KindSymbol: {Name: "symbol", Label: "SYMBOL", Extract: func(p any) (Value, error) {
		s, err := extractString(p, KindSymbol)
		return symbolValue(s), err
	}},
	KindRegex:     {Name: "regex", Label: "REGEX", Extract: extractRegex},
	KindDBPointer: {Name: "dbpointer", Label: "DBPOINTER", Extract: extractDBPointer},
	KindCode: {Name: "code", Label: "CODE", Extract: func(p any) (Value, error) {
		s, err := extractString(p, KindCode)
		return codeValue(s), err
	}},
	KindCodeWithScope: {Name: "codewscope", Label: "CODEWSCOPE", Extract: extractCodeWithScope},
	KindTimestamp:     {Name: "timestamp", Label: "TIMESTAMP", Extract: extractTimestamp},
	KindObjectID:      {Name: "oid", Label: "OID", Extract: extractObjectID},
	KindDateTime:      {Name: "datetime", Label: "DATE_TIME", Extract: extractDateTime},
	KindDocument: {Name: "document", Label: "BCON_DOCUMENT", Extract: func(p any) (Value, error) {
		s, err := extractStream(p, KindDocument)
		return documentValue{s: s}, err
	}},
	KindArray: {Name: "array", Label: "BCON_ARRAY", Extract: func(p any) (Value, error) {
		s, err := extractStream(p, KindArray)
		return arrayValue{s: s}, err
	}},
	KindBSONDocument: {Name: "bson_document", Label: "BSON_DOCUMENT", Extract: extractRawDocument},
	KindBSONArray:    {Name: "bson_array", Label: "BSON_ARRAY", Extract: extractRawArray},
}

var registryByName = func() map[string]Kind {
	m := make(map[string]Kind, len(registry))
	for k, d := range registry {
		m[d.Name] = k
	}
	return m
}()

// Describe returns the registry entry for k.
func Describe(k Kind) (Descriptor, bool) {
	d, ok := registry[k]
	if !ok {
		return Descriptor{}, false
	}
	d.Kind = k
	d.PayloadCells = 1
	return d, true
}

// KindByName resolves a registry Name such as "double" or "codewscope".
func KindByName(name string) (Kind, bool) {
	k, ok := registryByName[name]
	return k, ok
}

// Kinds returns every registered kind in tag order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := KindString; k <= KindBSONArray; k++ {
		if _, ok := registry[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// ---- extractors ----

func extractString(p any, k Kind) (string, error) {
	switch v := p.(type) {
	case string:
		return v, nil
	case *string:
		if v == nil {
			return "", errNilPayload
		}
		return *v, nil
	}
	return "", shapeError(p, k)
}

func extractDouble(p any) (Value, error) {
	switch v := p.(type) {
	case float64:
		return doubleValue(v), nil
	case float32:
		return doubleValue(v), nil
	case *float64:
		if v == nil {
			return nil, errNilPayload
		}
		return doubleValue(*v), nil
	}
	return nil, shapeError(p, KindDouble)
}

func extractInt32(p any) (Value, error) {
	switch v := p.(type) {
	case int32:
		return int32Value(v), nil
	case *int32:
		if v == nil {
			return nil, errNilPayload
		}
		return int32Value(*v), nil
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("int %d overflows int32", v)
		}
		return int32Value(v), nil
	}
	return nil, shapeError(p, KindInt32)
}

func extractInt64(p any) (Value, error) {
	switch v := p.(type) {
	case int64:
		return int64Value(v), nil
	case *int64:
		if v == nil {
			return nil, errNilPayload
		}
		return int64Value(*v), nil
	case int:
		return int64Value(v), nil
	}
	return nil, shapeError(p, KindInt64)
}

func extractBool(p any) (Value, error) {
	switch v := p.(type) {
	case bool:
		return boolValue(v), nil
	case *bool:
		if v == nil {
			return nil, errNilPayload
		}
		return boolValue(*v), nil
	}
	return nil, shapeError(p, KindBool)
}

func extractBinary(p any) (Value, error) {
	switch v := p.(type) {
	case Binary:
		return binaryValue(v), nil
	case *Binary:
		if v == nil {
			return nil, errNilPayload
		}
		return binaryValue(*v), nil
	}
	return nil, shapeError(p, KindBinary)
}

func extractRegex(p any) (Value, error) {
	switch v := p.(type) {
	case Regex:
		return regexValue(v), nil
	case *Regex:
		if v == nil {
			return nil, errNilPayload
		}
		return regexValue(*v), nil
	}
	return nil, shapeError(p, KindRegex)
}

func extractDBPointer(p any) (Value, error) {
	switch v := p.(type) {
	case DBPointer:
		return dbPointerValue(v), nil
	case *DBPointer:
		if v == nil {
			return nil, errNilPayload
		}
		return dbPointerValue(*v), nil
	}
	return nil, shapeError(p, KindDBPointer)
}

func extractCodeWithScope(p any) (Value, error) {
	switch v := p.(type) {
	case CodeWithScope:
		return codeWithScopeValue{code: v.Code, scope: v.Scope}, nil
	case *CodeWithScope:
		if v == nil {
			return nil, errNilPayload
		}
		return codeWithScopeValue{code: v.Code, scope: v.Scope}, nil
	}
	return nil, shapeError(p, KindCodeWithScope)
}

func extractTimestamp(p any) (Value, error) {
	switch v := p.(type) {
	case Timestamp:
		return timestampValue(v), nil
	case *Timestamp:
		if v == nil {
			return nil, errNilPayload
		}
		return timestampValue(*v), nil
	}
	return nil, shapeError(p, KindTimestamp)
}

// extractObjectID generates a fresh id for a nil payload.
func extractObjectID(p any) (Value, error) {
	switch v := p.(type) {
	case nil:
		return objectIDValue(primitive.NewObjectID()), nil
	case primitive.ObjectID:
		return objectIDValue(v), nil
	case *primitive.ObjectID:
		if v == nil {
			return objectIDValue(primitive.NewObjectID()), nil
		}
		return objectIDValue(*v), nil
	case string:
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, err
		}
		return objectIDValue(id), nil
	}
	return nil, shapeError(p, KindObjectID)
}

// extractDateTime stores milliseconds since the Unix epoch.
func extractDateTime(p any) (Value, error) {
	switch v := p.(type) {
	case time.Time:
		return dateTimeValue(v.UnixMilli()), nil
	case *time.Time:
		if v == nil {
			return nil, errNilPayload
		}
		return dateTimeValue(v.UnixMilli()), nil
	case int64:
		return dateTimeValue(v), nil
	case primitive.DateTime:
		return dateTimeValue(int64(v)), nil
	}
	return nil, shapeError(p, KindDateTime)
}

func extractStream(p any, k Kind) (Stream, error) {
	switch v := p.(type) {
	case Stream:
		return v, nil
	case []Cell:
		return Stream(v), nil
	case *Stream:
		if v == nil {
			return nil, errNilPayload
		}
		return *v, nil
	}
	return nil, shapeError(p, k)
}

func extractRawDocument(p any) (Value, error) {
	switch v := p.(type) {
	case bsoncore.Document:
		return rawDocValue(v), nil
	case []byte:
		return rawDocValue(v), nil
	}
	return nil, shapeError(p, KindBSONDocument)
}

func extractRawArray(p any) (Value, error) {
	switch v := p.(type) {
	case bsoncore.Array:
		return rawArrayValue(v), nil
	case bsoncore.Document:
		return rawArrayValue(v), nil
	case []byte:
		return rawArrayValue(v), nil
	}
	return nil, shapeError(p, KindBSONArray)
}
