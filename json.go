package bcon

import (
	"bytes"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// DumpJSON converts a document-mode stream and renders the result as
// relaxed Extended JSON. Conversion failures are returned unchanged.
func DumpJSON(s Stream, opts ...Options) (string, error) {
	doc, err := Convert(s, opts...)
	if err != nil {
		return "", err
	}
	return DocumentJSON(doc)
}

// DumpArrayJSON is DumpJSON for an array-mode stream.
func DumpArrayJSON(s Stream, opts ...Options) (string, error) {
	arr, err := ConvertArray(s, opts...)
	if err != nil {
		return "", err
	}
	return ArrayJSON(arr)
}

// DocumentJSON renders an encoded document as relaxed Extended JSON.
func DocumentJSON(doc bsoncore.Document) (string, error) {
	b, err := bson.MarshalExtJSON(bson.Raw(doc), false, false)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// arrayHolder is the key ArrayJSON wraps an array under; Extended JSON
// has no top-level array form.
const arrayHolder = "a"

// ArrayJSON renders an encoded array as relaxed Extended JSON.
func ArrayJSON(arr bsoncore.Array) (string, error) {
	idx, holder := bsoncore.AppendDocumentStart(nil)
	holder = bsoncore.AppendArrayElement(holder, arrayHolder, arr)
	holder, err := bsoncore.AppendDocumentEnd(holder, idx)
	if err != nil {
		return "", err
	}
	b, err := bson.MarshalExtJSON(bson.Raw(holder), false, false)
	if err != nil {
		return "", err
	}
	prefix := []byte(`{"` + arrayHolder + `":`)
	if !bytes.HasPrefix(b, prefix) || !bytes.HasSuffix(b, []byte("}")) {
		return "", fmt.Errorf("bcon: unexpected array JSON %q", b)
	}
	return string(b[len(prefix) : len(b)-1]), nil
}
