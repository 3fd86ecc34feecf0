// Package bcon converts BCON cell streams into BSON documents.
//
// A cell stream is a flat, ordered slice of tagged cells describing a
// hierarchical document: literal strings act as keys or string values, and a
// marker cell followed by a tag cell and a payload cell introduces a typed
// value (double, int32, binary, nested document, ...). The stream ends with a
// terminator cell.
//
// The package provides:
//
// - A token decoder over streams (Stream.Next)
// - A builder that drives the decoder and appends values to a Writer backed
// by bsoncore (Convert, ConvertArray, ConvertInto)
// - A pretty printer for diagnostics (Render, RenderArray)
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put traversal bookkeeping under internal/.
// - Place fixture loaders under source/ and the CLI under cmd/bcon.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := bcon.New(
//		"name", "widget",
//		"price", bcon.Double(9.5),
//		"tags", bcon.Array("a", "b"),
//	)
//	doc, err := bcon.Convert(s)
//	if ce, ok := err.(*bcon.ConvertError); ok {
//		fmt.Println(ce.Diagnostic)
//	}
//
//	fmt.Println(bcon.Render(s))
package bcon
