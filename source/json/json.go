// Package json loads stream fixtures written in JSON using goccy/go-json.
package json

import (
	"bytes"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/bcon"
	"github.com/reoring/bcon/internal/fixture"
)

// Load decodes a JSON fixture into a stream.
func Load(b []byte) (bcon.Stream, error) { return LoadReader(bytes.NewReader(b)) }

// LoadReader decodes one JSON value read from r into a stream. Numbers are
// kept as json.Number so int64 values survive.
func LoadReader(r io.Reader) (bcon.Stream, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return fixture.Stream(node)
}
