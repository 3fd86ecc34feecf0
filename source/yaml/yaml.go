// Package yaml loads stream fixtures written in YAML.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/reoring/bcon"
	"github.com/reoring/bcon/internal/fixture"
)

// Load decodes a YAML fixture into a stream.
func Load(b []byte) (bcon.Stream, error) { return LoadReader(bytes.NewReader(b)) }

// LoadReader decodes the first YAML document read from r into a stream.
func LoadReader(r io.Reader) (bcon.Stream, error) {
	dec := yamlv3.NewDecoder(r)
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yaml: empty fixture")
		}
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return fixture.Stream(node)
}
