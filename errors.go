package bcon

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnrecognizedKind = "unrecognized_kind" // tag cell names no registry entry
	CodeExpectedKey      = "expected_key"      // document key position held a non-literal
	CodeDanglingKey      = "dangling_key"      // key followed by end of stream
	CodeTruncated        = "truncated"         // stream or indirect entry cut short
	CodeUnsupportedValue = "unsupported_value" // writer rejected the value
	CodeInvalidPayload   = "invalid_payload"   // payload shape does not match the kind
	CodeDuplicateKey     = "duplicate_key"
	CodeTooDeep          = "too_deep"
	CodeUnbalanced       = "unbalanced" // inline close without matching open
)

// Issue represents a single conversion failure or warning.
type Issue struct {
	Path    string // JSON Pointer of the entry (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	// Pos is the cell index inside the stream that held the fault. Nested
	// streams are indexed from their own start; Path locates them globally.
	Pos   int
	Cause error // Optional: underlying error.
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. dangling_key at /foo (cell 1)
		fmt.Fprintf(b, "%s at %s (cell %d)", it.Code, it.Path, it.Pos)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ConvertError is returned by the Convert family when the stream is
// malformed. Diagnostic holds the Render output of the original stream with
// an inline <ERROR HERE> marker at the first fault.
type ConvertError struct {
	Issues     Issues
	Diagnostic string
}

func (e *ConvertError) Error() string { return "bcon: " + e.Issues.Error() }

func (e *ConvertError) Unwrap() error { return e.Issues }

// Code returns the code of the first issue, or "" when there is none.
func (e *ConvertError) Code() string {
	if len(e.Issues) == 0 {
		return ""
	}
	return e.Issues[0].Code
}
