package engine

import (
	"strings"
)

// Enforcement bookkeeping for a stream traversal: duplicate key handling,
// max depth checks, and JSON Pointer paths for issues.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth limits open levels, root included. Zero or negative disables it.
	MaxDepth int
	// IssueSink is an optional callback to receive non-fatal issues (DupWarn).
	IssueSink func(SimpleIssue)
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind containerKind
	keys map[string]struct{}
	path string
}

// Tracker follows the levels opened by a builder or printer.
type Tracker struct {
	opt   EnforceOptions
	stack []frame
}

// NewTracker returns a tracker with no open level.
func NewTracker(opt EnforceOptions) *Tracker {
	return &Tracker{opt: opt}
}

// Depth reports the number of open levels.
func (t *Tracker) Depth() int { return len(t.stack) }

// EnterObject opens a document level at path.
func (t *Tracker) EnterObject(path string) error { return t.enter(kindObject, path) }

// EnterArray opens an array level at path.
func (t *Tracker) EnterArray(path string) error { return t.enter(kindArray, path) }

func (t *Tracker) enter(kind containerKind, path string) error {
	if t.opt.MaxDepth > 0 && len(t.stack)+1 > t.opt.MaxDepth {
		return IssueError{SimpleIssue{Code: "too_deep", Path: NormalizePath(path), Message: "max depth exceeded"}}
	}
	f := frame{kind: kind, path: path}
	if kind == kindObject && t.opt.OnDuplicate != DupIgnore {
		f.keys = make(map[string]struct{})
	}
	t.stack = append(t.stack, f)
	return nil
}

// Leave closes the innermost level.
func (t *Tracker) Leave() {
	if n := len(t.stack); n > 0 {
		t.stack = t.stack[:n-1]
	}
}

// Key records a document key in the innermost level and applies the
// duplicate policy. Warnings go to the IssueSink; DupError returns an
// IssueError.
func (t *Tracker) Key(key string) error {
	n := len(t.stack)
	if n == 0 {
		return nil
	}
	top := &t.stack[n-1]
	if top.kind != kindObject || top.keys == nil {
		return nil
	}
	if _, ok := top.keys[key]; ok {
		si := SimpleIssue{Code: "duplicate_key", Path: NormalizePath(joinJSONPointer(top.path, key)), Message: "key '" + key + "' duplicated"}
		if t.opt.OnDuplicate == DupError {
			return IssueError{si}
		}
		if t.opt.IssueSink != nil {
			t.opt.IssueSink(si)
		}
		return nil
	}
	top.keys[key] = struct{}{}
	return nil
}

// Path returns the JSON Pointer of key inside the innermost level.
func (t *Tracker) Path(key string) string {
	if n := len(t.stack); n > 0 {
		return joinJSONPointer(t.stack[n-1].path, key)
	}
	return joinJSONPointer("", key)
}

// LevelPath returns the JSON Pointer of the innermost level.
func (t *Tracker) LevelPath() string {
	if n := len(t.stack); n > 0 {
		return t.stack[n-1].path
	}
	return ""
}

// NormalizePath renders the root pointer as "/".
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeJSONPointerToken(s string) string {
	return jsonPointerEscaper.Replace(s)
}

func joinJSONPointer(base, token string) string {
	if base == "" {
		return "/" + escapeJSONPointerToken(token)
	}
	return base + "/" + escapeJSONPointerToken(token)
}
