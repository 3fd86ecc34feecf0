package bcon

// Mode selects how a stream level is interpreted.
type Mode int

const (
	ModeDocument Mode = iota // Cells alternate key/value.
	ModeArray                // Every cell is a value; keys are "0", "1", ...
)

func (m Mode) String() string {
	if m == ModeArray {
		return "array"
	}
	return "document"
}

// Severity expresses how an issue is treated.
type Severity int

const (
	Error  Severity = iota // Abort the conversion (default).
	Warn                   // Report through IssueSink and the logger, then continue.
	Ignore                 // Forward silently.
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Error, Warn or Ignore (duplicate document keys).
}

// DefaultMaxDepth bounds document/array nesting, root level included.
const DefaultMaxDepth = 100

// Options bundles conversion options. The zero value rejects duplicate keys
// and uses DefaultMaxDepth.
type Options struct {
	Strictness Strictness
	MaxDepth   int // 0 means DefaultMaxDepth; negative disables the guard.
	// IssueSink receives non-fatal issues (duplicate keys in Warn mode).
	IssueSink func(Issue)
}

func pickOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth == 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	return opt
}
