package diag

import "fmt"

// Kind classifies a CompileError per the propagation policy in spec.md §7.
type Kind int

const (
	// ParseError is surfaced by the front end, with position.
	ParseError Kind = iota
	// InferenceFailure means the MaxSMT oracle returned unsat/unknown. Per
	// §4.1 and §7 this is a compiler-bug class, but compile() still returns
	// it as a CompileError rather than panicking, so that a fuzzer driving
	// compile() against arbitrary input never crashes the host process.
	InferenceFailure
	// LowIRTypeError covers every kind in §4.5: arity mismatch, ref/function
	// expected, multiply-defined symbol, invalid-in-context.
	LowIRTypeError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case InferenceFailure:
		return "inference failure"
	case LowIRTypeError:
		return "low-ir type error"
	default:
		return "unknown error"
	}
}

// CompileError is the only error type compile() (and its intermediate
// stages) returns to a caller. Emitter invariant violations are NOT
// CompileErrors: per §7 they represent compiler bugs and panic instead, with
// the InvariantViolation message prefix below so they're recognizable in a
// crash report.
type CompileError struct {
	Kind    Kind
	Pos     Pos
	Message string
	// SessionID correlates this error with the compile() invocation that
	// produced it (see internal/cache and cmd/jankgo for where it's minted).
	SessionID string
}

func (e *CompileError) Error() string {
	if e.Pos == NoPos {
		return fmt.Sprintf("[%s] %s: %s", e.SessionID, e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s at %s: %s", e.SessionID, e.Kind, e.Pos, e.Message)
}

func NewCompileError(kind Kind, pos Pos, sessionID string, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:      kind,
		Pos:       pos,
		SessionID: sessionID,
		Message:   fmt.Sprintf(format, args...),
	}
}

// InvariantViolationPrefix marks a panic raised for an emitter/ANF invariant
// violation (§7: "represents a compiler bug, not user error"). Tests assert
// on this prefix rather than on a specific message.
const InvariantViolationPrefix = "jankgo: internal invariant violation: "

// Bug panics with the InvariantViolationPrefix. Call this, never return an
// error, for conditions the pipeline's own earlier stages are supposed to
// have ruled out (unbound identifier at emission time, missing runtime
// import, a Metavar surviving substitution, ...).
func Bug(format string, args ...any) {
	panic(InvariantViolationPrefix + fmt.Sprintf(format, args...))
}
