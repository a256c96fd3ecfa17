// Package diag implements the compiler's structured diagnostics (§7): an
// error kind, a `{TCL ...}`-style error-code vector, and a source position,
// bundled the way ugo's CompilerError wraps a FileSet position around a
// message (see DESIGN.md - the teacher itself has no direct analogue for a
// user-facing compile error with a source position, since its own parser
// errors are reported by the deleted lang/parser package).
package diag

import (
	"fmt"
	"strings"

	"github.com/mna/tbcc/lang/token"
)

// Kind classifies a diagnostic per §7's abstract error taxonomy.
type Kind uint8

const (
	SyntaxError Kind = iota
	ArityError
	ScopeError
	RangeError
	ShapeError
	ResourceError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case ArityError:
		return "arity error"
	case ScopeError:
		return "scope error"
	case RangeError:
		return "range error"
	case ShapeError:
		return "shape error"
	case ResourceError:
		return "resource error"
	default:
		return "error"
	}
}

// Code is an error-code vector such as {TCL ASSEMBLE NONLOCAL} (§7).
type Code []string

func (c Code) String() string { return "{" + strings.Join(c, " ") + "}" }

// Error is a single compile diagnostic: a kind, a code vector, the source
// position it occurred at, a message, and (for the assembler) a trace of
// offending source-instruction forms accumulated via AddTrace, mirroring
// the "standard addErrorInfo channel" of §7.
type Error struct {
	Kind  Kind
	Code  Code
	Pos   token.Pos
	Msg   string
	Trace []string
}

// New constructs an Error.
func New(kind Kind, code Code, pos token.Pos, msg string) *Error {
	return &Error{Kind: kind, Code: code, Pos: pos, Msg: msg}
}

// AddTrace appends one entry to the error-info trace and returns e, so
// callers along the propagation path can chain additions (§7: "the
// assembler, on error, appends the offending source-instruction index and
// its textual form").
func (e *Error) AddTrace(s string) *Error {
	e.Trace = append(e.Trace, s)
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if !e.Pos.Unknown() {
		line, col := e.Pos.LineCol()
		fmt.Fprintf(&b, "%d:%d: ", line, col)
	}
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if len(e.Code) > 0 {
		b.WriteString(" ")
		b.WriteString(e.Code.String())
	}
	for _, t := range e.Trace {
		fmt.Fprintf(&b, "\n    while assembling %q", t)
	}
	return b.String()
}

// Common error-code vectors named in §7.
var (
	CodeAssembleNonlocal = Code{"TCL", "ASSEMBLE", "NONLOCAL"}
	CodeEnsembleNotFound = Code{"TCL", "ENSEMBLE", "NOT_ENSEMBLE"}
	CodeEnsembleAmbig    = Code{"TCL", "ENSEMBLE", "AMBIGUOUS"}
	CodeWrongNumArgs     = Code{"TCL", "WRONGARGS"}
	CodeValueOutOfRange  = Code{"TCL", "VALUE", "OUT_OF_RANGE"}
)
