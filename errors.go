// errors.go — typed diagnostics and caret-snippet rendering.
//
// Every failure the engine can produce is one of the typed errors below, each
// carrying a 1-based source line. Internally the interpreter raises them by
// panicking with the typed value; the public entry points in interpreter.go
// recover and hand the error back to the caller, so no engine failure ever
// crashes the host process.
//
// WrapErrorWithSource turns any of these into a readable multi-line snippet
// with numbered context lines and a caret under the offending line, suitable
// for terminals and logs (plain text, no ANSI escapes).
package jam

import (
	"fmt"
	"strings"
)

// LexError: unterminated or malformed lexical construct.
type LexError struct {
	Line int
	Msg  string
}

func (e *LexError) Error() string { return fmt.Sprintf("lex error at line %d: %s", e.Line, e.Msg) }

// ParseError: unbalanced or misplaced block, or an unrecognized statement.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg) }

// NameError: reference to an undefined variable or function.
type NameError struct {
	Line int
	Msg  string
}

func (e *NameError) Error() string { return fmt.Sprintf("name error at line %d: %s", e.Line, e.Msg) }

// TypeError: operator or built-in applied to operands of the wrong tag.
type TypeError struct {
	Line int
	Msg  string
}

func (e *TypeError) Error() string { return fmt.Sprintf("type error at line %d: %s", e.Line, e.Msg) }

// ArityError: call with the wrong number of arguments.
type ArityError struct {
	Line int
	Msg  string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("arity error at line %d: %s", e.Line, e.Msg)
}

// RuntimeError: domain failures — negative sqrt, timer misuse, the loop
// iteration cap, an empty choose list, and similar.
type RuntimeError struct {
	Line int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at line %d: %s", e.Line, e.Msg)
}

// SafetyError: an operation disallowed by the active safety profile. Raised
// before the call is dispatched, in both backends.
type SafetyError struct {
	Line int
	Msg  string
}

func (e *SafetyError) Error() string {
	return fmt.Sprintf("safety error at line %d: %s", e.Line, e.Msg)
}

// UnsupportedConstructError: generator-only — the statement has no JavaScript
// mapping. Aborts that statement's emission; generation continues.
type UnsupportedConstructError struct {
	Line int
	Msg  string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported construct at line %d: %s", e.Line, e.Msg)
}

// Diagnostic is the structured form of a failure surfaced in a Result: the
// error kind, the originating line and a human-readable message.
type Diagnostic struct {
	Kind string
	Line int
	Msg  string
}

func (d Diagnostic) String() string { return fmt.Sprintf("%s at line %d: %s", d.Kind, d.Line, d.Msg) }

// diagnose classifies an engine error into a Diagnostic. Unknown error values
// map to kind "Error" with line 0.
func diagnose(err error) Diagnostic {
	switch e := err.(type) {
	case *LexError:
		return Diagnostic{Kind: "LexError", Line: e.Line, Msg: e.Msg}
	case *ParseError:
		return Diagnostic{Kind: "ParseError", Line: e.Line, Msg: e.Msg}
	case *NameError:
		return Diagnostic{Kind: "NameError", Line: e.Line, Msg: e.Msg}
	case *TypeError:
		return Diagnostic{Kind: "TypeError", Line: e.Line, Msg: e.Msg}
	case *ArityError:
		return Diagnostic{Kind: "ArityError", Line: e.Line, Msg: e.Msg}
	case *RuntimeError:
		return Diagnostic{Kind: "RuntimeError", Line: e.Line, Msg: e.Msg}
	case *SafetyError:
		return Diagnostic{Kind: "SafetyError", Line: e.Line, Msg: e.Msg}
	case *UnsupportedConstructError:
		return Diagnostic{Kind: "UnsupportedConstructError", Line: e.Line, Msg: e.Msg}
	default:
		return Diagnostic{Kind: "Error", Line: 0, Msg: err.Error()}
	}
}

// engineError reports whether err is one of the typed errors above. The
// recover sites in interpreter.go re-panic on anything else so genuine bugs
// still surface as panics.
func engineError(err error) bool {
	switch err.(type) {
	case *LexError, *ParseError, *NameError, *TypeError, *ArityError,
		*RuntimeError, *SafetyError, *UnsupportedConstructError:
		return true
	}
	return false
}

/* ===========================
   Caret-snippet rendering
   =========================== */

// WrapErrorWithSource returns an error whose message is a multi-line snippet
// of src around the failing line, with a caret under its first code column.
// Errors that do not belong to the engine taxonomy are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	if !engineError(err) {
		return err
	}
	d := diagnose(err)
	header := strings.ToUpper(strings.TrimSuffix(d.Kind, "Error")) + " ERROR"
	if d.Kind == "UnsupportedConstructError" {
		header = "UNSUPPORTED CONSTRUCT"
	}
	return fmt.Errorf("%s", prettyErrorString(src, header, d.Line, d.Msg))
}

// prettyErrorString builds the snippet: header, up to one line of context
// before and after, and a caret under the first non-blank column of the
// failing line. Line is 1-based and clamped to the source bounds.
func prettyErrorString(src, header string, line int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	fmt.Fprintf(&b, "%s at line %d: %s\n\n", header, line, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caret := len(lineTxt) - len(strings.TrimLeft(lineTxt, " \t"))
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caret))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
