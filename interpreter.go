// interpreter.go — PUBLIC API SURFACE for the Jam engine.
//
// OVERVIEW
// ========
// One front end, two backends. `Parse` produces the immutable Statement tree;
// `Run` consumes it with either backend:
//
//   - ModeInterpret: the tree-walking executor (interpreter_exec.go) runs the
//     program and captures its ordered output buffer.
//   - ModeTranspile: the generator (codegen.go) renders equivalent JavaScript
//     without executing anything.
//
// Every invocation owns an independent Environment, output buffer and timer:
// nothing is shared across runs, so concurrent Run calls are isolated without
// locking. Execution inside one run is single-threaded and synchronous; an
// `ask` statement suspends it on the InputProvider and resumes with the
// provided value bound.
//
// ERRORS
// ======
// Failures are the typed errors of errors.go. The interpreter aborts the
// whole run on the first error: Run returns the error AND a Result carrying
// whatever output was already buffered plus the matching Diagnostic. The
// generator never aborts the file — per-statement failures become Diagnostics
// and inline annotations, and Run returns nil.
package jam

import (
	"math/rand"
	"time"
)

// Version of the Jam engine.
const Version = "0.3.0"

// DefaultMaxLoopIterations caps while/until loops when Options does not
// override it, converting a runaway `while true` into a RuntimeError.
const DefaultMaxLoopIterations = 100000

// Mode selects the backend.
type Mode int

const (
	ModeInterpret Mode = iota
	ModeTranspile
)

// InputProvider supplies the value an `ask` statement suspends on. It is
// called with the rendered prompt ("" when the program gave none) and its
// reply is bound to the target variable. A nil provider makes `ask` fail.
type InputProvider func(prompt string) (string, error)

// Options configures one invocation. The zero value is usable: no input
// provider, allow-everything safety, default loop cap, wall clock, real
// sleeping and a time-seeded random source.
type Options struct {
	Input             InputProvider
	Safety            *SafetyProfile
	MaxLoopIterations int

	// Test seams. Rand makes random/choose deterministic; Now feeds the
	// timer; Sleep backs wait.
	Rand  *rand.Rand
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Result is the outcome of one Run.
type Result struct {
	Output      string       // interpreter: the ordered output buffer (possibly partial on error)
	Generated   string       // transpiler: the generated JavaScript
	Diagnostics []Diagnostic // structured failures, in occurrence order
}

// Run parses source and executes it (ModeInterpret) or renders it as
// JavaScript (ModeTranspile). See the package comment above for the error
// contract per mode. A non-nil Result is returned even on failure.
func Run(source string, mode Mode, opts Options) (res *Result, err error) {
	prog, perr := Parse(source)
	if perr != nil {
		return &Result{Diagnostics: []Diagnostic{diagnose(perr)}}, perr
	}

	switch mode {
	case ModeTranspile:
		js, diags := GenerateJS(prog, opts)
		return &Result{Generated: js, Diagnostics: diags}, nil
	default:
		in := newInterp(opts)
		res = &Result{}
		defer func() {
			if r := recover(); r != nil {
				e, ok := r.(error)
				if !ok || !engineError(e) {
					panic(r)
				}
				res.Output = in.out.String()
				res.Diagnostics = append(res.Diagnostics, diagnose(e))
				err = e
			}
		}()
		res.Output = in.run(prog)
		return res, nil
	}
}

// Interpret is shorthand for Run in interpreter mode.
func Interpret(source string, opts Options) (*Result, error) {
	return Run(source, ModeInterpret, opts)
}

// Transpile is shorthand for Run in generator mode.
func Transpile(source string, opts Options) (*Result, error) {
	return Run(source, ModeTranspile, opts)
}

/* ===========================
   Persistent sessions (REPL)
   =========================== */

// Session keeps one Environment alive across Eval calls so a REPL can build
// up state line by line. Each Eval returns only the output appended by that
// evaluation. Sessions are not safe for concurrent use.
type Session struct {
	in   *Interp
	seen int
}

// NewSession builds a persistent session with the given options.
func NewSession(opts Options) *Session {
	return &Session{in: newInterp(opts)}
}

// Eval parses and executes src in the session's environment and returns the
// newly produced output. On error the session state keeps every binding made
// before the failing statement.
func (s *Session) Eval(src string) (out string, err error) {
	prog, perr := Parse(src)
	if perr != nil {
		return "", perr
	}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !engineError(e) {
				panic(r)
			}
			out = s.delta()
			err = e
		}
	}()
	s.in.execBlock(prog)
	return s.delta(), nil
}

func (s *Session) delta() string {
	full := s.in.out.String()
	out := full[s.seen:]
	s.seen = len(full)
	return out
}
