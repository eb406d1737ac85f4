// runtime.go
//
// Run-scoped interpreter state: the Environment (variables + function table),
// the call-frame stack, the output buffer and the timer. One Interp is
// constructed per Run invocation and discarded afterwards — there is no
// process-wide state, so independent runs are fully isolated and may execute
// in parallel at the process level without locking.
package jam

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Environment holds the global variable bindings and the global function
// table for one run. Variables and functions live in separate namespaces.
type Environment struct {
	vars  map[string]Value
	funcs map[string]*FunctionDef
}

func NewEnvironment() *Environment {
	return &Environment{
		vars:  make(map[string]Value),
		funcs: make(map[string]*FunctionDef),
	}
}

// Frame is the per-call local scope. Name lookups consult the top frame
// first, then fall back directly to the global Environment. This is a
// dynamic-scope-like fallback, not lexical closure capture: a function sees
// its own parameters/locals plus globals, never the locals of intermediate
// callers. (Nested function definitions therefore also see only their own
// frame and globals.)
type Frame struct {
	locals   map[string]Value
	ret      Value
	hasRet   bool
	returned bool
}

// timerState tracks the single per-run timer.
type timerState struct {
	start   time.Time
	running bool
}

// Interp is the statement executor's state for one run.
type Interp struct {
	env    *Environment
	frames []*Frame
	out    strings.Builder
	timer  timerState
	opts   Options
	rng    *rand.Rand
}

func newInterp(opts Options) *Interp {
	if opts.MaxLoopIterations <= 0 {
		opts.MaxLoopIterations = DefaultMaxLoopIterations
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Interp{env: NewEnvironment(), opts: opts, rng: rng}
}

// frame returns the active call frame, or nil at top level.
func (in *Interp) frame() *Frame {
	if len(in.frames) == 0 {
		return nil
	}
	return in.frames[len(in.frames)-1]
}

// lookup resolves a variable: active frame locals first, then globals.
func (in *Interp) lookup(name string, line int) Value {
	if f := in.frame(); f != nil {
		if v, ok := f.locals[name]; ok {
			return v
		}
	}
	if v, ok := in.env.vars[name]; ok {
		return v
	}
	panic(&NameError{Line: line, Msg: "undefined variable '" + name + "'"})
}

// bind assigns a variable. Inside a call frame the rules are: update an
// existing local, else update an existing global (functions may write
// variables beyond their own parameters), else create a new local. At top
// level everything binds globally.
func (in *Interp) bind(name string, v Value) {
	if f := in.frame(); f != nil {
		if _, ok := f.locals[name]; ok {
			f.locals[name] = v
			return
		}
		if _, ok := in.env.vars[name]; ok {
			in.env.vars[name] = v
			return
		}
		f.locals[name] = v
		return
	}
	in.env.vars[name] = v
}

// guard consults the active safety profile before an operation is dispatched.
func (in *Interp) guard(op string, line int) {
	if in.opts.Safety != nil && !in.opts.Safety.Allows(op) {
		panic(&SafetyError{Line: line, Msg: "operation '" + op + "' is not allowed by safety profile '" + in.opts.Safety.Name + "'"})
	}
}

// print appends one chunk to the ordered output buffer.
func (in *Interp) print(text string) {
	in.out.WriteString(text)
	in.out.WriteByte('\n')
}

// parseAskReply converts an externally supplied input line to a Value the way
// literals read: number, boolean keyword, else string.
func parseAskReply(reply string) Value {
	s := strings.TrimSpace(reply)
	if f, err := strconv.ParseFloat(s, 64); err == nil && s != "" {
		return NumberVal(f)
	}
	switch s {
	case "true":
		return BooleanVal(true)
	case "false":
		return BooleanVal(false)
	}
	return StringVal(reply)
}
