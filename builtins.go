// builtins.go — the shared built-in library.
//
// Both backends route built-in calls through this one table so their
// semantics cannot diverge: the interpreter dispatches Impl, the generator
// renders JS. An entry with a nil JS renderer has no JavaScript mapping and
// makes the generator fail that statement with UnsupportedConstructError.
// The safety guard is consulted by name before either path dispatches.
package jam

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Builtin is one predefined callable, usable from expressions ("sqrt(64)")
// and from the statement forms that print or bind its result.
type Builtin struct {
	Name  string
	Arity int

	// Impl computes the call for the interpreter. It may use in.rng, the
	// sleep hook and the output buffer; it raises typed errors by panicking.
	Impl func(in *Interp, args []Value, line int) Value

	// JS renders the call for the generator from already-rendered argument
	// expressions. Nil means no mapping exists.
	JS func(args []string) string

	// Helpers names runtime helper functions the JS rendering depends on;
	// the generator emits each needed helper once, at the top of the output.
	Helpers []string
}

var builtins = map[string]*Builtin{}

func registerBuiltin(b *Builtin) { builtins[b.Name] = b }

func init() {
	registerMathBuiltins()
	registerStringBuiltins()
	registerListBuiltins()
	registerChanceBuiltins()
}

/* ===========================
   Argument coercion
   =========================== */

func asNumber(v Value, line int, what string) float64 {
	if v.Tag != TagNumber {
		panic(&TypeError{Line: line, Msg: fmt.Sprintf("%s must be a number, got %s", what, v.Tag)})
	}
	return v.Data.(float64)
}

func asWholeNumber(v Value, line int, what string) int {
	f := asNumber(v, line, what)
	if f != math.Trunc(f) {
		panic(&TypeError{Line: line, Msg: fmt.Sprintf("%s must be a whole number, got %s", what, formatNumber(f))})
	}
	return int(f)
}

func asBool(v Value, line int, what string) bool {
	if v.Tag != TagBoolean {
		panic(&TypeError{Line: line, Msg: fmt.Sprintf("%s must be true or false, got %s", what, v.Tag)})
	}
	return v.Data.(bool)
}

func asList(v Value, line int, what string) []Value {
	if v.Tag != TagList {
		panic(&TypeError{Line: line, Msg: fmt.Sprintf("%s must be a list, got %s", what, v.Tag)})
	}
	return v.Data.([]Value)
}

/* ===========================
   Registration
   =========================== */

func registerMathBuiltins() {
	registerBuiltin(&Builtin{
		Name: "sqrt", Arity: 1,
		Impl: func(_ *Interp, args []Value, line int) Value {
			f := asNumber(args[0], line, "sqrt argument")
			if f < 0 {
				panic(&RuntimeError{Line: line, Msg: "sqrt of a negative number"})
			}
			return NumberVal(math.Sqrt(f))
		},
		JS: func(a []string) string { return "Math.sqrt(" + a[0] + ")" },
	})
	registerBuiltin(&Builtin{
		Name: "pow", Arity: 2,
		Impl: func(_ *Interp, args []Value, line int) Value {
			base := asNumber(args[0], line, "pow base")
			exp := asNumber(args[1], line, "pow exponent")
			return NumberVal(math.Pow(base, exp))
		},
		JS: func(a []string) string { return "Math.pow(" + a[0] + ", " + a[1] + ")" },
	})
	registerBuiltin(&Builtin{
		Name: "square", Arity: 1,
		Impl: func(_ *Interp, args []Value, line int) Value {
			f := asNumber(args[0], line, "square argument")
			return NumberVal(f * f)
		},
		JS: func(a []string) string { return "Math.pow(" + a[0] + ", 2)" },
	})
}

func registerStringBuiltins() {
	registerBuiltin(&Builtin{
		Name: "uppercase", Arity: 1,
		Impl: func(_ *Interp, args []Value, _ int) Value {
			return StringVal(strings.ToUpper(args[0].Render()))
		},
		JS:      func(a []string) string { return "__jamShow(" + a[0] + ").toUpperCase()" },
		Helpers: []string{"__jamShow"},
	})
	registerBuiltin(&Builtin{
		Name: "lowercase", Arity: 1,
		Impl: func(_ *Interp, args []Value, _ int) Value {
			return StringVal(strings.ToLower(args[0].Render()))
		},
		JS:      func(a []string) string { return "__jamShow(" + a[0] + ").toLowerCase()" },
		Helpers: []string{"__jamShow"},
	})
	registerBuiltin(&Builtin{
		Name: "reverse", Arity: 1,
		Impl: func(_ *Interp, args []Value, _ int) Value {
			runes := []rune(args[0].Render())
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return StringVal(string(runes))
		},
		JS:      func(a []string) string { return "__jamShow(" + a[0] + ").split(\"\").reverse().join(\"\")" },
		Helpers: []string{"__jamShow"},
	})
}

func registerListBuiltins() {
	// length: element count for lists, character count for everything else
	// (the original measured the printed form).
	registerBuiltin(&Builtin{
		Name: "length", Arity: 1,
		Impl: func(_ *Interp, args []Value, _ int) Value {
			if args[0].Tag == TagList {
				return NumberVal(float64(len(args[0].Data.([]Value))))
			}
			return NumberVal(float64(len([]rune(args[0].Render()))))
		},
		JS:      func(a []string) string { return "__jamLen(" + a[0] + ")" },
		Helpers: []string{"__jamLen"},
	})
}

func registerChanceBuiltins() {
	registerBuiltin(&Builtin{
		Name: "random", Arity: 2,
		Impl: func(in *Interp, args []Value, line int) Value {
			lo := asWholeNumber(args[0], line, "random lower bound")
			hi := asWholeNumber(args[1], line, "random upper bound")
			if lo > hi {
				panic(&RuntimeError{Line: line, Msg: fmt.Sprintf("random range [%d, %d] is empty", lo, hi)})
			}
			return NumberVal(float64(lo + in.rng.Intn(hi-lo+1)))
		},
		JS: func(a []string) string {
			return "Math.floor(Math.random() * ((" + a[1] + ") - (" + a[0] + ") + 1)) + (" + a[0] + ")"
		},
	})
	registerBuiltin(&Builtin{
		Name: "choose", Arity: 1,
		Impl: func(in *Interp, args []Value, line int) Value {
			xs := asList(args[0], line, "choose source")
			if len(xs) == 0 {
				panic(&RuntimeError{Line: line, Msg: "choose from an empty list"})
			}
			return xs[in.rng.Intn(len(xs))]
		},
		JS:      func(a []string) string { return "__jamChoose(" + a[0] + ")" },
		Helpers: []string{"__jamChoose"},
	})
	// wait has no synchronous JavaScript counterpart; the generator reports
	// it as unsupported.
	registerBuiltin(&Builtin{
		Name: "wait", Arity: 1,
		Impl: func(in *Interp, args []Value, line int) Value {
			secs := asNumber(args[0], line, "wait duration")
			if secs < 0 {
				panic(&RuntimeError{Line: line, Msg: "wait duration cannot be negative"})
			}
			in.opts.Sleep(time.Duration(secs * float64(time.Second)))
			return BooleanVal(true)
		},
	})
}

// jsHelperSource maps helper names to their emitted definitions. The helpers
// reproduce the interpreter's rendering rules so generated programs print the
// same text the interpreter buffers.
var jsHelperSource = map[string]string{
	"__jamShow":   `function __jamShow(v) { return Array.isArray(v) ? "[" + v.map(__jamShow).join(", ") + "]" : String(v); }`,
	"__jamLen":    `function __jamLen(v) { return Array.isArray(v) ? v.length : __jamShow(v).length; }`,
	"__jamChoose": `function __jamChoose(xs) { return xs[Math.floor(Math.random() * xs.length)]; }`,
	"__jamEq":     `function __jamEq(a, b) { if (Array.isArray(a) && Array.isArray(b)) { return a.length === b.length && a.every((x, i) => __jamEq(x, b[i])); } return a === b; }`,
	"__jamCount":  `function __jamCount(n) { if (typeof n !== "number" || n < 0 || n !== Math.trunc(n)) { throw new RangeError("invalid repeat count: " + n); } return n; }`,
}

// jsHelperDeps lists helper-to-helper dependencies (emitted in order).
var jsHelperDeps = map[string][]string{
	"__jamLen": {"__jamShow"},
}
