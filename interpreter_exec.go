// interpreter_exec.go — PRIVATE: the tree-walking statement executor.
//
// One method per concern: execBlock walks a statement sequence in source
// order, execStatement dispatches on Statement.Kind, evalExpr evaluates the
// expression AST against the active frame/global environment. Failures are
// raised by panicking with a typed error from errors.go; the public entry
// points in interpreter.go recover them. Nothing here is reachable without
// going through Run / Session.
package jam

import (
	"fmt"
	"math"
)

// maxCallDepth bounds recursion so a self-calling function cannot exhaust the
// host stack inside a sandboxed run.
const maxCallDepth = 1000

// run executes a whole program and returns the captured output buffer.
func (in *Interp) run(prog []*Statement) string {
	in.execBlock(prog)
	return in.out.String()
}

func (in *Interp) execBlock(stmts []*Statement) {
	for _, st := range stmts {
		if f := in.frame(); f != nil && f.returned {
			return
		}
		in.execStatement(st)
	}
}

func (in *Interp) execStatement(st *Statement) {
	switch st.Kind {
	case StmtComment, StmtBlank:
		// kept only for the generator

	case StmtAssign:
		if st.List != nil {
			in.bind(st.Target, in.evalListOp(st.List))
			return
		}
		in.bind(st.Target, in.evalExpr(st.Expr))

	case StmtPrint:
		in.print(in.evalExpr(st.Expr).Render())

	case StmtSay:
		in.guard("say", st.Line)
		in.print("(say): " + in.evalExpr(st.Expr).Render())

	case StmtAsk:
		in.execAsk(st)

	case StmtAdd:
		in.bind(st.Target, in.evalPlus(in.evalExpr(st.A), in.evalExpr(st.B), st.Line))

	case StmtMultiply:
		a := asNumber(in.evalExpr(st.A), st.Line, "multiply operand")
		b := asNumber(in.evalExpr(st.B), st.Line, "multiply operand")
		in.bind(st.Target, NumberVal(a*b))

	case StmtShow:
		in.print(in.callBuiltin(st.Op, []Value{in.evalExpr(st.Expr)}, st.Line).Render())

	case StmtRandom:
		v := in.callBuiltin("random", []Value{in.evalExpr(st.A), in.evalExpr(st.B)}, st.Line)
		in.bind(st.Target, v)

	case StmtChoose:
		v := in.callBuiltin("choose", []Value{in.evalExpr(st.Expr)}, st.Line)
		in.bind(st.Target, v)

	case StmtWait:
		in.callBuiltin("wait", []Value{in.evalExpr(st.Expr)}, st.Line)

	case StmtIf:
		for _, cl := range st.Clauses {
			if asBool(in.evalExpr(cl.Cond), cl.Line, "'if' condition") {
				in.execBlock(cl.Body)
				return
			}
		}
		if st.Else != nil {
			in.execBlock(st.Else)
		}

	case StmtRepeat:
		// Count is evaluated once, before the first iteration.
		n := asWholeNumber(in.evalExpr(st.Expr), st.Line, "repeat count")
		if n < 0 {
			panic(&RuntimeError{Line: st.Line, Msg: "repeat count cannot be negative"})
		}
		for i := 0; i < n; i++ {
			if f := in.frame(); f != nil && f.returned {
				return
			}
			in.execBlock(st.Body)
		}

	case StmtWhile, StmtUntil:
		in.execGuardedLoop(st)

	case StmtFunction:
		if _, exists := in.env.funcs[st.Name]; exists {
			panic(&RuntimeError{Line: st.Line, Msg: "function '" + st.Name + "' is already defined"})
		}
		in.env.funcs[st.Name] = &FunctionDef{
			Name:   st.Name,
			Params: st.Params,
			Body:   st.Body,
			Line:   st.Line,
		}

	case StmtCall:
		args := make([]Value, len(st.Args))
		for i, a := range st.Args {
			args[i] = in.evalExpr(a)
		}
		in.callFunction(st.Name, args, st.Line) // bare call: result discarded

	case StmtReturn:
		f := in.frame()
		if f == nil {
			panic(&RuntimeError{Line: st.Line, Msg: "'return' outside a function"})
		}
		if st.Expr != nil {
			f.ret = in.evalExpr(st.Expr)
			f.hasRet = true
		}
		f.returned = true

	case StmtTimerStart:
		in.guard("timer", st.Line)
		if in.timer.running {
			panic(&RuntimeError{Line: st.Line, Msg: "'timer start' while the timer is already running"})
		}
		in.timer.start = in.opts.Now()
		in.timer.running = true

	case StmtTimerStop:
		in.guard("timer", st.Line)
		if !in.timer.running {
			panic(&RuntimeError{Line: st.Line, Msg: "'timer stop' without a preceding 'timer start'"})
		}
		elapsed := in.opts.Now().Sub(in.timer.start).Seconds()
		in.timer.running = false
		in.print(fmt.Sprintf("Time elapsed: %.2f seconds", elapsed))

	default:
		panic(&RuntimeError{Line: st.Line, Msg: fmt.Sprintf("unhandled statement kind %d", st.Kind)})
	}
}

// execGuardedLoop runs while/until. The guard is re-evaluated before every
// iteration; 'until' negates it. The iteration cap converts a runaway loop
// into a RuntimeError instead of hanging the host.
func (in *Interp) execGuardedLoop(st *Statement) {
	word := "while"
	if st.Kind == StmtUntil {
		word = "until"
	}
	for iter := 0; ; iter++ {
		if iter >= in.opts.MaxLoopIterations {
			panic(&RuntimeError{Line: st.Line, Msg: fmt.Sprintf("'%s' loop exceeded %d iterations", word, in.opts.MaxLoopIterations)})
		}
		cond := asBool(in.evalExpr(st.Expr), st.Line, "'"+word+"' condition")
		if st.Kind == StmtUntil {
			cond = !cond
		}
		if !cond {
			return
		}
		in.execBlock(st.Body)
		if f := in.frame(); f != nil && f.returned {
			return
		}
	}
}

func (in *Interp) execAsk(st *Statement) {
	in.guard("ask", st.Line)
	if in.opts.Input == nil {
		panic(&RuntimeError{Line: st.Line, Msg: "'ask' needs an input provider"})
	}
	prompt := ""
	if st.Expr != nil {
		prompt = in.evalExpr(st.Expr).Render()
	}
	reply, err := in.opts.Input(prompt)
	if err != nil {
		panic(&RuntimeError{Line: st.Line, Msg: "input failed: " + err.Error()})
	}
	in.bind(st.Target, parseAskReply(reply))
}

/* ===========================
   Calls
   =========================== */

// callFunction invokes a user-defined function: arity check, fresh frame with
// positional parameter binding, body execution, frame pop. Returns the
// captured return value and whether one was set.
func (in *Interp) callFunction(name string, args []Value, line int) (Value, bool) {
	def, ok := in.env.funcs[name]
	if !ok {
		panic(&NameError{Line: line, Msg: "undefined function '" + name + "'"})
	}
	if len(args) != len(def.Params) {
		plural := "s"
		if len(def.Params) == 1 {
			plural = ""
		}
		panic(&ArityError{Line: line, Msg: fmt.Sprintf("function '%s' expects %d argument%s, got %d", name, len(def.Params), plural, len(args))})
	}
	if len(in.frames) >= maxCallDepth {
		panic(&RuntimeError{Line: line, Msg: "call depth exceeded"})
	}

	f := &Frame{locals: make(map[string]Value, len(def.Params))}
	for i, p := range def.Params {
		f.locals[p] = args[i]
	}
	in.frames = append(in.frames, f)
	// Pop in a defer so a typed-error panic inside the body cannot leak the
	// frame into a persistent Session.
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()
	in.execBlock(def.Body)
	return f.ret, f.hasRet
}

// callBuiltin dispatches a built-in through the shared table, after the
// safety guard and an arity check.
func (in *Interp) callBuiltin(name string, args []Value, line int) Value {
	b, ok := builtins[name]
	if !ok {
		panic(&NameError{Line: line, Msg: "undefined function '" + name + "'"})
	}
	in.guard(name, line)
	if len(args) != b.Arity {
		plural := "s"
		if b.Arity == 1 {
			plural = ""
		}
		panic(&ArityError{Line: line, Msg: fmt.Sprintf("'%s' expects %d argument%s, got %d", name, b.Arity, plural, len(args))})
	}
	return b.Impl(in, args, line)
}

/* ===========================
   Expression evaluation
   =========================== */

func (in *Interp) evalExpr(e *Expr) Value {
	switch e.Kind {
	case ExprNumber:
		return NumberVal(e.Num)
	case ExprString:
		return StringVal(e.Str)
	case ExprBoolean:
		return BooleanVal(e.Bool)
	case ExprList:
		xs := make([]Value, len(e.Items))
		for i, item := range e.Items {
			xs[i] = in.evalExpr(item)
		}
		return ListVal(xs)
	case ExprVar:
		return in.lookup(e.Name, e.Line)
	case ExprCall:
		return in.evalCall(e)
	case ExprUnary:
		return in.evalUnary(e)
	case ExprBinary:
		return in.evalBinary(e)
	default:
		panic(&RuntimeError{Line: e.Line, Msg: fmt.Sprintf("unhandled expression kind %d", e.Kind)})
	}
}

// evalCall resolves user functions first, then built-ins. A user function
// used in expression position must return a value.
func (in *Interp) evalCall(e *Expr) Value {
	args := make([]Value, len(e.Items))
	for i, a := range e.Items {
		args[i] = in.evalExpr(a)
	}
	if _, ok := in.env.funcs[e.Name]; ok {
		ret, has := in.callFunction(e.Name, args, e.Line)
		if !has {
			panic(&RuntimeError{Line: e.Line, Msg: "function '" + e.Name + "' did not return a value"})
		}
		return ret
	}
	if _, ok := builtins[e.Name]; ok {
		return in.callBuiltin(e.Name, args, e.Line)
	}
	panic(&NameError{Line: e.Line, Msg: "undefined function '" + e.Name + "'"})
}

func (in *Interp) evalUnary(e *Expr) Value {
	operand := in.evalExpr(e.Left)
	switch e.Op {
	case "-":
		return NumberVal(-asNumber(operand, e.Line, "operand of unary '-'"))
	case "not":
		return BooleanVal(!asBool(operand, e.Line, "operand of 'not'"))
	default:
		panic(&RuntimeError{Line: e.Line, Msg: "unhandled unary operator " + e.Op})
	}
}

func (in *Interp) evalBinary(e *Expr) Value {
	// and/or short-circuit before the right side is evaluated.
	switch e.Op {
	case "and":
		if !asBool(in.evalExpr(e.Left), e.Line, "operand of 'and'") {
			return BooleanVal(false)
		}
		return BooleanVal(asBool(in.evalExpr(e.Right), e.Line, "operand of 'and'"))
	case "or":
		if asBool(in.evalExpr(e.Left), e.Line, "operand of 'or'") {
			return BooleanVal(true)
		}
		return BooleanVal(asBool(in.evalExpr(e.Right), e.Line, "operand of 'or'"))
	}

	a := in.evalExpr(e.Left)
	b := in.evalExpr(e.Right)
	switch e.Op {
	case "+":
		return in.evalPlus(a, b, e.Line)
	case "-", "*", "/", "%":
		return evalArith(e.Op, a, b, e.Line)
	case "==":
		return BooleanVal(deepEqual(a, b))
	case "!=":
		return BooleanVal(!deepEqual(a, b))
	case ">", "<", ">=", "<=":
		return evalCompare(e.Op, a, b, e.Line)
	default:
		panic(&RuntimeError{Line: e.Line, Msg: "unhandled operator " + e.Op})
	}
}

// evalPlus implements '+' and the 'add ... into ...' statement: numeric
// addition, string concatenation (a String operand coerces the other side to
// its printed form) and list concatenation into a fresh list.
func (in *Interp) evalPlus(a, b Value, line int) Value {
	switch {
	case a.Tag == TagNumber && b.Tag == TagNumber:
		return NumberVal(a.Data.(float64) + b.Data.(float64))
	case a.Tag == TagString || b.Tag == TagString:
		return StringVal(a.Render() + b.Render())
	case a.Tag == TagList && b.Tag == TagList:
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		out := make([]Value, 0, len(ax)+len(bx))
		out = append(out, ax...)
		out = append(out, bx...)
		return ListVal(out)
	default:
		panic(&TypeError{Line: line, Msg: fmt.Sprintf("cannot add %s and %s", a.Tag, b.Tag)})
	}
}

func evalArith(op string, a, b Value, line int) Value {
	if a.Tag != TagNumber || b.Tag != TagNumber {
		panic(&TypeError{Line: line, Msg: fmt.Sprintf("cannot apply '%s' to %s and %s", op, a.Tag, b.Tag)})
	}
	x := a.Data.(float64)
	y := b.Data.(float64)
	switch op {
	case "-":
		return NumberVal(x - y)
	case "*":
		return NumberVal(x * y)
	case "/":
		if y == 0 {
			panic(&RuntimeError{Line: line, Msg: "division by zero"})
		}
		return NumberVal(x / y)
	case "%":
		if y == 0 {
			panic(&RuntimeError{Line: line, Msg: "modulo by zero"})
		}
		return NumberVal(math.Mod(x, y))
	}
	panic(&RuntimeError{Line: line, Msg: "unhandled operator " + op})
}

// evalCompare orders two Numbers or two Strings. Any other pairing is a
// TypeError: there is no implicit coercion for ordering comparisons.
func evalCompare(op string, a, b Value, line int) Value {
	var cmp int
	switch {
	case a.Tag == TagNumber && b.Tag == TagNumber:
		x, y := a.Data.(float64), b.Data.(float64)
		switch {
		case x < y:
			cmp = -1
		case x > y:
			cmp = 1
		}
	case a.Tag == TagString && b.Tag == TagString:
		x, y := a.Data.(string), b.Data.(string)
		switch {
		case x < y:
			cmp = -1
		case x > y:
			cmp = 1
		}
	default:
		panic(&TypeError{Line: line, Msg: fmt.Sprintf("cannot compare %s to %s", a.Tag, b.Tag)})
	}
	switch op {
	case ">":
		return BooleanVal(cmp > 0)
	case "<":
		return BooleanVal(cmp < 0)
	case ">=":
		return BooleanVal(cmp >= 0)
	case "<=":
		return BooleanVal(cmp <= 0)
	}
	panic(&RuntimeError{Line: line, Msg: "unhandled comparison " + op})
}

/* ===========================
   List operations
   =========================== */

// evalListOp applies map/filter/reduce. The anonymous function body runs in a
// fresh frame per element (parameters only, global fallback), the source list
// is never mutated and element order is preserved.
func (in *Interp) evalListOp(lop *ListOp) Value {
	src := asList(in.evalExpr(lop.Source), lop.Line, "'"+lop.Op+"' source")

	apply := func(args []Value) Value {
		f := &Frame{locals: make(map[string]Value, len(lop.Params))}
		for i, p := range lop.Params {
			f.locals[p] = args[i]
		}
		in.frames = append(in.frames, f)
		defer func() { in.frames = in.frames[:len(in.frames)-1] }()
		return in.evalExpr(lop.Body)
	}

	switch lop.Op {
	case "map":
		out := make([]Value, len(src))
		for i, x := range src {
			out[i] = apply([]Value{x})
		}
		return ListVal(out)
	case "filter":
		out := make([]Value, 0, len(src))
		for _, x := range src {
			if asBool(apply([]Value{x}), lop.Line, "'filter' result") {
				out = append(out, x)
			}
		}
		return ListVal(out)
	case "reduce":
		acc := in.evalExpr(lop.Init)
		for _, x := range src {
			acc = apply([]Value{acc, x})
		}
		return acc
	default:
		panic(&RuntimeError{Line: lop.Line, Msg: "unhandled list operation " + lop.Op})
	}
}
