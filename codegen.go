// codegen.go — the JavaScript generator (transpiler backend).
//
// Walks the same immutable Statement tree as the interpreter and emits
// equivalent JavaScript without evaluating anything. Expressions are
// re-rendered by lexical translation: operator mapping (and → &&, == → ===),
// call mapping through the shared builtin table, and precedence-aware
// parenthesization. Indentation follows block depth and comment lines /
// inline comments are preserved next to the statements they annotate.
//
// A statement with no JavaScript mapping (ask, wait) or one blocked by the
// safety profile aborts only its own emission: the failure is recorded as a
// Diagnostic and annotated inline as a comment, and generation continues with
// the next statement.
//
// Where the interpreter's rendering of a value differs from JavaScript's
// (lists, mixed concatenation), the generator leans on small emitted helpers
// (__jamShow and friends, see builtins.go) so the *executed* output of the
// generated program matches the interpreter's output buffer.
package jam

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// GenerateJS renders prog as JavaScript. Diagnostics carry one entry per
// statement that could not be emitted; the generated text is still returned.
func GenerateJS(prog []*Statement, opts Options) (string, []Diagnostic) {
	g := &generator{
		profile:  opts.Safety,
		declared: []map[string]bool{{}},
		helpers:  map[string]bool{},
		funcs:    map[string]bool{},
	}
	collectFunctionNames(prog, g.funcs)
	g.emitBlock(prog, 0)

	var b strings.Builder
	for _, h := range g.neededHelpers() {
		b.WriteString(jsHelperSource[h])
		b.WriteByte('\n')
	}
	if b.Len() > 0 && len(g.lines) > 0 {
		b.WriteByte('\n')
	}
	for i, ln := range g.lines {
		b.WriteString(ln)
		if i < len(g.lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), g.diags
}

type generator struct {
	lines    []string
	diags    []Diagnostic
	profile  *SafetyProfile
	declared []map[string]bool // scope stack for let-vs-assign
	helpers  map[string]bool
	funcs    map[string]bool // user-defined function names, any depth
	tmp      int             // unique suffix for generated loop variables
}

func collectFunctionNames(stmts []*Statement, into map[string]bool) {
	for _, st := range stmts {
		if st.Kind == StmtFunction {
			into[st.Name] = true
		}
		for _, cl := range st.Clauses {
			collectFunctionNames(cl.Body, into)
		}
		collectFunctionNames(st.Else, into)
		collectFunctionNames(st.Body, into)
	}
}

func (g *generator) emit(depth int, line string) {
	if line == "" {
		g.lines = append(g.lines, "")
		return
	}
	g.lines = append(g.lines, strings.Repeat("  ", depth)+line)
}

// emitBlock emits each statement, converting a per-statement failure into an
// inline annotation plus a Diagnostic instead of aborting the file.
func (g *generator) emitBlock(stmts []*Statement, depth int) {
	for _, st := range stmts {
		g.emitStatementSafe(st, depth)
	}
}

func (g *generator) emitStatementSafe(st *Statement, depth int) {
	scopes := len(g.declared)
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok || !engineError(err) {
				panic(r)
			}
			g.declared = g.declared[:scopes]
			d := diagnose(err)
			g.diags = append(g.diags, d)
			g.emit(depth, "// "+annotation(d))
		}
	}()
	g.emitStatement(st, depth)
}

func annotation(d Diagnostic) string {
	if d.Kind == "SafetyError" {
		return "blocked by safety profile: " + d.Msg
	}
	return "unsupported: " + d.Msg
}

// guard mirrors Interp.guard for the generator path: disallowed operations
// fail with SafetyError before any code for them is emitted.
func (g *generator) guard(op string, line int) {
	if g.profile != nil && !g.profile.Allows(op) {
		panic(&SafetyError{Line: line, Msg: "operation '" + op + "' is not allowed by safety profile '" + g.profile.Name + "'"})
	}
}

func (g *generator) emitStatement(st *Statement, depth int) {
	switch st.Kind {
	case StmtBlank:
		g.emit(depth, "")

	case StmtComment:
		g.emit(depth, commentToJS(st.Comment))

	case StmtAssign:
		var rhs string
		if st.List != nil {
			rhs = g.renderListOp(st.List)
		} else {
			rhs = g.render(st.Expr)
		}
		g.emitLine(depth, g.assign(st.Target, rhs), st)

	case StmtPrint:
		g.emitLine(depth, "console.log("+g.renderShown(st.Expr)+");", st)

	case StmtSay:
		g.guard("say", st.Line)
		g.emitLine(depth, "console.log(\"(say): \" + "+g.renderShown(st.Expr)+");", st)

	case StmtAsk:
		panic(&UnsupportedConstructError{Line: st.Line, Msg: "'ask' has no JavaScript mapping"})

	case StmtAdd:
		g.emitLine(depth, g.assign(st.Target, g.renderChild(st.A, opPrec("+"), false)+" + "+g.renderChild(st.B, opPrec("+"), true)), st)

	case StmtMultiply:
		g.emitLine(depth, g.assign(st.Target, g.renderChild(st.A, opPrec("*"), false)+" * "+g.renderChild(st.B, opPrec("*"), true)), st)

	case StmtShow:
		g.guard(st.Op, st.Line)
		b := builtins[st.Op]
		if b == nil || b.JS == nil {
			panic(&UnsupportedConstructError{Line: st.Line, Msg: "'" + st.Op + "' has no JavaScript mapping"})
		}
		g.useHelpers(b)
		g.emitLine(depth, "console.log("+b.JS([]string{g.renderAtom(st.Expr)})+");", st)

	case StmtRandom:
		g.guard("random", st.Line)
		b := builtins["random"]
		g.useHelpers(b)
		g.emitLine(depth, g.assign(st.Target, b.JS([]string{g.renderAtom(st.A), g.renderAtom(st.B)})), st)

	case StmtChoose:
		g.guard("choose", st.Line)
		b := builtins["choose"]
		g.useHelpers(b)
		g.emitLine(depth, g.assign(st.Target, b.JS([]string{g.renderAtom(st.Expr)})), st)

	case StmtWait:
		g.guard("wait", st.Line)
		panic(&UnsupportedConstructError{Line: st.Line, Msg: "'wait' has no JavaScript mapping"})

	case StmtIf:
		// Render every guard before the first line is appended: a failing
		// guard in a later clause must drop the whole statement, not leave
		// an unbalanced construct behind.
		conds := make([]string, len(st.Clauses))
		for i, cl := range st.Clauses {
			conds[i] = g.render(cl.Cond)
		}
		for i, cl := range st.Clauses {
			kw := "if"
			if i > 0 {
				kw = "} else if"
			}
			g.emit(depth, kw+" ("+conds[i]+") {")
			g.pushScope()
			g.emitBlock(cl.Body, depth+1)
			g.popScope()
		}
		if st.Else != nil {
			g.emit(depth, "} else {")
			g.pushScope()
			g.emitBlock(st.Else, depth+1)
			g.popScope()
		}
		g.emit(depth, "}")

	case StmtRepeat:
		v := fmt.Sprintf("_i%d", g.tmp)
		n := fmt.Sprintf("_n%d", g.tmp)
		g.tmp++
		if wholeLiteral(st.Expr) {
			g.emit(depth, "for (let "+v+" = 0; "+v+" < "+g.renderAtom(st.Expr)+"; "+v+"++) {")
		} else {
			// Dynamic counts are validated and evaluated once, matching the
			// interpreter's whole-number check and single evaluation.
			g.helpers["__jamCount"] = true
			g.emit(depth, "for (let "+v+" = 0, "+n+" = __jamCount("+g.renderAtom(st.Expr)+"); "+v+" < "+n+"; "+v+"++) {")
		}
		g.pushScope()
		g.emitBlock(st.Body, depth+1)
		g.popScope()
		g.emit(depth, "}")

	case StmtWhile:
		g.emit(depth, "while ("+g.render(st.Expr)+") {")
		g.pushScope()
		g.emitBlock(st.Body, depth+1)
		g.popScope()
		g.emit(depth, "}")

	case StmtUntil:
		g.emit(depth, "while (!("+g.render(st.Expr)+")) {")
		g.pushScope()
		g.emitBlock(st.Body, depth+1)
		g.popScope()
		g.emit(depth, "}")

	case StmtFunction:
		g.emit(depth, "function "+st.Name+"("+strings.Join(st.Params, ", ")+") {")
		g.pushScope()
		for _, p := range st.Params {
			g.declared[len(g.declared)-1][p] = true
		}
		g.emitBlock(st.Body, depth+1)
		g.popScope()
		g.emit(depth, "}")

	case StmtCall:
		args := make([]string, len(st.Args))
		for i, a := range st.Args {
			args[i] = g.render(a)
		}
		g.emitLine(depth, st.Name+"("+strings.Join(args, ", ")+");", st)

	case StmtReturn:
		if st.Expr != nil {
			g.emitLine(depth, "return "+g.render(st.Expr)+";", st)
		} else {
			g.emitLine(depth, "return;", st)
		}

	case StmtTimerStart:
		g.guard("timer", st.Line)
		g.emitLine(depth, g.assign("_timerStart", "Date.now()"), st)

	case StmtTimerStop:
		g.guard("timer", st.Line)
		g.emitLine(depth, `console.log("Time elapsed: " + ((Date.now() - _timerStart) / 1000).toFixed(2) + " seconds");`, st)

	default:
		panic(&UnsupportedConstructError{Line: st.Line, Msg: fmt.Sprintf("statement kind %d has no JavaScript mapping", st.Kind)})
	}
}

// emitLine appends the statement's inline comment, if any.
func (g *generator) emitLine(depth int, code string, st *Statement) {
	if st.Comment != "" {
		code += " " + commentToJS(st.Comment)
	}
	g.emit(depth, code)
}

func commentToJS(comment string) string {
	return "//" + strings.TrimPrefix(comment, "#")
}

/* ===========================
   Scopes and declarations
   =========================== */

func (g *generator) pushScope() { g.declared = append(g.declared, map[string]bool{}) }
func (g *generator) popScope()  { g.declared = g.declared[:len(g.declared)-1] }

// assign renders "let name = rhs;" the first time a name is bound in the
// visible scope chain and a plain assignment afterwards, keeping re-bindings
// legal JavaScript.
func (g *generator) assign(name, rhs string) string {
	for _, scope := range g.declared {
		if scope[name] {
			return name + " = " + rhs + ";"
		}
	}
	g.declared[len(g.declared)-1][name] = true
	return "let " + name + " = " + rhs + ";"
}

func (g *generator) useHelpers(b *Builtin) {
	for _, h := range b.Helpers {
		g.helpers[h] = true
	}
}

// neededHelpers returns the used helpers plus their dependencies, in a fixed
// emission order.
func (g *generator) neededHelpers() []string {
	need := map[string]bool{}
	var add func(h string)
	add = func(h string) {
		if need[h] {
			return
		}
		for _, dep := range jsHelperDeps[h] {
			add(dep)
		}
		need[h] = true
	}
	for h := range g.helpers {
		add(h)
	}
	out := make([]string, 0, len(need))
	for h := range need {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

/* ===========================
   Expression rendering
   =========================== */

var jsOp = map[string]string{
	"and": "&&", "or": "||", "==": "===", "!=": "!==",
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%",
	">": ">", "<": "<", ">=": ">=", "<=": "<=",
}

func (g *generator) render(e *Expr) string {
	switch e.Kind {
	case ExprNumber:
		return formatNumber(e.Num)
	case ExprString:
		return strconv.Quote(e.Str)
	case ExprBoolean:
		if e.Bool {
			return "true"
		}
		return "false"
	case ExprList:
		parts := make([]string, len(e.Items))
		for i, item := range e.Items {
			parts[i] = g.render(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ExprVar:
		return e.Name
	case ExprCall:
		return g.renderCall(e)
	case ExprUnary:
		if e.Op == "not" {
			return "!(" + g.render(e.Left) + ")"
		}
		return "-" + g.renderChild(e.Left, 7, false)
	case ExprBinary:
		if e.Op == "==" || e.Op == "!=" {
			return g.renderEquality(e)
		}
		prec := opPrec(e.Op)
		return g.renderChild(e.Left, prec, false) + " " + jsOp[e.Op] + " " + g.renderChild(e.Right, prec, true)
	default:
		panic(&UnsupportedConstructError{Line: e.Line, Msg: fmt.Sprintf("expression kind %d has no JavaScript mapping", e.Kind)})
	}
}

// wholeLiteral reports whether e is a literal non-negative whole number, the
// one case where a repeat count needs no runtime validation.
func wholeLiteral(e *Expr) bool {
	return e.Kind == ExprNumber && e.Num >= 0 && e.Num == math.Trunc(e.Num)
}

// renderEquality renders == / !=. Plain === matches the interpreter's
// deepEqual whenever at least one side cannot be a list; otherwise the
// comparison goes through __jamEq so lists compare structurally.
func (g *generator) renderEquality(e *Expr) string {
	if staticallyScalar(e.Left) || staticallyScalar(e.Right) {
		prec := opPrec(e.Op)
		return g.renderChild(e.Left, prec, false) + " " + jsOp[e.Op] + " " + g.renderChild(e.Right, prec, true)
	}
	g.helpers["__jamEq"] = true
	call := "__jamEq(" + g.render(e.Left) + ", " + g.render(e.Right) + ")"
	if e.Op == "!=" {
		return "!" + call
	}
	return call
}

// staticallyScalar reports whether e can never evaluate to a list. Unary
// operators yield numbers or booleans; every binary operator except list
// concatenation ('+' over two lists) yields a scalar.
func staticallyScalar(e *Expr) bool {
	switch e.Kind {
	case ExprNumber, ExprString, ExprBoolean, ExprUnary:
		return true
	case ExprBinary:
		if e.Op == "+" {
			return staticallyScalar(e.Left) || staticallyScalar(e.Right)
		}
		return true
	}
	return false
}

// renderChild parenthesizes a subexpression when its operator binds looser
// than the parent, or equally on the right of a non-commutative operator.
func (g *generator) renderChild(e *Expr, parentPrec int, right bool) string {
	text := g.render(e)
	childPrec := 8
	switch e.Kind {
	case ExprBinary:
		childPrec = opPrec(e.Op)
	case ExprUnary:
		childPrec = 7
	}
	if childPrec < parentPrec || (childPrec == parentPrec && right) {
		return "(" + text + ")"
	}
	return text
}

// renderAtom renders an expression for splicing into a generated template,
// parenthesizing anything that is not already atomic.
func (g *generator) renderAtom(e *Expr) string {
	switch e.Kind {
	case ExprNumber, ExprString, ExprBoolean, ExprList, ExprVar, ExprCall:
		return g.render(e)
	default:
		return "(" + g.render(e) + ")"
	}
}

// renderCall maps user functions to direct calls and built-ins through the
// shared table's JS renderers.
func (g *generator) renderCall(e *Expr) string {
	args := make([]string, len(e.Items))
	for i, a := range e.Items {
		args[i] = g.render(a)
	}
	if g.funcs[e.Name] {
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	}
	b, ok := builtins[e.Name]
	if !ok {
		// Undefined either way; emit a direct call so the JS failure mirrors
		// the interpreter's NameError.
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	}
	g.guard(e.Name, e.Line)
	if b.JS == nil {
		panic(&UnsupportedConstructError{Line: e.Line, Msg: "'" + e.Name + "' has no JavaScript mapping"})
	}
	g.useHelpers(b)
	return b.JS(args)
}

// renderShown wraps an expression for printing: scalar literals and plain
// string/number concatenations print identically in both runtimes, anything
// else goes through __jamShow so lists render as "[a, b, c]".
func (g *generator) renderShown(e *Expr) string {
	if scalarRendering(e) {
		return g.render(e)
	}
	g.helpers["__jamShow"] = true
	return "__jamShow(" + g.render(e) + ")"
}

// scalarRendering reports whether the rendered JS value prints byte-identical
// to the interpreter's Value.Render without help.
func scalarRendering(e *Expr) bool {
	switch e.Kind {
	case ExprNumber, ExprString, ExprBoolean:
		return true
	case ExprBinary:
		if e.Op == "+" {
			return scalarRendering(e.Left) && scalarRendering(e.Right)
		}
	}
	return false
}

/* ===========================
   map / filter / reduce
   =========================== */

func (g *generator) renderListOp(lop *ListOp) string {
	src := g.renderAtom(lop.Source)
	params := strings.Join(lop.Params, ", ")
	body := g.render(lop.Body)
	switch lop.Op {
	case "map":
		return src + ".map((" + params + ") => " + body + ")"
	case "filter":
		return src + ".filter((" + params + ") => " + body + ")"
	case "reduce":
		return src + ".reduce((" + params + ") => " + body + ", " + g.render(lop.Init) + ")"
	default:
		panic(&UnsupportedConstructError{Line: lop.Line, Msg: "'" + lop.Op + "' has no JavaScript mapping"})
	}
}
