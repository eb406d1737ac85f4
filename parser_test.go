package jam

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// mustParse parses source or fails the test.
func mustParse(t *testing.T, src string) []*Statement {
	t.Helper()
	prog, err := Parse(src)
	be.Err(t, err, nil)
	return prog
}

// parseFail parses source expecting a *ParseError and returns it.
func parseFail(t *testing.T, src string) *ParseError {
	t.Helper()
	_, err := Parse(src)
	var pe *ParseError
	be.True(t, asErr(err, &pe))
	return pe
}

func TestStatementKinds(t *testing.T) {
	src := `set x = 1
print x
say "hi"
ask "name?" into n
add 1 and 2 into s
multiply 2 and 3 into p
length of x
random between 1 and 6 into d
choose from [1, 2] into c
wait 1
call f()
timer start
timer stop`
	prog := mustParse(t, src)
	kinds := make([]StmtKind, len(prog))
	for i, st := range prog {
		kinds[i] = st.Kind
	}
	be.Equal(t, kinds, []StmtKind{
		StmtAssign, StmtPrint, StmtSay, StmtAsk, StmtAdd, StmtMultiply,
		StmtShow, StmtRandom, StmtChoose, StmtWait, StmtCall,
		StmtTimerStart, StmtTimerStop,
	})
}

func TestLinesAndComments(t *testing.T) {
	prog := mustParse(t, "set x = 1  # init\n\n# standalone\nprint x")
	be.Equal(t, len(prog), 4)
	be.Equal(t, prog[0].Comment, "# init")
	be.Equal(t, prog[1].Kind, StmtBlank)
	be.Equal(t, prog[2].Kind, StmtComment)
	be.Equal(t, prog[2].Comment, "# standalone")
	be.Equal(t, prog[3].Line, 4)
}

func TestDeepNesting(t *testing.T) {
	// A pathological nesting depth must still balance.
	const depth = 200
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString("if true {\n")
	}
	b.WriteString("print 1\n")
	for i := 0; i < depth; i++ {
		b.WriteString("}\n")
	}
	prog := mustParse(t, b.String())
	be.Equal(t, len(prog), 2) // if-chain plus the trailing blank line

	st := prog[0]
	for i := 0; i < depth-1; i++ {
		be.Equal(t, st.Kind, StmtIf)
		st = st.Clauses[0].Body[0]
	}
}

func TestUnmatchedBraces(t *testing.T) {
	pe := parseFail(t, "print 1\n}")
	be.Equal(t, pe.Line, 2)
	be.True(t, strings.Contains(pe.Msg, "unexpected '}'"))

	pe = parseFail(t, "if true {\nprint 1")
	be.Equal(t, pe.Line, 1) // points at the opener
	be.True(t, strings.Contains(pe.Msg, "missing '}'"))
}

func TestElsePlacement(t *testing.T) {
	// else must follow the closing brace immediately.
	pe := parseFail(t, "else {\n}")
	be.True(t, strings.Contains(pe.Msg, "'else' without a matching 'if'"))

	pe = parseFail(t, "if true {\n} else {\n} else {\n}")
	be.True(t, strings.Contains(pe.Msg, "'else' after the final 'else' block"))

	pe = parseFail(t, "if true {\n} else\n")
	be.True(t, strings.Contains(pe.Msg, "expected '{' after 'else'"))
}

func TestIfChainShape(t *testing.T) {
	prog := mustParse(t, `if a {
    print 1
} else if b {
    print 2
} else if c {
    print 3
} else {
    print 4
}`)
	be.Equal(t, len(prog), 1)
	st := prog[0]
	be.Equal(t, st.Kind, StmtIf)
	be.Equal(t, len(st.Clauses), 3)
	be.Equal(t, len(st.Else), 1)
}

func TestFunctionHeaders(t *testing.T) {
	// Spaced and glued parameter lists, and the no-parameter form.
	prog := mustParse(t, `function greet(name) {
}
function add (a, b) {
}
function tick {
}`)
	be.Equal(t, prog[0].Name, "greet")
	be.Equal(t, prog[0].Params, []string{"name"})
	be.Equal(t, prog[1].Name, "add")
	be.Equal(t, prog[1].Params, []string{"a", "b"})
	be.Equal(t, prog[2].Name, "tick")
	be.Equal(t, len(prog[2].Params), 0)
}

func TestFunctionHeaderErrors(t *testing.T) {
	pe := parseFail(t, "function {\n}")
	be.True(t, strings.Contains(pe.Msg, "function name"))

	pe = parseFail(t, "function f(a {\n}")
	be.True(t, strings.Contains(pe.Msg, "missing ')'"))

	pe = parseFail(t, "function f(1x) {\n}")
	be.True(t, strings.Contains(pe.Msg, "invalid parameter name"))

	pe = parseFail(t, "function f(a)")
	be.True(t, strings.Contains(pe.Msg, "expected '{'"))
}

func TestLoopHeaders(t *testing.T) {
	prog := mustParse(t, `repeat 3 {
}
while x > 0 {
}
until done {
}`)
	be.Equal(t, prog[0].Kind, StmtRepeat)
	be.Equal(t, prog[1].Kind, StmtWhile)
	be.Equal(t, prog[2].Kind, StmtUntil)

	pe := parseFail(t, "while x > 0\nprint 1")
	be.True(t, strings.Contains(pe.Msg, "expected '{' at end of 'while' line"))
}

func TestAssignForms(t *testing.T) {
	prog := mustParse(t, `set x = 1
let y = x == 2
set z = map (n) => n * 2 over xs`)
	be.Equal(t, prog[0].Target, "x")
	// '==' in the RHS must not be mistaken for the assignment '='.
	be.Equal(t, prog[1].Target, "y")
	be.Equal(t, prog[1].Expr.Op, "==")
	be.Equal(t, prog[2].List.Op, "map")

	pe := parseFail(t, "set 1x = 2")
	be.True(t, strings.Contains(pe.Msg, "invalid variable name"))

	pe = parseFail(t, "set x")
	be.True(t, strings.Contains(pe.Msg, "expected '='"))
}

func TestKeywordsAreNotIdentifiers(t *testing.T) {
	pe := parseFail(t, "set true = 1")
	be.True(t, strings.Contains(pe.Msg, "invalid variable name"))
}

func TestListOpParsing(t *testing.T) {
	prog := mustParse(t, `set r = reduce (acc, n) => acc + n over nums from 0`)
	lop := prog[0].List
	be.Equal(t, lop.Op, "reduce")
	be.Equal(t, lop.Params, []string{"acc", "n"})
	be.True(t, lop.Init != nil)

	pe := parseFail(t, "set r = reduce (acc, n) => acc + n over nums")
	be.True(t, strings.Contains(pe.Msg, "'from <initial value>'"))

	pe = parseFail(t, "set r = map (a, b) => a over nums")
	be.True(t, strings.Contains(pe.Msg, "map takes 1 parameter(s), got 2"))

	pe = parseFail(t, "set r = filter nums")
	be.True(t, strings.Contains(pe.Msg, "'over <list>'"))
}

func TestAskForms(t *testing.T) {
	prog := mustParse(t, `ask "Your name?" into name
ask age`)
	be.Equal(t, prog[0].Target, "name")
	be.True(t, prog[0].Expr != nil)
	be.Equal(t, prog[1].Target, "age")
	be.True(t, prog[1].Expr == nil)

	pe := parseFail(t, `ask "no target"`)
	be.True(t, strings.Contains(pe.Msg, "expected 'ask"))
}

func TestIntoPairForms(t *testing.T) {
	prog := mustParse(t, `add x + 1 and y * 2 into z`)
	be.Equal(t, prog[0].A.Op, "+")
	be.Equal(t, prog[0].B.Op, "*")
	be.Equal(t, prog[0].Target, "z")

	pe := parseFail(t, "add 1 and 2")
	be.True(t, strings.Contains(pe.Msg, "expected 'into'"))

	pe = parseFail(t, "random 1 and 6 into d")
	be.True(t, strings.Contains(pe.Msg, "random between"))
}

func TestCallForms(t *testing.T) {
	prog := mustParse(t, `call tick
call greet("Bo", 2)`)
	be.Equal(t, prog[0].Name, "tick")
	be.Equal(t, len(prog[0].Args), 0)
	be.Equal(t, prog[1].Name, "greet")
	be.Equal(t, len(prog[1].Args), 2)

	pe := parseFail(t, "call 1 + 2")
	be.True(t, strings.Contains(pe.Msg, "expected a function name"))
}

func TestUnknownStatement(t *testing.T) {
	pe := parseFail(t, "frobnicate x")
	be.Equal(t, pe.Msg, `unknown statement "frobnicate"`)

	pe = parseFail(t, "timer pause")
	be.True(t, strings.Contains(pe.Msg, "'timer start' or 'timer stop'"))
}

func TestShowRequiresOf(t *testing.T) {
	pe := parseFail(t, "length x")
	be.True(t, strings.Contains(pe.Msg, "expected 'of' after 'length'"))
}
