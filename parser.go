// parser.go — the block structurer: normalized lines in, Statement tree out.
//
// OVERVIEW
// ========
// The structurer walks the logical lines produced by NormalizeLines and
// groups them into a tree of Statement nodes. Block-opening statements (if /
// else if / else, repeat, while, until, function) must end their header line
// with "{"; a bare "}" closes the innermost open block. Nesting must balance:
// a "}" with no open block and an open block at end of input both fail with a
// *ParseError*. "else if" / "else" are only legal as the logical line
// immediately after the "}" that closes the preceding if / else-if block.
//
// Expressions inside statements are parsed eagerly (expr.go), so the finished
// tree is fully structured and immutable. Both backends, the interpreter in
// interpreter_exec.go and the generator in codegen.go, share it read-only.
package jam

import (
	"fmt"
	"strings"
)

// StmtKind discriminates Statement nodes.
type StmtKind int

const (
	StmtAssign     StmtKind = iota // set x = expr / let x = expr (incl. map/filter/reduce RHS)
	StmtPrint                      // print expr
	StmtSay                        // say expr
	StmtAsk                        // ask [prompt into] var
	StmtAdd                        // add a and b into c
	StmtMultiply                   // multiply a and b into c
	StmtShow                       // length of / uppercase / lowercase / reverse / square of / sqrt of
	StmtRandom                     // random between a and b into var
	StmtChoose                     // choose from list into var
	StmtWait                       // wait seconds
	StmtIf                         // if / else if / else chain
	StmtRepeat                     // repeat n { }
	StmtWhile                      // while cond { }
	StmtUntil                      // until cond { }
	StmtFunction                   // function name(params) { }
	StmtCall                       // call name(args)
	StmtReturn                     // return [expr]
	StmtTimerStart                 // timer start
	StmtTimerStop                  // timer stop
	StmtComment                    // comment-only line (kept for the generator)
	StmtBlank                      // blank line (kept for the generator)
)

// Statement is one parsed instruction node, possibly owning nested blocks.
// Which fields are set depends on Kind; Line is always the 1-based source
// line and Comment carries any inline comment from the same line.
type Statement struct {
	Kind StmtKind
	Line int

	Target string   // into-target / assignment LHS
	Name   string   // function name for def and call
	Params []string // function parameters
	Op     string   // StmtShow sub-operation (length, uppercase, ..., sqrt)

	Expr *Expr   // main expression operand
	A, B *Expr   // add/multiply operands, random bounds
	Args []*Expr // call arguments
	List *ListOp // list-operation RHS of an assignment

	Clauses []IfClause
	Else    []*Statement
	Body    []*Statement

	Comment string
}

// IfClause is one guarded arm of an if / else-if chain.
type IfClause struct {
	Cond *Expr
	Body []*Statement
	Line int
}

// ListOp is a map/filter/reduce RHS: apply a one-parameter (two for reduce)
// anonymous function over a source list, producing a new list or a folded
// value. The source list is never mutated.
type ListOp struct {
	Op     string // "map", "filter" or "reduce"
	Params []string
	Body   *Expr
	Source *Expr
	Init   *Expr // reduce only
	Line   int
}

// Parse turns Jam source into its Statement tree.
func Parse(source string) ([]*Statement, error) {
	lines, err := NormalizeLines(source)
	if err != nil {
		return nil, err
	}
	p := &blockParser{lines: lines}
	stmts, err := p.parseStatements(false, 0)
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

type blockParser struct {
	lines []Line
	pos   int
}

func (p *blockParser) peek() (Line, bool) {
	if p.pos < len(p.lines) {
		return p.lines[p.pos], true
	}
	return Line{}, false
}

func (p *blockParser) next() Line {
	ln := p.lines[p.pos]
	p.pos++
	return ln
}

// parseStatements reads statements until end of input (top level) or until
// the bare "}" closing the current block. openLine is the line that opened
// the block, for the unmatched-brace diagnostic.
func (p *blockParser) parseStatements(inBlock bool, openLine int) ([]*Statement, error) {
	var out []*Statement
	for {
		ln, ok := p.peek()
		if !ok {
			if inBlock {
				return nil, &ParseError{Line: openLine, Msg: "missing '}' for block opened here"}
			}
			return out, nil
		}
		if ln.Text == "}" {
			if !inBlock {
				return nil, &ParseError{Line: ln.Num, Msg: "unexpected '}' with no open block"}
			}
			p.next()
			return out, nil
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
}

func (p *blockParser) parseStatement() (*Statement, error) {
	ln := p.next()
	if ln.Text == "" {
		if ln.Comment != "" {
			return &Statement{Kind: StmtComment, Line: ln.Num, Comment: ln.Comment}, nil
		}
		return &Statement{Kind: StmtBlank, Line: ln.Num}, nil
	}

	word, rest := splitWord(ln.Text)
	switch word {
	case "if":
		return p.parseIf(ln)
	case "else":
		return nil, &ParseError{Line: ln.Num, Msg: "'else' without a matching 'if'"}
	case "repeat", "while", "until":
		return p.parseLoop(ln, word, rest)
	case "function":
		return p.parseFunction(ln, rest)
	default:
		return parseSimple(ln, word, rest)
	}
}

// parseIf reads the full if / else if / else chain. Each else arm must be the
// logical line immediately after the closing "}" of the previous arm.
func (p *blockParser) parseIf(ln Line) (*Statement, error) {
	st := &Statement{Kind: StmtIf, Line: ln.Num, Comment: ln.Comment}

	_, rest := splitWord(ln.Text)
	cond, err := blockHeaderExpr(rest, ln.Num, "if")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatements(true, ln.Num)
	if err != nil {
		return nil, err
	}
	st.Clauses = append(st.Clauses, IfClause{Cond: cond, Body: body, Line: ln.Num})

	for {
		nl, ok := p.peek()
		if !ok || !strings.HasPrefix(nl.Text, "else") {
			return st, nil
		}
		p.next()
		tail := strings.TrimSpace(strings.TrimPrefix(nl.Text, "else"))
		if strings.HasPrefix(tail, "if ") || strings.HasPrefix(tail, "if{") {
			condText := strings.TrimSpace(strings.TrimPrefix(tail, "if"))
			cond, err := blockHeaderExpr(condText, nl.Num, "else if")
			if err != nil {
				return nil, err
			}
			body, err := p.parseStatements(true, nl.Num)
			if err != nil {
				return nil, err
			}
			st.Clauses = append(st.Clauses, IfClause{Cond: cond, Body: body, Line: nl.Num})
			continue
		}
		if tail != "{" {
			return nil, &ParseError{Line: nl.Num, Msg: "expected '{' after 'else'"}
		}
		if st.Else != nil {
			return nil, &ParseError{Line: nl.Num, Msg: "duplicate 'else' block"}
		}
		elseBody, err := p.parseStatements(true, nl.Num)
		if err != nil {
			return nil, err
		}
		st.Else = elseBody
		if nl2, ok := p.peek(); ok && strings.HasPrefix(nl2.Text, "else") {
			return nil, &ParseError{Line: nl2.Num, Msg: "'else' after the final 'else' block"}
		}
		return st, nil
	}
}

func (p *blockParser) parseLoop(ln Line, word, rest string) (*Statement, error) {
	kind := map[string]StmtKind{"repeat": StmtRepeat, "while": StmtWhile, "until": StmtUntil}[word]
	expr, err := blockHeaderExpr(rest, ln.Num, word)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatements(true, ln.Num)
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: kind, Line: ln.Num, Expr: expr, Body: body, Comment: ln.Comment}, nil
}

func (p *blockParser) parseFunction(ln Line, rest string) (*Statement, error) {
	header, ok := strings.CutSuffix(strings.TrimSpace(rest), "{")
	if !ok {
		return nil, &ParseError{Line: ln.Num, Msg: "expected '{' at end of function header"}
	}
	header = strings.TrimSpace(header)
	name, paramPart := splitWord(header)
	paramPart = strings.TrimSpace(paramPart)
	if open := strings.Index(name, "("); open >= 0 {
		// "greet(name)" with no space before the paren.
		paramPart = name[open:] + paramPart
		name = name[:open]
	}
	if !isIdentifier(name) {
		return nil, &ParseError{Line: ln.Num, Msg: "expected a function name after 'function'"}
	}
	// Parameter list is optional: "function tick {" declares zero parameters.
	var params []string
	if paramPart != "" {
		inner, ok := strings.CutPrefix(paramPart, "(")
		if !ok {
			return nil, &ParseError{Line: ln.Num, Msg: "expected '(' before function parameters"}
		}
		inner, ok = strings.CutSuffix(inner, ")")
		if !ok {
			return nil, &ParseError{Line: ln.Num, Msg: "missing ')' after function parameters"}
		}
		inner = strings.TrimSpace(inner)
		if inner != "" {
			for _, part := range strings.Split(inner, ",") {
				prm := strings.TrimSpace(part)
				if !isIdentifier(prm) {
					return nil, &ParseError{Line: ln.Num, Msg: fmt.Sprintf("invalid parameter name %q", prm)}
				}
				params = append(params, prm)
			}
		}
	}
	body, err := p.parseStatements(true, ln.Num)
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: StmtFunction, Line: ln.Num, Name: name, Params: params, Body: body, Comment: ln.Comment}, nil
}

/* ===========================
   Simple (non-block) statements
   =========================== */

func parseSimple(ln Line, word, rest string) (*Statement, error) {
	st := &Statement{Line: ln.Num, Comment: ln.Comment}
	var err error
	switch word {
	case "set", "let":
		st.Kind = StmtAssign
		err = parseAssign(st, rest)
	case "print":
		st.Kind = StmtPrint
		st.Expr, err = requireExpr(rest, ln.Num, "print")
	case "say":
		st.Kind = StmtSay
		st.Expr, err = requireExpr(rest, ln.Num, "say")
	case "ask":
		st.Kind = StmtAsk
		err = parseAsk(st, rest)
	case "add":
		st.Kind = StmtAdd
		err = parseIntoPair(st, rest, "add")
	case "multiply":
		st.Kind = StmtMultiply
		err = parseIntoPair(st, rest, "multiply")
	case "length", "square", "sqrt":
		st.Kind = StmtShow
		st.Op = word
		operand, ok := strings.CutPrefix(rest, "of ")
		if !ok {
			return nil, &ParseError{Line: ln.Num, Msg: fmt.Sprintf("expected 'of' after '%s'", word)}
		}
		st.Expr, err = requireExpr(operand, ln.Num, word)
	case "uppercase", "lowercase", "reverse":
		st.Kind = StmtShow
		st.Op = word
		st.Expr, err = requireExpr(rest, ln.Num, word)
	case "random":
		st.Kind = StmtRandom
		err = parseRandom(st, rest)
	case "choose":
		st.Kind = StmtChoose
		err = parseChoose(st, rest)
	case "wait":
		st.Kind = StmtWait
		st.Expr, err = requireExpr(rest, ln.Num, "wait")
	case "call":
		st.Kind = StmtCall
		err = parseCall(st, rest)
	case "return":
		st.Kind = StmtReturn
		if strings.TrimSpace(rest) != "" {
			st.Expr, err = parseExprString(rest, ln.Num)
		}
	case "timer":
		switch strings.TrimSpace(rest) {
		case "start":
			st.Kind = StmtTimerStart
		case "stop":
			st.Kind = StmtTimerStop
		default:
			return nil, &ParseError{Line: ln.Num, Msg: "expected 'timer start' or 'timer stop'"}
		}
	default:
		return nil, &ParseError{Line: ln.Num, Msg: fmt.Sprintf("unknown statement %q", word)}
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func parseAssign(st *Statement, rest string) error {
	eq := findAssignEquals(rest)
	if eq < 0 {
		return &ParseError{Line: st.Line, Msg: "expected '=' in assignment"}
	}
	name := strings.TrimSpace(rest[:eq])
	if !isIdentifier(name) {
		return &ParseError{Line: st.Line, Msg: fmt.Sprintf("invalid variable name %q", name)}
	}
	st.Target = name
	rhs := strings.TrimSpace(rest[eq+1:])

	word, _ := splitWord(rhs)
	if word == "map" || word == "filter" || word == "reduce" {
		lop, err := parseListOp(rhs, st.Line)
		if err != nil {
			return err
		}
		st.List = lop
		return nil
	}
	expr, err := parseExprString(rhs, st.Line)
	if err != nil {
		return err
	}
	st.Expr = expr
	return nil
}

// parseListOp parses "map (x) => body over src", "filter ... over src" and
// "reduce (acc, x) => body over src from init".
func parseListOp(rhs string, line int) (*ListOp, error) {
	op, rest := splitWord(rhs)
	lop := &ListOp{Op: op, Line: line}

	if op == "reduce" {
		fromIdx := strings.LastIndex(rest, " from ")
		if fromIdx < 0 {
			return nil, &ParseError{Line: line, Msg: "reduce needs 'from <initial value>'"}
		}
		init, err := parseExprString(rest[fromIdx+len(" from "):], line)
		if err != nil {
			return nil, err
		}
		lop.Init = init
		rest = rest[:fromIdx]
	}

	overIdx := strings.LastIndex(rest, " over ")
	if overIdx < 0 {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("%s needs 'over <list>'", op)}
	}
	src, err := parseExprString(rest[overIdx+len(" over "):], line)
	if err != nil {
		return nil, err
	}
	lop.Source = src

	lambda := strings.TrimSpace(rest[:overIdx])
	arrow := strings.Index(lambda, "=>")
	if arrow < 0 {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("%s needs an anonymous function '(x) => expr'", op)}
	}
	paramsText := strings.TrimSpace(lambda[:arrow])
	paramsText = strings.TrimPrefix(paramsText, "(")
	paramsText = strings.TrimSuffix(paramsText, ")")
	for _, part := range strings.Split(paramsText, ",") {
		prm := strings.TrimSpace(part)
		if !isIdentifier(prm) {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("invalid parameter name %q", prm)}
		}
		lop.Params = append(lop.Params, prm)
	}
	want := 1
	if op == "reduce" {
		want = 2
	}
	if len(lop.Params) != want {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("%s takes %d parameter(s), got %d", op, want, len(lop.Params))}
	}
	body, err := parseExprString(strings.TrimSpace(lambda[arrow+2:]), line)
	if err != nil {
		return nil, err
	}
	lop.Body = body
	return lop, nil
}

func parseAsk(st *Statement, rest string) error {
	rest = strings.TrimSpace(rest)
	if idx := strings.LastIndex(rest, " into "); idx >= 0 {
		prompt, err := parseExprString(rest[:idx], st.Line)
		if err != nil {
			return err
		}
		target := strings.TrimSpace(rest[idx+len(" into "):])
		if !isIdentifier(target) {
			return &ParseError{Line: st.Line, Msg: fmt.Sprintf("invalid variable name %q", target)}
		}
		st.Expr = prompt
		st.Target = target
		return nil
	}
	if !isIdentifier(rest) {
		return &ParseError{Line: st.Line, Msg: "expected 'ask <prompt> into <var>' or 'ask <var>'"}
	}
	st.Target = rest
	return nil
}

// parseIntoPair handles the natural-language arithmetic forms
// "add a and b into c" / "multiply a and b into c".
func parseIntoPair(st *Statement, rest, verb string) error {
	andIdx := strings.Index(rest, " and ")
	if andIdx < 0 {
		return &ParseError{Line: st.Line, Msg: fmt.Sprintf("expected '%s <a> and <b> into <c>'", verb)}
	}
	intoIdx := strings.LastIndex(rest, " into ")
	if intoIdx < 0 || intoIdx < andIdx {
		return &ParseError{Line: st.Line, Msg: fmt.Sprintf("expected 'into' in '%s' statement", verb)}
	}
	a, err := parseExprString(rest[:andIdx], st.Line)
	if err != nil {
		return err
	}
	b, err := parseExprString(rest[andIdx+len(" and "):intoIdx], st.Line)
	if err != nil {
		return err
	}
	target := strings.TrimSpace(rest[intoIdx+len(" into "):])
	if !isIdentifier(target) {
		return &ParseError{Line: st.Line, Msg: fmt.Sprintf("invalid variable name %q", target)}
	}
	st.A, st.B, st.Target = a, b, target
	return nil
}

func parseRandom(st *Statement, rest string) error {
	body, ok := strings.CutPrefix(rest, "between ")
	if !ok {
		return &ParseError{Line: st.Line, Msg: "expected 'random between <a> and <b> into <var>'"}
	}
	return parseIntoPair(st, body, "random between")
}

func parseChoose(st *Statement, rest string) error {
	body, ok := strings.CutPrefix(rest, "from ")
	if !ok {
		return &ParseError{Line: st.Line, Msg: "expected 'choose from <list> into <var>'"}
	}
	intoIdx := strings.LastIndex(body, " into ")
	if intoIdx < 0 {
		return &ParseError{Line: st.Line, Msg: "expected 'into' in 'choose' statement"}
	}
	src, err := parseExprString(body[:intoIdx], st.Line)
	if err != nil {
		return err
	}
	target := strings.TrimSpace(body[intoIdx+len(" into "):])
	if !isIdentifier(target) {
		return &ParseError{Line: st.Line, Msg: fmt.Sprintf("invalid variable name %q", target)}
	}
	st.Expr = src
	st.Target = target
	return nil
}

func parseCall(st *Statement, rest string) error {
	expr, err := parseExprString(rest, st.Line)
	if err != nil {
		return err
	}
	switch expr.Kind {
	case ExprCall:
		st.Name = expr.Name
		st.Args = expr.Items
	case ExprVar:
		st.Name = expr.Name
	default:
		return &ParseError{Line: st.Line, Msg: "expected a function name after 'call'"}
	}
	return nil
}

/* ===========================
   Small helpers
   =========================== */

// splitWord splits off the first space-delimited word.
func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx], strings.TrimSpace(s[idx+1:])
	}
	return s, ""
}

// blockHeaderExpr strips the trailing "{" from a block header and parses the
// remaining text as the guard/count expression.
func blockHeaderExpr(rest string, line int, kw string) (*Expr, error) {
	header, ok := strings.CutSuffix(strings.TrimSpace(rest), "{")
	if !ok {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("expected '{' at end of '%s' line", kw)}
	}
	return requireExpr(header, line, kw)
}

func requireExpr(text string, line int, kw string) (*Expr, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("'%s' needs an expression", kw)}
	}
	return parseExprString(text, line)
}

// findAssignEquals locates the assignment '=' in "name = rhs", skipping the
// two-character operators (==, !=, >=, <=, =>) that may appear in the RHS.
func findAssignEquals(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>", rune(s[i-1])) {
			continue
		}
		if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
			i++
			continue
		}
		return i
	}
	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if i > 0 && !isIdentPart(r) {
			return false
		}
	}
	switch s {
	case "true", "false", "and", "or", "not":
		return false
	}
	return true
}
