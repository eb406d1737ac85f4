// expr.go — the expression sublanguage: AST and recursive-descent parser.
//
// Expressions are parsed once, at block-structuring time, into a small AST
// shared read-only by both backends: the interpreter evaluates it (see
// interpreter_exec.go) and the generator re-renders it as JavaScript (see
// codegen.go).
// There is no host eval anywhere; only the sanctioned grammar below executes.
//
// Precedence, lowest to highest:
//
//	or  <  and  <  not  <  > < >= <= == !=  <  + -  <  * / %  <  unary -  <  call/primary
//
// Comparison operators are left-associative like the arithmetic ones; mixing
// them rarely makes sense and typically fails with a TypeError at run time
// (booleans do not order).
package jam

import "fmt"

type ExprKind int

const (
	ExprNumber ExprKind = iota
	ExprString
	ExprBoolean
	ExprList
	ExprVar
	ExprCall
	ExprUnary  // "-" or "not"
	ExprBinary // arithmetic, comparison, and/or
)

// Expr is one expression node. Which fields are meaningful depends on Kind:
// Num/Str/Bool for literals, Name for variables and call targets, Items for
// list elements and call arguments, Op/Left/Right for operators.
type Expr struct {
	Kind ExprKind
	Line int

	Num  float64
	Str  string
	Bool bool
	Name string
	Op   string

	Items []*Expr
	Left  *Expr
	Right *Expr
}

// parseExprString tokenizes and parses one expression. The whole input must
// be consumed; trailing tokens are a parse error.
func parseExprString(s string, line int) (*Expr, error) {
	toks, err := tokenize(s, line)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, &ParseError{Line: line, Msg: "expected an expression"}
	}
	p := &exprParser{toks: toks, line: line}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("unexpected %q after expression", p.toks[p.pos].text)}
	}
	return e, nil
}

type exprParser struct {
	toks []token
	pos  int
	line int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return token{}, false
}

func (p *exprParser) atIdent(word string) bool {
	t, ok := p.peek()
	return ok && t.kind == tokIdent && t.text == word
}

func (p *exprParser) atOp(ops ...string) bool {
	t, ok := p.peek()
	if !ok || t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *exprParser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *exprParser) fail(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *exprParser) parseOr() (*Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atIdent("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: "or", Left: left, Right: right, Line: p.line}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (*Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atIdent("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: "and", Left: left, Right: right, Line: p.line}
	}
	return left, nil
}

func (p *exprParser) parseNot() (*Expr, error) {
	if p.atIdent("not") {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprUnary, Op: "not", Left: operand, Line: p.line}, nil
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (*Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.atOp(">", "<", ">=", "<=", "==", "!=") {
		op := p.next().text
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right, Line: p.line}
	}
	return left, nil
}

func (p *exprParser) parseAdditive() (*Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atOp("+", "-") {
		op := p.next().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right, Line: p.line}
	}
	return left, nil
}

func (p *exprParser) parseMultiplicative() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atOp("*", "/", "%") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right, Line: p.line}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (*Expr, error) {
	if p.atOp("-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprUnary, Op: "-", Left: operand, Line: p.line}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (*Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.fail("expected an expression")
	}
	switch t.kind {
	case tokNum:
		p.next()
		var f float64
		if _, err := fmt.Sscanf(t.text, "%g", &f); err != nil {
			return nil, p.fail("invalid number %q", t.text)
		}
		return &Expr{Kind: ExprNumber, Num: f, Line: p.line}, nil
	case tokStr:
		p.next()
		return &Expr{Kind: ExprString, Str: t.text, Line: p.line}, nil
	case tokIdent:
		switch t.text {
		case "true", "false":
			p.next()
			return &Expr{Kind: ExprBoolean, Bool: t.text == "true", Line: p.line}, nil
		}
		p.next()
		if nt, ok := p.peek(); ok && nt.kind == tokLParen {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &Expr{Kind: ExprCall, Name: t.text, Items: args, Line: p.line}, nil
		}
		return &Expr{Kind: ExprVar, Name: t.text, Line: p.line}, nil
	case tokLParen:
		p.next()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if nt, ok := p.peek(); !ok || nt.kind != tokRParen {
			return nil, p.fail("missing ')'")
		}
		p.next()
		return e, nil
	case tokLBracket:
		p.next()
		var items []*Expr
		if nt, ok := p.peek(); ok && nt.kind == tokRBracket {
			p.next()
			return &Expr{Kind: ExprList, Items: items, Line: p.line}, nil
		}
		for {
			item, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			nt, ok := p.peek()
			if !ok {
				return nil, p.fail("missing ']'")
			}
			if nt.kind == tokComma {
				p.next()
				continue
			}
			if nt.kind == tokRBracket {
				p.next()
				return &Expr{Kind: ExprList, Items: items, Line: p.line}, nil
			}
			return nil, p.fail("unexpected %q in list literal", nt.text)
		}
	default:
		return nil, p.fail("unexpected %q", t.text)
	}
}

// parseArgList consumes "(" expr, ... ")" and returns the arguments.
func (p *exprParser) parseArgList() ([]*Expr, error) {
	p.next() // "("
	var args []*Expr
	if nt, ok := p.peek(); ok && nt.kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		nt, ok := p.peek()
		if !ok {
			return nil, p.fail("missing ')' in call")
		}
		if nt.kind == tokComma {
			p.next()
			continue
		}
		if nt.kind == tokRParen {
			p.next()
			return args, nil
		}
		return nil, p.fail("unexpected %q in call arguments", nt.text)
	}
}

// opPrec reports binding strength for the generator's parenthesizer. Higher
// binds tighter. Values match the grammar above.
func opPrec(op string) int {
	switch op {
	case "or":
		return 1
	case "and":
		return 2
	case ">", "<", ">=", "<=", "==", "!=":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%":
		return 6
	default:
		return 7
	}
}
