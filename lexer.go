// lexer.go — line normalization and expression tokenization.
//
// Jam is line-oriented: one statement per logical line, blocks delimited by
// braces, comments introduced by '#'. The normalizer splits raw source into
// logical lines, strips comments while recording them (the generator re-emits
// them next to the statements they annotate), and splits "} else ..." onto
// separate logical lines so the block structurer only ever sees a bare "}"
// or a statement opener at the start of a line.
//
// The second half is a conventional scanner for the expression sublanguage
// (literals, names, operators, brackets) used by the recursive-descent parser
// in expr.go.
package jam

import (
	"fmt"
	"strings"
	"unicode"
)

// Line is one logical source line after normalization. Text holds the code
// with surrounding whitespace and any comment removed; Comment holds the
// comment text including its leading '#', or "" when the line had none.
// Blank lines and comment-only lines survive normalization (Text == "") so
// the generator can preserve them.
type Line struct {
	Num     int
	Text    string
	Comment string
}

// NormalizeLines splits src into logical lines. It fails with a *LexError on
// an unterminated string literal.
func NormalizeLines(src string) ([]Line, error) {
	raw := strings.Split(src, "\n")
	out := make([]Line, 0, len(raw))
	for i, r := range raw {
		num := i + 1
		code, comment, err := splitComment(r, num)
		if err != nil {
			return nil, err
		}
		code = strings.TrimSpace(code)

		// "} else if ..." and "} else {" carry two logical lines.
		for strings.HasPrefix(code, "}") && len(code) > 1 {
			out = append(out, Line{Num: num, Text: "}"})
			code = strings.TrimSpace(code[1:])
		}
		out = append(out, Line{Num: num, Text: code, Comment: comment})
	}
	return out, nil
}

// splitComment finds the first '#' outside a double-quoted string and splits
// the line there. Backslash escapes inside strings are respected. A string
// still open at end of line is a lex error.
func splitComment(line string, num int) (code, comment string, err error) {
	inStr := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inStr {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '#':
			return line[:i], strings.TrimSpace(line[i:]), nil
		}
	}
	if inStr {
		return "", "", &LexError{Line: num, Msg: "unterminated string literal"}
	}
	return line, "", nil
}

/* ===========================
   Expression tokens
   =========================== */

type tokKind int

const (
	tokNum tokKind = iota
	tokStr
	tokIdent
	tokOp       // + - * / % > < >= <= == != =
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokArrow // =>
)

type token struct {
	kind tokKind
	text string
}

// tokenize scans an expression string into tokens. line is the 1-based source
// line used in diagnostics.
func tokenize(s string, line int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '"':
			j := i + 1
			var b strings.Builder
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' && j+1 < len(s) {
					j++
					switch s[j] {
					case 'n':
						b.WriteByte('\n')
					case 't':
						b.WriteByte('\t')
					default:
						b.WriteByte(s[j])
					}
				} else {
					b.WriteByte(s[j])
				}
				j++
			}
			if j >= len(s) {
				return nil, &LexError{Line: line, Msg: "unterminated string literal"}
			}
			toks = append(toks, token{kind: tokStr, text: b.String()})
			i = j + 1
		case c >= '0' && c <= '9' || (c == '.' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9'):
			j := i
			seenDot := false
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || (s[j] == '.' && !seenDot)) {
				if s[j] == '.' {
					seenDot = true
				}
				j++
			}
			toks = append(toks, token{kind: tokNum, text: s[i:j]})
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < len(s) && isIdentPart(rune(s[j])) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: s[i:j]})
			i = j
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case c == '[':
			toks = append(toks, token{kind: tokLBracket, text: "["})
			i++
		case c == ']':
			toks = append(toks, token{kind: tokRBracket, text: "]"})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		case c == '=' && i+1 < len(s) && s[i+1] == '>':
			toks = append(toks, token{kind: tokArrow, text: "=>"})
			i += 2
		case strings.ContainsRune("+-*/%", rune(c)):
			toks = append(toks, token{kind: tokOp, text: string(c)})
			i++
		case c == '>' || c == '<' || c == '=' || c == '!':
			if i+1 < len(s) && s[i+1] == '=' {
				toks = append(toks, token{kind: tokOp, text: s[i : i+2]})
				i += 2
			} else if c == '!' {
				return nil, &LexError{Line: line, Msg: "unexpected character '!' (use 'not')"}
			} else {
				toks = append(toks, token{kind: tokOp, text: string(c)})
				i++
			}
		default:
			return nil, &LexError{Line: line, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return toks, nil
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }
