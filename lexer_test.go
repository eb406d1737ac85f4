package jam

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestNormalizeLines(t *testing.T) {
	lines, err := NormalizeLines("set x = 1  # init\n\n# only a comment\nprint x")
	be.Err(t, err, nil)
	be.Equal(t, lines, []Line{
		{Num: 1, Text: "set x = 1", Comment: "# init"},
		{Num: 2, Text: ""},
		{Num: 3, Text: "", Comment: "# only a comment"},
		{Num: 4, Text: "print x"},
	})
}

func TestNormalizeSplitsElseLines(t *testing.T) {
	lines, err := NormalizeLines("if a {\n} else if b {\n} else {\n}")
	be.Err(t, err, nil)
	texts := make([]string, len(lines))
	for i, ln := range lines {
		texts[i] = ln.Text
	}
	be.Equal(t, texts, []string{"if a {", "}", "else if b {", "}", "else {", "}"})
	// Both pieces of a split line keep the physical line number.
	be.Equal(t, lines[1].Num, 2)
	be.Equal(t, lines[2].Num, 2)
}

func TestHashInsideStringIsNotAComment(t *testing.T) {
	lines, err := NormalizeLines(`print "issue #42"  # real comment`)
	be.Err(t, err, nil)
	be.Equal(t, lines[0].Text, `print "issue #42"`)
	be.Equal(t, lines[0].Comment, "# real comment")
}

func TestUnterminatedStringInLine(t *testing.T) {
	_, err := NormalizeLines("print \"ok\"\nprint \"broken")
	var le *LexError
	be.True(t, asErr(err, &le))
	be.Equal(t, le.Line, 2)
	be.Equal(t, le.Msg, "unterminated string literal")
}

func TestTokenize(t *testing.T) {
	toks, err := tokenize(`foo(1.5, "a b") + [x] >= 2 => done`, 1)
	be.Err(t, err, nil)
	kinds := make([]tokKind, len(toks))
	texts := make([]string, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.kind
		texts[i] = tk.text
	}
	be.Equal(t, kinds, []tokKind{
		tokIdent, tokLParen, tokNum, tokComma, tokStr, tokRParen,
		tokOp, tokLBracket, tokIdent, tokRBracket, tokOp, tokNum,
		tokArrow, tokIdent,
	})
	be.Equal(t, texts, []string{
		"foo", "(", "1.5", ",", "a b", ")",
		"+", "[", "x", "]", ">=", "2",
		"=>", "done",
	})
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := tokenize(`"a\nb\t\"c\""`, 1)
	be.Err(t, err, nil)
	be.Equal(t, len(toks), 1)
	be.Equal(t, toks[0].text, "a\nb\t\"c\"")
}

func TestTokenizeBangRejected(t *testing.T) {
	_, err := tokenize("!x", 3)
	var le *LexError
	be.True(t, asErr(err, &le))
	be.Equal(t, le.Line, 3)
	be.Equal(t, le.Msg, "unexpected character '!' (use 'not')")

	// "!=" is fine.
	toks, err := tokenize("x != y", 1)
	be.Err(t, err, nil)
	be.Equal(t, toks[1].text, "!=")
}

func TestTokenizeUnknownCharacter(t *testing.T) {
	_, err := tokenize("x @ y", 1)
	var le *LexError
	be.True(t, asErr(err, &le))
	be.Equal(t, le.Msg, `unexpected character '@'`)
}
