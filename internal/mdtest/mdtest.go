// Package mdtest extracts executable test cases from Markdown documents.
//
// A case starts at a heading whose text begins with "Test: " and collects the
// fenced code blocks that follow until the next such heading:
//
//	## Test: doubling a list
//
//	```jam
//	set nums = [1, 2, 3]
//	print nums
//	```
//
//	```output
//	[1, 2, 3]
//	```
//
// Recognized fence languages: "jam" (the program), "input" (lines fed to
// ask, one per statement), "output" (expected interpreter output) and
// "error" (expected error substring). A case must have exactly one jam fence
// and at least one of output/error.
package mdtest

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Case is one extracted test case.
type Case struct {
	Name   string
	Source string
	Input  []string
	Output string
	Error  string

	hasOutput bool
}

// ExtractCases parses a Markdown document and returns its test cases in
// document order.
func ExtractCases(markdown string) ([]Case, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	flush := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("test %q has no jam fence", current.Name)
		}
		if !current.hasOutput && current.Error == "" {
			return fmt.Errorf("test %q has neither output nor error fence", current.Name)
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if name, ok := strings.CutPrefix(heading, "Test: "); ok {
				if err := flush(); err != nil {
					return ast.WalkStop, err
				}
				current = &Case{Name: name}
			}
		case *ast.FencedCodeBlock:
			lang := string(n.Language(source))
			if current == nil {
				if lang == "jam" || lang == "output" || lang == "error" || lang == "input" {
					return ast.WalkStop, fmt.Errorf("%s fence outside of a test case", lang)
				}
				return ast.WalkContinue, nil
			}
			content := fenceContent(n, source)
			switch lang {
			case "jam":
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("test %q has more than one jam fence", current.Name)
				}
				current.Source = content
			case "input":
				for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
					current.Input = append(current.Input, line)
				}
			case "output":
				current.Output = content
				current.hasOutput = true
			case "error":
				current.Error = strings.TrimSpace(content)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
	}
	return b.String()
}

func fenceContent(n *ast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}
