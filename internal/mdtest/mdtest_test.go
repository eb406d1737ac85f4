package mdtest

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const doc = "# Examples\n\n" +
	"Some prose.\n\n" +
	"## Test: doubling\n\n" +
	"```jam\nset nums = [1, 2]\nprint nums\n```\n\n" +
	"```output\n[1, 2]\n```\n\n" +
	"## Test: asking\n\n" +
	"```jam\nask name\n```\n\n" +
	"```input\nAda\n41\n```\n\n" +
	"```error\nsome failure\n```\n"

func TestExtractCases(t *testing.T) {
	cases, err := ExtractCases(doc)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "doubling")
	be.Equal(t, cases[0].Source, "set nums = [1, 2]\nprint nums\n")
	be.Equal(t, cases[0].Output, "[1, 2]\n")
	be.Equal(t, cases[0].Error, "")

	be.Equal(t, cases[1].Name, "asking")
	be.Equal(t, cases[1].Input, []string{"Ada", "41"})
	be.Equal(t, cases[1].Error, "some failure")
}

func TestNonTestHeadingsIgnored(t *testing.T) {
	cases, err := ExtractCases("# Title\n\n## Not a case\n\nprose only\n")
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 0)
}

func TestUnrelatedFencesIgnored(t *testing.T) {
	cases, err := ExtractCases("## Setup\n\n```sh\nmake test\n```\n")
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 0)
}

func TestMissingJamFence(t *testing.T) {
	_, err := ExtractCases("## Test: broken\n\n```output\nx\n```\n")
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "has no jam fence"))
}

func TestMissingExpectation(t *testing.T) {
	_, err := ExtractCases("## Test: broken\n\n```jam\nprint 1\n```\n")
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "neither output nor error"))
}

func TestDuplicateJamFence(t *testing.T) {
	_, err := ExtractCases("## Test: twice\n\n```jam\nprint 1\n```\n\n```jam\nprint 2\n```\n\n```output\n1\n```\n")
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "more than one jam fence"))
}

func TestCaseFenceOutsideCase(t *testing.T) {
	_, err := ExtractCases("```jam\nprint 1\n```\n")
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "outside of a test case"))
}

func TestEmptyOutputAllowed(t *testing.T) {
	cases, err := ExtractCases("## Test: silent\n\n```jam\nset x = 1\n```\n\n```output\n```\n")
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, cases[0].Output, "")
}
