package jam

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/UnitaryIron/Jam-backend/internal/mdtest"
)

// TestExamples runs the literate example documents under testdata/ through
// the interpreter and checks each case's expected output or error.
func TestExamples(t *testing.T) {
	paths, err := filepath.Glob("testdata/*.md")
	be.Err(t, err, nil)
	be.True(t, len(paths) > 0)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		be.Err(t, err, nil)
		cases, err := mdtest.ExtractCases(string(data))
		be.Err(t, err, nil)
		be.True(t, len(cases) > 0)

		name := strings.TrimSuffix(filepath.Base(path), ".md")
		t.Run(name, func(t *testing.T) {
			for _, c := range cases {
				t.Run(c.Name, func(t *testing.T) {
					runExample(t, c)
				})
			}
		})
	}
}

func runExample(t *testing.T, c mdtest.Case) {
	t.Helper()
	opts := Options{}
	if len(c.Input) > 0 {
		replies := c.Input
		i := 0
		opts.Input = func(string) (string, error) {
			reply := replies[i%len(replies)]
			i++
			return reply, nil
		}
	}

	res, err := Interpret(c.Source, opts)
	if c.Error != "" {
		be.True(t, err != nil)
		be.True(t, containsMsg(err, c.Error))
	} else {
		be.Err(t, err, nil)
	}
	if c.Error == "" || c.Output != "" {
		be.Equal(t, res.Output, c.Output)
	}
}
