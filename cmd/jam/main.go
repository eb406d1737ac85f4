// Command jam is the thin shell around the Jam engine: run a script, emit
// its JavaScript, or talk to a REPL. All language behavior lives in the
// engine package; this file only does flags, files and the terminal.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/xyproto/env/v2"

	jam "github.com/UnitaryIron/Jam-backend"
)

const (
	appName     = "jam"
	historyFile = ".jam_history"
	promptMain  = "jam> "
	promptCont  = ".... "
)

var banner = fmt.Sprintf("Jam %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", jam.Version)

var noColor = env.Bool("NO_COLOR")

func red(s string) string {
	if noColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func blue(s string) string {
	if noColor {
		return s
	}
	return "\x1b[94m" + s + "\x1b[0m"
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "js":
		os.Exit(cmdJS(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(jam.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Jam %s

Usage:
  %s run <file.jam> [--profile <profile.yml>]   Run a script.
  %s js <file.jam> [-o <out.js>]                Emit JavaScript.
  %s repl                                       Start the REPL.
  %s version                                    Print the engine version.

Environment:
  JAM_LOOP_CAP   Max while/until iterations per loop (default %d)
  NO_COLOR       Disable ANSI colors
`, jam.Version, appName, appName, appName, appName, jam.DefaultMaxLoopIterations)
}

// baseOptions wires the terminal as input provider and the environment as
// configuration.
func baseOptions(profilePath string) (jam.Options, error) {
	opts := jam.Options{
		MaxLoopIterations: env.Int("JAM_LOOP_CAP", jam.DefaultMaxLoopIterations),
		Input: func(prompt string) (string, error) {
			if prompt != "" {
				fmt.Print(prompt + " ")
			}
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", err
			}
			return strings.TrimRight(line, "\r\n"), nil
		},
	}
	if profilePath != "" {
		profile, err := jam.LoadProfile(profilePath)
		if err != nil {
			return opts, err
		}
		opts.Safety = profile
	}
	return opts, nil
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	profilePath := fs.String("profile", "", "safety profile YAML file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.jam> [--profile <profile.yml>]\n", appName)
		return 2
	}

	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, fs.Arg(0), err)
		return 1
	}
	opts, err := baseOptions(*profilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}

	res, err := jam.Interpret(string(src), opts)
	fmt.Print(res.Output)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(jam.WrapErrorWithSource(err, string(src)).Error()))
		return 1
	}
	return 0
}

func cmdJS(args []string) int {
	fs := flag.NewFlagSet("js", flag.ContinueOnError)
	outPath := fs.String("o", "", "write generated JavaScript to this file")
	profilePath := fs.String("profile", "", "safety profile YAML file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s js <file.jam> [-o <out.js>]\n", appName)
		return 2
	}

	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, fs.Arg(0), err)
		return 1
	}
	opts, err := baseOptions(*profilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}

	res, err := jam.Transpile(string(src), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(jam.WrapErrorWithSource(err, string(src)).Error()))
		return 1
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, red(d.String()))
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(res.Generated+"\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot write %s: %v\n", appName, *outPath, err)
			return 1
		}
		return 0
	}
	fmt.Println(res.Generated)
	return 0
}

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	opts, _ := baseOptions("")
	session := jam.NewSession(opts)

	for {
		code, ok := readBalanced(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.EqualFold(trimmed, ":quit") {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		out, err := session.Eval(code)
		fmt.Print(blue(out))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(jam.WrapErrorWithSource(err, code).Error()))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readBalanced keeps prompting until every opened block is closed, so loops
// and function bodies can be typed across lines.
func readBalanced(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if braceDepth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// braceDepth counts unmatched '{' outside strings and comments.
func braceDepth(src string) int {
	depth := 0
	inStr := false
	inComment := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inComment {
			if c == '\n' {
				inComment = false
			}
			continue
		}
		if inStr {
			if c == '\\' {
				i++
			} else if c == '"' {
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '#':
			inComment = true
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}
