package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/driver"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/interpreter"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/optimizer"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/parser"
)

const (
	replPrompt         = "> "
	replContinuePrompt = "... "
	replHistoryFile    = "repl_history"
)

// replSession buffers input lines until they form a complete program and
// runs each program against one persistent interpreter.
type replSession struct {
	interp *interpreter.Interpreter
	level  int
	errOut io.Writer
	buffer strings.Builder
}

// feed handles one input line and reports whether the session should end.
func (s *replSession) feed(line string) bool {
	switch strings.TrimSpace(line) {
	case ":exit", ":quit":
		return true
	case ":reset":
		s.buffer.Reset()
		return false
	case "":
		// A blank line flushes a buffer that will not parse.
		if s.buffer.Len() > 0 {
			s.flush()
		}
		return false
	}
	s.buffer.WriteString(line)
	s.buffer.WriteByte('\n')
	program, ok := s.complete()
	if !ok {
		return false
	}
	s.buffer.Reset()
	s.execute(program)
	return false
}

func (s *replSession) pending() bool {
	return s.buffer.Len() > 0
}

// complete parses the buffer and reports whether it is a clean program.
func (s *replSession) complete() (ast.Statement, bool) {
	program, errs, err := parser.ParseSource(s.buffer.String())
	if err != nil || errs.HasErrors() {
		return nil, false
	}
	return program, true
}

func (s *replSession) flush() {
	program, errs, err := parser.ParseSource(s.buffer.String())
	s.buffer.Reset()
	switch {
	case err != nil:
		fmt.Fprintln(s.errOut, err)
	case errs.HasErrors():
		for _, diag := range errs.List() {
			fmt.Fprintln(s.errOut, diag)
		}
	default:
		s.execute(program)
	}
}

func (s *replSession) execute(program ast.Statement) {
	if s.level > 0 {
		program = optimizer.Optimize(program, s.level, false)
	}
	if err := s.interp.Run(program); err != nil {
		fmt.Fprintf(s.errOut, "runtime error: %v\n", err)
	}
}

func runREPL(opts *options) int {
	cfg, err := loadConfig(opts.configPath, ".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	lock, err := loadLockfile(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	interp, err := newInterpreter(os.Stdout, cfg, driver.NewLoader(includeRoots("", cfg, lock)...), opts.args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	configured := 0
	if cfg != nil {
		configured = cfg.Optimize
	}
	session := &replSession{interp: interp, level: opts.effectiveLevel(configured), errOut: os.Stderr}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := driver.Home(); err == nil {
		historyPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintf(os.Stdout, "%s REPL. Type :exit to quit, :reset to clear the input buffer.\n", cliToolVersion)
	for {
		prompt := replPrompt
		if session.pending() {
			prompt = replContinuePrompt
		}
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			session.buffer.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(os.Stdout)
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "read input: %v\n", err)
			return 1
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if session.feed(input) {
			break
		}
	}

	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err == nil {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return 0
}
