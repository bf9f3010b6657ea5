package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/driver"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/lexer"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/linter"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/modules"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/optimizer"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/parser"
)

// phaseTiming is one measured step of the pipeline.
type phaseTiming struct {
	name    string
	elapsed time.Duration
	detail  string
}

func runProgram(opts *options) int {
	start := "."
	if opts.file != "" {
		start = filepath.Dir(opts.file)
	}
	cfg, err := loadConfig(opts.configPath, start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	file := opts.file
	if file == "" {
		file = cfg.MainPath()
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "ownlang requires a program file")
		printUsage(os.Stderr)
		return 1
	}
	configured := 0
	if cfg != nil {
		configured = cfg.Optimize
	}
	level := opts.effectiveLevel(configured)
	if opts.lint {
		opts.showAST, opts.showTokens, opts.showTime = false, false, false
	}

	var timings []phaseTiming
	measure := func(name string, started time.Time, detail string) {
		timings = append(timings, phaseTiming{name: name, elapsed: time.Since(started), detail: detail})
	}

	source, err := driver.ReadSource(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return 1
	}

	began := time.Now()
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
		return 1
	}
	measure("tokenize", began, fmt.Sprintf("%s tokens, %s", humanize.Comma(int64(len(tokens))), humanize.Bytes(uint64(len(source)))))
	if opts.showTokens {
		for _, tok := range tokens {
			fmt.Fprintln(os.Stdout, tok)
		}
	}

	began = time.Now()
	p := parser.New(tokens)
	program := p.Parse()
	measure("parse", began, "")
	if errs := p.Errors(); errs.HasErrors() {
		for _, diag := range errs.List() {
			fmt.Fprintf(os.Stderr, "%s: %s\n", file, diag)
		}
		return 1
	}

	if opts.beautify {
		fmt.Fprintln(os.Stdout, ast.Format(program))
		return 0
	}
	if opts.lint {
		var preloaded []string
		if cfg != nil {
			preloaded = cfg.Modules
		}
		warnings := linter.Lint(program, modules.Builtin(io.Discard), preloaded...)
		for _, w := range warnings {
			fmt.Fprintf(os.Stdout, "%s: %s\n", file, w)
		}
		if len(warnings) == 0 {
			fmt.Fprintf(os.Stdout, "%s: no warnings\n", file)
		}
		return 0
	}
	if opts.showAST {
		fmt.Fprintln(os.Stdout, ast.Format(program))
	}

	if level > 0 {
		began = time.Now()
		optimized, report := optimizer.Run(program, optimizer.Options{Level: level, Debug: opts.showAST})
		measure("optimize", began, fmt.Sprintf("%d rewrites in %d iterations", report.Changes(), len(report.Iterations)))
		program = optimized
		if opts.showAST {
			fmt.Fprintln(os.Stdout, "---- optimized ----")
			fmt.Fprint(os.Stdout, report)
			fmt.Fprintln(os.Stdout, ast.Format(program))
		}
	}

	lock, err := loadLockfile(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", file, err)
		return 1
	}
	loader := driver.NewLoader(includeRoots(filepath.Dir(absFile), cfg, lock)...)
	interp, err := newInterpreter(os.Stdout, cfg, loader, opts.args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	began = time.Now()
	err = interp.Run(program)
	measure("execute", began, "")
	if opts.showTime {
		printTimings(os.Stderr, timings)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		return 1
	}
	return 0
}

func printTimings(w io.Writer, timings []phaseTiming) {
	var total time.Duration
	for _, t := range timings {
		total += t.elapsed
		if t.detail != "" {
			fmt.Fprintf(w, "%-9s %s (%s)\n", t.name+":", formatDuration(t.elapsed), t.detail)
		} else {
			fmt.Fprintf(w, "%-9s %s\n", t.name+":", formatDuration(t.elapsed))
		}
	}
	fmt.Fprintf(w, "%-9s %s\n", "total:", formatDuration(total))
}

func formatDuration(d time.Duration) string {
	return humanize.SIWithDigits(d.Seconds(), 2, "s")
}
