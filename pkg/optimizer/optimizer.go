// Package optimizer rewrites a parsed program into an equivalent, simpler
// one.
package optimizer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
)

// Options control a run. Level bounds the number of iterations over all
// passes; 0 disables optimization. With Debug set the report records every
// iteration, and Trace, when non-nil, receives it as it happens.
type Options struct {
	Level int
	Debug bool
	Trace io.Writer
}

// PassResult is the number of rewrites one pass made in one iteration.
type PassResult struct {
	Name    string
	Changes int
}

// Iteration records one run of every pass and the tree it produced.
type Iteration struct {
	Passes []PassResult
	Tree   string
}

func (it Iteration) Changes() int {
	total := 0
	for _, p := range it.Passes {
		total += p.Changes
	}
	return total
}

// Report summarizes an optimizer run.
type Report struct {
	Level      int
	Iterations []Iteration
	FixedPoint bool
}

// Changes returns the total number of rewrites.
func (r *Report) Changes() int {
	total := 0
	for _, it := range r.Iterations {
		total += it.Changes()
	}
	return total
}

func (r *Report) String() string {
	var b strings.Builder
	for idx, it := range r.Iterations {
		fmt.Fprintf(&b, "iteration %d:", idx+1)
		for _, p := range it.Passes {
			fmt.Fprintf(&b, " %s=%d", p.Name, p.Changes)
		}
		b.WriteByte('\n')
		if it.Tree != "" {
			b.WriteString(it.Tree)
			b.WriteByte('\n')
		}
	}
	if r.FixedPoint {
		fmt.Fprintf(&b, "fixed point after %d iteration(s), %d change(s)\n", len(r.Iterations), r.Changes())
	} else {
		fmt.Fprintf(&b, "stopped at level %d, %d change(s)\n", r.Level, r.Changes())
	}
	return b.String()
}

// Optimize runs up to level iterations over program. Level 0 returns program
// itself. debug traces every iteration to stderr.
func Optimize(program ast.Statement, level int, debug bool) ast.Statement {
	opts := Options{Level: level, Debug: debug}
	if debug {
		opts.Trace = os.Stderr
	}
	out, _ := Run(program, opts)
	return out
}

// Run optimizes program and reports what changed. The input tree is never
// mutated; unchanged subtrees are shared with the result.
func Run(program ast.Statement, opts Options) (ast.Statement, *Report) {
	report := &Report{Level: opts.Level}
	if opts.Level <= 0 || program == nil {
		return program, report
	}
	current := program
	for n := 0; n < opts.Level; n++ {
		var it Iteration
		for _, p := range passes {
			next, changes := p.run(current)
			current = next
			it.Passes = append(it.Passes, PassResult{Name: p.name, Changes: changes})
		}
		if opts.Debug {
			it.Tree = ast.Format(current)
			if opts.Trace != nil {
				fmt.Fprintf(opts.Trace, "-- optimizer iteration %d --\n%s\n", n+1, it.Tree)
			}
		}
		report.Iterations = append(report.Iterations, it)
		if it.Changes() == 0 {
			report.FixedPoint = true
			break
		}
	}
	return current, report
}
