// Package linter reports suspicious constructs in a parsed program without
// running it.
package linter

import (
	"fmt"
	"sort"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/interpreter"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/modules"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// Warning is one finding, positioned at the offending node.
type Warning struct {
	Message string
	Line    int
	Column  int
}

func (w Warning) String() string {
	return fmt.Sprintf("Warning on line %d:%d: %s", w.Line, w.Column, w.Message)
}

// Lint walks program and returns its warnings in source order. catalog is
// the set of modules a `use` may name; preloaded lists modules the
// interpreter loads before the program runs.
func Lint(program ast.Statement, catalog map[string]runtime.Module, preloaded ...string) []Warning {
	var (
		warnings []Warning
		defs     []*ast.FunctionDefinition
		natives  = make(map[string]string)
	)
	warn := func(node ast.Node, format string, args ...any) {
		pos := node.Position()
		warnings = append(warnings, Warning{Message: fmt.Sprintf(format, args...), Line: pos.Line, Column: pos.Column})
	}
	record := func(name string, module runtime.Module) {
		for _, fn := range modules.Exports(module) {
			if _, seen := natives[fn]; !seen {
				natives[fn] = name
			}
		}
	}
	for _, name := range preloaded {
		if module, ok := catalog[name]; ok {
			record(name, module)
		}
	}
	ast.Walk(program, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.UseStatement:
			for _, name := range node.Modules {
				module, ok := catalog[name]
				if !ok {
					warn(node, "unknown module '%s'", name)
					continue
				}
				record(name, module)
			}
		case *ast.FunctionDefinition:
			defs = append(defs, node)
		case *ast.AssignmentExpression:
			if id, ok := node.Target.(*ast.Identifier); ok && id.Name == interpreter.ArgsVariable {
				warn(node, "assignment to reserved variable '%s'", interpreter.ArgsVariable)
			}
		case *ast.UpdateExpression:
			if id, ok := node.Target.(*ast.Identifier); ok && id.Name == interpreter.ArgsVariable {
				warn(node, "assignment to reserved variable '%s'", interpreter.ArgsVariable)
			}
		}
		return true
	})
	// Modules load before any declaration, so a def anywhere shadows them.
	for _, def := range defs {
		if module, ok := natives[def.ID.Name]; ok {
			warn(def, "function '%s' replaces the native function from module '%s'", def.ID.Name, module)
		}
	}
	sort.SliceStable(warnings, func(a, b int) bool {
		if warnings[a].Line != warnings[b].Line {
			return warnings[a].Line < warnings[b].Line
		}
		return warnings[a].Column < warnings[b].Column
	})
	return warnings
}
