package linter

import (
	"io"
	"strings"
	"testing"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/modules"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/parser"
)

func lint(t *testing.T, source string) []Warning {
	t.Helper()
	program, errs, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if errs.HasErrors() {
		t.Fatalf("parse errors:\n%s", errs)
	}
	return Lint(program, modules.Builtin(io.Discard))
}

func TestLintReportsInSourceOrder(t *testing.T) {
	source := strings.Join([]string{
		`use "std", "functional", "graphics"`,
		`def helper() = 1`,
		`ARGS = []`,
		`def echo(x) = x`,
		`for v : [1] { ARGS++ }`,
	}, "\n")
	got := lint(t, source)
	want := []Warning{
		{Message: "unknown module 'graphics'", Line: 1, Column: 1},
		{Message: "assignment to reserved variable 'ARGS'", Line: 3, Column: 1},
		{Message: "function 'echo' replaces the native function from module 'std'", Line: 4, Column: 1},
		{Message: "assignment to reserved variable 'ARGS'", Line: 5, Column: 15},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d warnings, got %d: %v", len(want), len(got), got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Errorf("warning %d: expected %+v, got %+v", idx, want[idx], got[idx])
		}
	}
}

func TestLintIgnoresModulesThatAreNotUsed(t *testing.T) {
	if got := lint(t, "def reduce(a) = a\nARGS[0] = 1\nprintln reduce(2)"); len(got) != 0 {
		t.Fatalf("expected no warnings, got %v", got)
	}
}

func TestLintSeesNestedDeclarations(t *testing.T) {
	program := ast.Prog(
		ast.Use("math"),
		ast.If(ast.Bool(true), ast.Block(
			ast.Fn("max", []string{"a"}, ast.Ret(ast.ID("a"))),
		), nil),
	)
	got := Lint(program, modules.Builtin(io.Discard))
	if len(got) != 1 || !strings.Contains(got[0].String(), "function 'max' replaces the native function from module 'math'") {
		t.Fatalf("unexpected warnings %v", got)
	}
}

func TestLintCountsPreloadedModules(t *testing.T) {
	program := ast.Prog(ast.Fn("reduce", []string{"a"}, ast.Ret(ast.ID("a"))))
	if got := Lint(program, modules.Builtin(io.Discard)); len(got) != 0 {
		t.Fatalf("expected no warnings without preloaded modules, got %v", got)
	}
	got := Lint(program, modules.Builtin(io.Discard), "functional", "missing")
	if len(got) != 1 || got[0].Message != "function 'reduce' replaces the native function from module 'functional'" {
		t.Fatalf("unexpected warnings %v", got)
	}
}
