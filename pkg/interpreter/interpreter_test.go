package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/modules"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/parser"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

func newTestInterpreter() (*Interpreter, *bytes.Buffer) {
	var out bytes.Buffer
	interp := New()
	interp.SetOutput(&out)
	interp.RegisterModules(modules.Builtin(&out))
	return interp, &out
}

func parse(t *testing.T, source string) ast.Statement {
	t.Helper()
	program, errs, err := parser.ParseSource(source)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if errs.HasErrors() {
		t.Fatalf("parse errors:\n%s", errs)
	}
	return program
}

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	interp, out := newTestInterpreter()
	err := interp.Run(parse(t, source))
	return out.String(), err
}

func mustRun(t *testing.T, source string) string {
	t.Helper()
	out, err := run(t, source)
	if err != nil {
		t.Fatalf("run failed: %v\noutput so far:\n%s", err, out)
	}
	return out
}

func TestEvaluatesArithmeticAndPrint(t *testing.T) {
	out := mustRun(t, `
x = 2
y = x * 3 + 1
println y
print "a" + 1 + true
println ""
println 7 / 2
println 1 << 4 | 1
println -7 >>> 60
println "ab" * 3
println [1, 2] + 3
println {"a": 1} + {"b": 2}
`)
	want := "7\na1true\n3.5\n17\n15\nababab\n[1, 2, 3]\n{a=1, b=2}\n"
	if out != want {
		t.Fatalf("output mismatch:\n%q\nwant:\n%q", out, want)
	}
}

func TestHoistingResolvesForwardReferences(t *testing.T) {
	out := mustRun(t, `
println twice(21)
if true {
  def nested() = "nested"
}
println nested()
def twice(n) = n * 2
`)
	if out != "42\nnested\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStopTerminatesNestedLoopsAndCalls(t *testing.T) {
	out, err := run(t, `
def deep(n) {
  for i = 0, i < 10, i++ {
    while true {
      if n == 0 stop
      deep(n - 1)
    }
  }
  println "unreachable in deep"
}
println "before"
deep(3)
println "after"
`)
	if err != nil {
		t.Fatalf("stop must not surface as a failure, got %v", err)
	}
	if out != "before\n" {
		t.Fatalf("statements after stop ran: %q", out)
	}
}

func TestExecuteReportsStop(t *testing.T) {
	interp, out := newTestInterpreter()
	program := ast.Prog(ast.Println(ast.Num(1)), ast.Stop(), ast.Println(ast.Num(2)))
	if err := interp.Hoist(program); err != nil {
		t.Fatalf("hoist: %v", err)
	}
	if err := interp.Execute(program); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestLoopsBuiltFromNodes(t *testing.T) {
	interp, out := newTestInterpreter()
	program := ast.Prog(
		ast.Set("total", ast.Num(0)),
		ast.For(ast.Set("i", ast.Num(0)), ast.Bin("<", ast.ID("i"), ast.Num(10)), ast.Expr(ast.Inc(ast.ID("i"))),
			ast.If(ast.Bin("==", ast.Bin("%", ast.ID("i"), ast.Num(2)), ast.Num(0)), ast.Cont(), nil),
			ast.If(ast.Bin(">", ast.ID("i"), ast.Num(7)), ast.Brk(), nil),
			ast.Expr(ast.AssignOp("+=", ast.ID("total"), ast.ID("i"))),
		),
		ast.Println(ast.ID("total")),
		ast.Foreach("v", ast.Arr(ast.Num(1), ast.Num(2)), ast.Print(ast.ID("v"))),
		ast.Println(ast.Str("")),
		ast.ForeachKV("k", "v", ast.MapLit(ast.Entry(ast.Str("a"), ast.Num(1)), ast.Entry(ast.Str("b"), ast.Num(2))),
			ast.Print(ast.Bin("+", ast.ID("k"), ast.ID("v"))),
		),
		ast.Println(ast.Str("")),
	)
	if err := interp.Run(program); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "16\n12\na1b2\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestStopInsideNativeCallback(t *testing.T) {
	out, err := run(t, `
use "functional"
foreach([1, 2, 3], def(x) {
  if x == 2 stop
  println x
})
println "after"
`)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if out != "1\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRedeclarationReplacesNative(t *testing.T) {
	out := mustRun(t, `
use "functional"
def map(container, f) = "user map"
println map([1], def(x) = x)
def greet() = "first"
println greet()
def greet() = "second"
println greet()
`)
	// Hoisting registers both greet declarations; executing each one
	// re-registers it, so the call between them sees the first.
	if out != "user map\nfirst\nsecond\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestShortCircuit(t *testing.T) {
	out := mustRun(t, `
calls = 0
def touch() {
  calls++
  return true
}
a = false && touch()
b = true || touch()
c = true && touch()
println [a, b, c, calls]
`)
	if out != "[false, true, true, 1]\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBlockAssignmentReachesEnclosingScope(t *testing.T) {
	out := mustRun(t, `
x = 1
{
  x = 2
  y = 3
  println y
}
println x
`)
	if out != "3\n2\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBlockLocalsAreNotVisibleOutside(t *testing.T) {
	_, err := run(t, `
{
  inner = 3
}
println inner
`)
	var rt *RuntimeError
	if !errors.As(err, &rt) || !strings.Contains(rt.Message, "undefined variable 'inner'") {
		t.Fatalf("expected undefined variable failure, got %v", err)
	}
	if rt.Line != 5 || rt.Column != 9 {
		t.Fatalf("failure positioned at %d:%d, want 5:9", rt.Line, rt.Column)
	}
}

func TestAssignmentUpdatesNearestScope(t *testing.T) {
	out := mustRun(t, `
total = 0
for i = 1, i <= 4, i++ {
  total += i
}
println total
def bump() {
  total = total + 100
  local = 1
}
bump()
println total
`)
	if out != "10\n110\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestClosuresCaptureDefinitionScope(t *testing.T) {
	out := mustRun(t, `
def counter() {
  n = 0
  return def() {
    n++
    return n
  }
}
c = counter()
c()
c()
println c()
d = counter()
println d()
`)
	if out != "3\n1\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVariableFunctionShadowsRegistry(t *testing.T) {
	out := mustRun(t, `
use "types"
def f() = "registry"
println f()
f = def() = "variable"
println f()
g = ::f
println g()
println typeof(g)
`)
	if out != "registry\nvariable\nregistry\nfunction\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLoopControl(t *testing.T) {
	out := mustRun(t, `
for i = 0, i < 10, i++ {
  if i % 2 == 0 continue
  if i > 6 break
  print i
}
println ""
n = 0
do {
  n++
  if n == 3 break
} while true
println n
for k, v : {"a": 1, "b": 2} print k + v
println ""
for pair : {"z": 0} println pair
for idx, ch : "hé" print idx + ch
println ""
`)
	want := "135\n3\na1b2\n[z, 0]\n0h1é\n"
	if out != want {
		t.Fatalf("unexpected output %q, want %q", out, want)
	}
}

func TestContainersAreSharedReferences(t *testing.T) {
	out := mustRun(t, `
a = [1, 2, 3]
b = a
b[0] = 10
m = {}
m.count = 1
m["count"] += 4
m.list = a
m.list[1]++
println a
println m
println m.missing
println "hey"[1]
`)
	want := "[10, 3, 3]\n{count=5, list=[10, 3, 3]}\nnull\ne\n"
	if out != want {
		t.Fatalf("unexpected output %q, want %q", out, want)
	}
}

func TestUpdateExpressions(t *testing.T) {
	out := mustRun(t, `
i = 5
a = i++
b = ++i
c = i--
println [a, b, c, i]
`)
	if out != "[5, 7, 7, 6]\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRuntimeFailures(t *testing.T) {
	cases := map[string]string{
		"nope()":                                          "unknown function 'nope'",
		"def f(a) = a\nf(1, 2)":                           "f: expected 1 argument, got 2",
		"x = [1]\nprintln x[3]":                           "array index 3 out of range",
		"println 1 < \"a\"":                               "operator <: argument 2 must be number, got string",
		"return 1":                                        "return outside function",
		"break":                                           "break outside loop",
		"def f() { continue }\nf()":                       "continue outside loop",
		"x = 5\nx()":                                      "unknown function 'x'",
		"y = [1]\ny[0]()":                                 "call: expected function, got number",
		"use \"nosuch\"":                                  "unknown module 'nosuch'",
		"include \"a.own\"":                               "no include path configured",
		"m = {}\nm[[1]] = 2":                              "map key",
		"s = \"abc\"\ns[0] = \"z\"":                       "strings are immutable",
		"def r(n) = r(n + 1)\nr(0)":                       "call depth exceeded",
		"for x : 5 println x":                             "for: expected array or map or string, got number",
		"use \"functional\"\nreduce(5, 0, def(a, b) = a)": "reduce: argument 1 must be array or map, got number",
	}
	for source, want := range cases {
		_, err := run(t, source)
		if err == nil {
			t.Errorf("%q: expected failure", source)
			continue
		}
		if !strings.Contains(err.Error(), want) {
			t.Errorf("%q: error %q does not mention %q", source, err.Error(), want)
		}
	}
}

func TestRuntimeErrorKeepsCause(t *testing.T) {
	_, err := run(t, "use \"functional\"\nreduce([1], 0)")
	var arity *runtime.ArityError
	if !errors.As(err, &arity) {
		t.Fatalf("expected ArityError in chain, got %v", err)
	}
	var rt *RuntimeError
	if !errors.As(err, &rt) || rt.Line != 2 || rt.Column != 1 {
		t.Fatalf("expected failure at 2:1, got %v", err)
	}
	_, err = run(t, "use \"nosuch\"")
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestModulesLoadOnce(t *testing.T) {
	interp := New()
	inits := 0
	interp.RegisterModule("counting", runtime.ModuleFunc(func(functions *runtime.Functions) {
		inits++
		functions.Register(runtime.NativeFunction{Name: "one", Arity: 0, Impl: func([]runtime.Value) (runtime.Value, error) {
			return runtime.Number(1), nil
		}})
	}))
	program := parse(t, "use \"counting\"\nuse \"counting\"\nx = one()")
	if err := interp.Run(program); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := interp.Run(program); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if inits != 1 || !interp.Loaded("counting") {
		t.Fatalf("module initialized %d times", inits)
	}
	if v, _ := interp.GlobalEnvironment().Get("x"); !runtime.Equal(v, runtime.Number(1)) {
		t.Fatalf("x = %v", v)
	}
}

type mapIncluder map[string]string

func (m mapIncluder) Include(path string) (string, error) {
	source, ok := m[path]
	if !ok {
		return "", errors.New("not found")
	}
	return source, nil
}

func TestIncludeRunsInGlobalScope(t *testing.T) {
	interp, out := newTestInterpreter()
	interp.SetIncluder(mapIncluder{
		"lib.own":    "def square(x) = x * x\nshared = 7",
		"broken.own": "x = ;",
		"loop.own":   "include \"loop.own\"",
	})
	if err := interp.Run(parse(t, "include \"lib.own\"\nprintln square(shared)")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "49\n" {
		t.Fatalf("unexpected output %q", out.String())
	}

	err := interp.Run(parse(t, "include \"broken.own\""))
	if err == nil || !strings.Contains(err.Error(), "parse errors") || !strings.Contains(err.Error(), "unexpected ';'") {
		t.Fatalf("expected parse errors from include, got %v", err)
	}
	err = interp.Run(parse(t, "include \"loop.own\""))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle, got %v", err)
	}
	err = interp.Run(parse(t, "include \"missing.own\""))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing include to fail, got %v", err)
	}
}

func TestArgsAndCall(t *testing.T) {
	interp, out := newTestInterpreter()
	interp.SetArgs([]string{"one", "two"})
	if err := interp.Run(parse(t, "println ARGS\ndef add(a, b) = a + b")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "[one, two]\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	got, err := interp.Call("add", runtime.Number(2), runtime.Number(3))
	if err != nil || !runtime.Equal(got, runtime.Number(5)) {
		t.Fatalf("Call(add) = %v, %v", got, err)
	}
	if _, err := interp.Call("missing"); err == nil {
		t.Fatalf("expected unknown function error")
	}
}

func TestEvaluateExpressionsDirectly(t *testing.T) {
	interp := New()
	env := interp.GlobalEnvironment()
	env.Define("n", runtime.Number(4))

	cases := []struct {
		expr ast.Expression
		want string
	}{
		{ast.Bin("+", ast.ID("n"), ast.Num(1)), "5"},
		{ast.Tern(ast.Bin(">", ast.ID("n"), ast.Num(3)), ast.Str("big"), ast.Str("small")), "big"},
		{ast.Un("~", ast.Num(0)), "-1"},
		{ast.Arr(ast.Null(), ast.Bool(true)), "[null, true]"},
		{ast.MapLit(ast.Entry(ast.Num(1), ast.Str("one"))), "{1=one}"},
		{ast.Index(ast.Arr(ast.Num(9)), ast.Num(0)), "9"},
		{ast.Bin("==", ast.Arr(ast.Num(1)), ast.Arr(ast.Num(1))), "true"},
		{ast.Bin("!=", ast.Num(1), ast.Str("1")), "true"},
	}
	for _, tc := range cases {
		got, err := interp.evaluate(tc.expr, env)
		if err != nil {
			t.Fatalf("%s: %v", ast.Format(tc.expr), err)
		}
		if runtime.Format(got) != tc.want {
			t.Errorf("%s = %s, want %s", ast.Format(tc.expr), runtime.Format(got), tc.want)
		}
	}
}
