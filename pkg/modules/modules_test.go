package modules_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/modules"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

func registry(t *testing.T, out *bytes.Buffer) *runtime.Functions {
	t.Helper()
	functions := runtime.NewFunctions()
	for _, module := range modules.Builtin(out) {
		module.Init(functions)
	}
	return functions
}

func call(t *testing.T, functions *runtime.Functions, name string, args ...runtime.Value) (runtime.Value, error) {
	t.Helper()
	fn, ok := functions.Get(name)
	if !ok {
		t.Fatalf("function %s is not registered", name)
	}
	return fn.Execute(args...)
}

func mustCall(t *testing.T, functions *runtime.Functions, name string, args ...runtime.Value) runtime.Value {
	t.Helper()
	result, err := call(t, functions, name, args...)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	return result
}

func native(name string, arity int, impl runtime.NativeFunc) *runtime.FunctionValue {
	return runtime.NewFunctionValue(name, runtime.NativeFunction{Name: name, Arity: arity, Impl: impl})
}

var add = native("add", 2, func(args []runtime.Value) (runtime.Value, error) {
	return runtime.BinaryOp("+", args[0], args[1])
})

func numbers(values ...float64) *runtime.ArrayValue {
	elements := make([]runtime.Value, len(values))
	for i, v := range values {
		elements[i] = runtime.Number(v)
	}
	return runtime.NewArray(elements...)
}

func TestReduceArrayFoldsLeftToRight(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	got := mustCall(t, functions, "reduce", numbers(1, 2, 3), runtime.Number(0), add)
	if !runtime.Equal(got, runtime.Number(6)) {
		t.Fatalf("reduce([1,2,3], 0, add) = %s, want 6", runtime.Format(got))
	}

	var order []string
	concat := native("concat", 2, func(args []runtime.Value) (runtime.Value, error) {
		order = append(order, runtime.Format(args[1]))
		return runtime.BinaryOp("+", args[0], args[1])
	})
	got = mustCall(t, functions, "reduce", runtime.NewArray(runtime.String("a"), runtime.String("b")), runtime.String(">"), concat)
	if runtime.Format(got) != ">ab" || len(order) != 2 || order[0] != "a" {
		t.Fatalf("unexpected fold %q (order %v)", runtime.Format(got), order)
	}
}

func TestReduceEmptyArrayReturnsIdentity(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	identity := runtime.NewArray()
	got := mustCall(t, functions, "reduce", runtime.NewArray(), identity, add)
	if got != runtime.Value(identity) {
		t.Fatalf("expected the identity instance back, got %s", runtime.Format(got))
	}
}

func TestReduceMapUsesTernaryAccumulator(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	m := runtime.NewMap()
	_ = m.Set(runtime.String("a"), runtime.Number(1))
	_ = m.Set(runtime.String("b"), runtime.Number(2))

	var keys []string
	sumValues := native("sum", 3, func(args []runtime.Value) (runtime.Value, error) {
		keys = append(keys, runtime.Format(args[1]))
		return runtime.BinaryOp("+", args[0], args[2])
	})
	got := mustCall(t, functions, "reduce", m, runtime.Number(0), sumValues)
	if !runtime.Equal(got, runtime.Number(3)) {
		t.Fatalf("reduce over map = %s, want 3", runtime.Format(got))
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("expected keys in insertion order, got %v", keys)
	}

	_, err := call(t, functions, "reduce", m, runtime.Number(0), add)
	var arity *runtime.ArityError
	if !errors.As(err, &arity) || arity.Function != "add" || arity.Got != 3 {
		t.Fatalf("expected the binary accumulator to reject a map fold, got %v", err)
	}
}

func TestReduceValidatesArguments(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	var typeErr *runtime.TypeError

	_, err := call(t, functions, "reduce", runtime.Number(5), runtime.Number(0), add)
	if !errors.As(err, &typeErr) || typeErr.Arg != 1 {
		t.Fatalf("expected TypeError on argument 1, got %v", err)
	}
	_, err = call(t, functions, "reduce", numbers(1), runtime.Number(0), runtime.Number(5))
	if !errors.As(err, &typeErr) || typeErr.Arg != 3 || typeErr.Got != runtime.KindNumber {
		t.Fatalf("expected TypeError on argument 3, got %v", err)
	}
	_, err = call(t, functions, "reduce", numbers(1), runtime.Number(0))
	var arity *runtime.ArityError
	if !errors.As(err, &arity) || arity.Expected != 3 || arity.Got != 2 {
		t.Fatalf("expected ArityError for two arguments, got %v", err)
	}
	if err.Error() != "reduce: expected 3 arguments, got 2" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFunctionalMapFilterForeach(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	double := native("double", 1, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.BinaryOp("*", args[0], runtime.Number(2))
	})
	odd := native("odd", 1, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.BinaryOp("%", args[0], runtime.Number(2))
	})

	if got := runtime.Format(mustCall(t, functions, "map", numbers(1, 2, 3), double)); got != "[2, 4, 6]" {
		t.Fatalf("map = %s", got)
	}
	if got := runtime.Format(mustCall(t, functions, "filter", numbers(1, 2, 3, 4, 5), odd)); got != "[1, 3, 5]" {
		t.Fatalf("filter = %s", got)
	}

	m := runtime.NewMap()
	_ = m.Set(runtime.String("x"), runtime.Number(1))
	_ = m.Set(runtime.String("y"), runtime.Number(2))
	scale := native("scale", 2, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.BinaryOp("*", args[1], runtime.Number(10))
	})
	if got := runtime.Format(mustCall(t, functions, "map", m, scale)); got != "{x=10, y=20}" {
		t.Fatalf("map over map = %s", got)
	}
	keepY := native("keepY", 2, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(runtime.Equal(args[0], runtime.String("y"))), nil
	})
	if got := runtime.Format(mustCall(t, functions, "filter", m, keepY)); got != "{y=2}" {
		t.Fatalf("filter over map = %s", got)
	}

	seen := 0
	count := native("count", 1, func(args []runtime.Value) (runtime.Value, error) {
		seen++
		return nil, nil
	})
	if got := mustCall(t, functions, "foreach", numbers(7, 8), count); got != runtime.Null || seen != 2 {
		t.Fatalf("foreach returned %s after %d calls", runtime.Format(got), seen)
	}
	if _, err := call(t, functions, "map", runtime.String("abc"), double); err == nil {
		t.Fatalf("expected map over a string to fail")
	}
}

func TestFunctionalPropagatesCallbackErrors(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	boom := errors.New("boom")
	failing := native("failing", 1, func([]runtime.Value) (runtime.Value, error) { return nil, boom })
	for _, name := range []string{"foreach", "map", "filter", "sortby"} {
		if _, err := call(t, functions, name, numbers(1), failing); !errors.Is(err, boom) {
			t.Errorf("%s: expected callback error to propagate, got %v", name, err)
		}
	}
}

func TestSortByIsStable(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	words := runtime.NewArray(runtime.String("pear"), runtime.String("fig"), runtime.String("kiwi"), runtime.String("apple"))
	byLength := native("len", 1, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(float64(len(args[0].(runtime.StringValue).Val))), nil
	})
	got := mustCall(t, functions, "sortby", words, byLength)
	if runtime.Format(got) != "[fig, pear, kiwi, apple]" {
		t.Fatalf("sortby = %s", runtime.Format(got))
	}
	if runtime.Format(words) != "[pear, fig, kiwi, apple]" {
		t.Fatalf("sortby mutated its input: %s", runtime.Format(words))
	}
}

func TestStdStrings(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	s := runtime.String
	cases := []struct {
		name string
		args []runtime.Value
		want string
	}{
		{"length", []runtime.Value{s("héllo")}, "5"},
		{"length", []runtime.Value{numbers(1, 2)}, "2"},
		{"substring", []runtime.Value{s("abcdef"), runtime.Number(2)}, "cdef"},
		{"substring", []runtime.Value{s("abcdef"), runtime.Number(1), runtime.Number(3)}, "bc"},
		{"charAt", []runtime.Value{s("AB"), runtime.Number(1)}, "66"},
		{"indexOf", []runtime.Value{s("ab-ab"), s("ab"), runtime.Number(1)}, "3"},
		{"indexOf", []runtime.Value{s("abc"), s("z")}, "-1"},
		{"split", []runtime.Value{s("a,b,,c"), s(",")}, "[a, b, , c]"},
		{"join", []runtime.Value{numbers(1, 2, 3), s("-")}, "1-2-3"},
		{"trim", []runtime.Value{s("  x \n")}, "x"},
		{"toUpperCase", []runtime.Value{s("straße")}, "STRASSE"},
		{"toUpperCase", []runtime.Value{s("i"), s("tr")}, "İ"},
		{"toLowerCase", []runtime.Value{s("ÀB")}, "àb"},
		{"sprintf", []runtime.Value{s("%d|%5.2f|%s|%x"), runtime.Number(42), runtime.Number(3.14159), numbers(1), runtime.Number(255)}, "42| 3.14|[1]|ff"},
		{"newarray", []runtime.Value{runtime.Number(2), runtime.Number(1)}, "[[null], [null]]"},
	}
	for _, tc := range cases {
		got, err := call(t, functions, tc.name, tc.args...)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if runtime.Format(got) != tc.want {
			t.Errorf("%s(%v) = %q, want %q", tc.name, tc.args, runtime.Format(got), tc.want)
		}
	}
}

func TestStdValidatesArguments(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	var typeErr *runtime.TypeError
	if _, err := call(t, functions, "length", runtime.Number(3)); !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError from length(3), got %v", err)
	}
	if _, err := call(t, functions, "substring", runtime.String("abc"), runtime.Number(2), runtime.Number(9)); err == nil {
		t.Fatalf("expected out of range substring to fail")
	}
	var arity *runtime.ArityError
	if _, err := call(t, functions, "trim"); !errors.As(err, &arity) {
		t.Fatalf("expected ArityError from trim(), got %v", err)
	}
	if _, err := call(t, functions, "toUpperCase", runtime.String("x"), runtime.String("not a locale!")); err == nil {
		t.Fatalf("expected invalid locale to fail")
	}
}

func TestStdRejectsInvalidIndices(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	s, n := runtime.String, runtime.Number
	nan := n(math.NaN())
	cases := map[string]struct {
		fn   string
		args []runtime.Value
	}{
		"substring NaN start":   {"substring", []runtime.Value{s("abc"), nan}},
		"substring NaN end":     {"substring", []runtime.Value{s("abc"), n(0), nan}},
		"substring fraction":    {"substring", []runtime.Value{s("abc"), n(1.5)}},
		"substring huge end":    {"substring", []runtime.Value{s("abc"), n(0), n(1e20)}},
		"charAt NaN":            {"charAt", []runtime.Value{s("abc"), nan}},
		"charAt infinity":       {"charAt", []runtime.Value{s("abc"), n(math.Inf(1))}},
		"indexOf NaN from":      {"indexOf", []runtime.Value{s("abc"), s("b"), nan}},
		"newarray NaN":          {"newarray", []runtime.Value{nan}},
		"newarray too large":    {"newarray", []runtime.Value{n(1e12)}},
		"newarray nested large": {"newarray", []runtime.Value{n(1 << 14), n(1 << 14)}},
		"rand NaN":              {"rand", []runtime.Value{nan}},
	}
	for name, tc := range cases {
		if _, err := call(t, functions, tc.fn, tc.args...); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestEchoWritesToOutput(t *testing.T) {
	var out bytes.Buffer
	functions := registry(t, &out)
	mustCall(t, functions, "echo", runtime.String("a"), runtime.Number(1), runtime.Null)
	if out.String() != "a 1 null\n" {
		t.Fatalf("echo wrote %q", out.String())
	}
}

func TestRandRespectsRange(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	for i := 0; i < 50; i++ {
		n := mustCall(t, functions, "rand", runtime.Number(3), runtime.Number(6)).(runtime.NumberValue)
		if n.Val < 3 || n.Val >= 6 || !n.IsIntegral() {
			t.Fatalf("rand(3, 6) = %v", n.Val)
		}
		f := mustCall(t, functions, "rand").(runtime.NumberValue)
		if f.Val < 0 || f.Val >= 1 {
			t.Fatalf("rand() = %v", f.Val)
		}
	}
}

func TestMathAndTypes(t *testing.T) {
	functions := registry(t, &bytes.Buffer{})
	checks := map[string]runtime.Value{
		"9":        mustCall(t, functions, "max", runtime.Number(3), runtime.Number(9), runtime.Number(-1)),
		"-1":       mustCall(t, functions, "min", runtime.Number(3), runtime.Number(9), runtime.Number(-1)),
		"8":        mustCall(t, functions, "pow", runtime.Number(2), runtime.Number(3)),
		"4":        mustCall(t, functions, "floor", runtime.Number(4.7)),
		"3":        mustCall(t, functions, "abs", runtime.Number(-3)),
		"map":      mustCall(t, functions, "typeof", runtime.NewMap()),
		"function": mustCall(t, functions, "typeof", add),
		"[1, 2]":   mustCall(t, functions, "string", numbers(1, 2)),
		"12.5":     mustCall(t, functions, "number", runtime.String(" 12.5 ")),
	}
	for want, got := range checks {
		if runtime.Format(got) != want {
			t.Errorf("got %q, want %q", runtime.Format(got), want)
		}
	}
	if _, err := call(t, functions, "number", runtime.String("twelve")); err == nil {
		t.Fatalf("expected number(\"twelve\") to fail")
	}
	var typeErr *runtime.TypeError
	if _, err := call(t, functions, "sqrt", runtime.String("4")); !errors.As(err, &typeErr) || typeErr.Expected[0] != runtime.KindNumber {
		t.Fatalf("expected TypeError naming number, got %v", err)
	}
}

func TestExportsDoNotTouchRegistry(t *testing.T) {
	names := modules.Exports(modules.Functional())
	want := []string{"filter", "foreach", "map", "reduce", "sortby"}
	if len(names) != len(want) {
		t.Fatalf("exports = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("exports = %v, want %v", names, want)
		}
	}
	catalog := modules.Builtin(&bytes.Buffer{})
	if got := modules.Names(catalog); len(got) != 4 || got[0] != "functional" || got[3] != "types" {
		t.Fatalf("unexpected catalog names %v", got)
	}
}
