// Package modules holds the native modules a program can `use`.
package modules

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// Builtin returns the catalog of native modules by name. Functions that
// print write to out.
func Builtin(out io.Writer) map[string]runtime.Module {
	return map[string]runtime.Module{
		"functional": Functional(),
		"std":        Std(out),
		"math":       Math(),
		"types":      Types(),
	}
}

// Names lists a catalog's module names in sorted order.
func Names(catalog map[string]runtime.Module) []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exports returns the function names a module registers, without touching
// any shared registry.
func Exports(module runtime.Module) []string {
	scratch := runtime.NewFunctions()
	module.Init(scratch)
	return scratch.Names()
}

// callable extracts the function held by args[index].
func callable(name string, args []runtime.Value, index int) (runtime.Function, error) {
	if err := runtime.Expect(name, args, index, runtime.KindFunction); err != nil {
		return nil, err
	}
	return args[index].(*runtime.FunctionValue).Fn, nil
}

func str(name string, args []runtime.Value, index int) (string, error) {
	if err := runtime.Expect(name, args, index, runtime.KindString); err != nil {
		return "", err
	}
	return args[index].(runtime.StringValue).Val, nil
}

func num(name string, args []runtime.Value, index int) (float64, error) {
	if err := runtime.Expect(name, args, index, runtime.KindNumber); err != nil {
		return 0, err
	}
	return args[index].(runtime.NumberValue).Val, nil
}

// integer reads an integral number argument small enough to index with.
func integer(name string, args []runtime.Value, index int) (int, error) {
	n, err := num(name, args, index)
	if err != nil {
		return 0, err
	}
	if !(runtime.NumberValue{Val: n}).IsIntegral() || math.Abs(n) > math.MaxInt32 {
		return 0, fmt.Errorf("%s: argument %d must be an integer, got %s", name, index+1, runtime.Format(args[index]))
	}
	return int(n), nil
}
