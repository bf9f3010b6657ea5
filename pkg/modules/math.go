package modules

import (
	"math"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// Math registers numeric functions over float64.
func Math() runtime.Module {
	return runtime.ModuleFunc(func(functions *runtime.Functions) {
		unary := map[string]func(float64) float64{
			"abs":   math.Abs,
			"ceil":  math.Ceil,
			"floor": math.Floor,
			"round": math.Round,
			"sqrt":  math.Sqrt,
			"sin":   math.Sin,
			"cos":   math.Cos,
			"tan":   math.Tan,
			"log":   math.Log,
			"exp":   math.Exp,
		}
		for name, fn := range unary {
			name, fn := name, fn
			functions.Register(runtime.NativeFunction{Name: name, Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
				x, err := num(name, args, 0)
				if err != nil {
					return nil, err
				}
				return runtime.Number(fn(x)), nil
			}})
		}
		functions.Register(runtime.NativeFunction{Name: "pow", Arity: 2, Impl: func(args []runtime.Value) (runtime.Value, error) {
			base, err := num("pow", args, 0)
			if err != nil {
				return nil, err
			}
			exp, err := num("pow", args, 1)
			if err != nil {
				return nil, err
			}
			return runtime.Number(math.Pow(base, exp)), nil
		}})
		functions.Register(runtime.NativeFunction{Name: "min", Arity: -1, Impl: extremum("min", math.Min)})
		functions.Register(runtime.NativeFunction{Name: "max", Arity: -1, Impl: extremum("max", math.Max)})
	})
}

func extremum(name string, pick func(a, b float64) float64) runtime.NativeFunc {
	return func(args []runtime.Value) (runtime.Value, error) {
		if err := runtime.CheckMinArity(name, args, 1); err != nil {
			return nil, err
		}
		result, err := num(name, args, 0)
		if err != nil {
			return nil, err
		}
		for idx := 1; idx < len(args); idx++ {
			x, err := num(name, args, idx)
			if err != nil {
				return nil, err
			}
			result = pick(result, x)
		}
		return runtime.Number(result), nil
	}
}
