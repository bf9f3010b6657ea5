package modules

import (
	"fmt"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// Types registers kind inspection and conversion.
func Types() runtime.Module {
	return runtime.ModuleFunc(func(functions *runtime.Functions) {
		functions.Register(runtime.NativeFunction{Name: "typeof", Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			return runtime.String(args[0].Kind().String()), nil
		}})
		functions.Register(runtime.NativeFunction{Name: "string", Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			return runtime.String(runtime.Format(args[0])), nil
		}})
		functions.Register(runtime.NativeFunction{Name: "number", Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			n, ok := runtime.ToNumber(args[0])
			if !ok {
				return nil, fmt.Errorf("number: cannot convert %s %q", args[0].Kind(), runtime.Format(args[0]))
			}
			return runtime.Number(n), nil
		}})
	})
}
