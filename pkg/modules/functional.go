package modules

import (
	"sort"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

var containerKinds = []runtime.Kind{runtime.KindArray, runtime.KindMap}

// Functional registers foreach, map, filter, reduce and sortby. Callbacks
// receive (element) for arrays and (key, value) for maps.
func Functional() runtime.Module {
	return runtime.ModuleFunc(func(functions *runtime.Functions) {
		functions.Register(runtime.NativeFunction{Name: "foreach", Arity: 2, Impl: foreach})
		functions.Register(runtime.NativeFunction{Name: "map", Arity: 2, Impl: mapValues})
		functions.Register(runtime.NativeFunction{Name: "filter", Arity: 2, Impl: filter})
		functions.Register(runtime.NativeFunction{Name: "reduce", Arity: 3, Impl: reduce})
		functions.Register(runtime.NativeFunction{Name: "sortby", Arity: 2, Impl: sortBy})
	})
}

// each calls visit for every element or entry of a container with the
// callback arguments that entry gets.
func each(name string, container runtime.Value, visit func(key runtime.Value, args ...runtime.Value) error) error {
	switch c := container.(type) {
	case *runtime.ArrayValue:
		for _, el := range c.Copy().Elements {
			if err := visit(nil, el); err != nil {
				return err
			}
		}
		return nil
	case *runtime.MapValue:
		var err error
		c.Copy().Range(func(k, v runtime.Value) bool {
			err = visit(k, k, v)
			return err == nil
		})
		return err
	}
	return &runtime.TypeError{Function: name, Arg: 1, Expected: containerKinds, Got: container.Kind()}
}

func foreach(args []runtime.Value) (runtime.Value, error) {
	fn, err := callable("foreach", args, 1)
	if err != nil {
		return nil, err
	}
	err = each("foreach", args[0], func(_ runtime.Value, callArgs ...runtime.Value) error {
		_, err := fn.Execute(callArgs...)
		return err
	})
	return runtime.Null, err
}

// mapValues transforms array elements, or map values keeping their keys.
func mapValues(args []runtime.Value) (runtime.Value, error) {
	fn, err := callable("map", args, 1)
	if err != nil {
		return nil, err
	}
	if _, ok := args[0].(*runtime.MapValue); ok {
		out := runtime.NewMap()
		err := each("map", args[0], func(key runtime.Value, callArgs ...runtime.Value) error {
			val, err := fn.Execute(callArgs...)
			if err != nil {
				return err
			}
			return out.Set(key, val)
		})
		return out, err
	}
	var elements []runtime.Value
	err = each("map", args[0], func(_ runtime.Value, callArgs ...runtime.Value) error {
		val, err := fn.Execute(callArgs...)
		elements = append(elements, val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewArray(elements...), nil
}

func filter(args []runtime.Value) (runtime.Value, error) {
	fn, err := callable("filter", args, 1)
	if err != nil {
		return nil, err
	}
	if _, ok := args[0].(*runtime.MapValue); ok {
		out := runtime.NewMap()
		err := each("filter", args[0], func(key runtime.Value, callArgs ...runtime.Value) error {
			keep, err := fn.Execute(callArgs...)
			if err != nil || !runtime.Truthy(keep) {
				return err
			}
			return out.Set(key, callArgs[1])
		})
		return out, err
	}
	var elements []runtime.Value
	err = each("filter", args[0], func(_ runtime.Value, callArgs ...runtime.Value) error {
		keep, err := fn.Execute(callArgs...)
		if err == nil && runtime.Truthy(keep) {
			elements = append(elements, callArgs[0])
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewArray(elements...), nil
}

// reduce folds arrays with accumulator(result, element) and maps with
// accumulator(result, key, value), starting from identity.
func reduce(args []runtime.Value) (runtime.Value, error) {
	fn, err := callable("reduce", args, 2)
	if err != nil {
		return nil, err
	}
	result := args[1]
	err = each("reduce", args[0], func(_ runtime.Value, callArgs ...runtime.Value) error {
		next, err := fn.Execute(append([]runtime.Value{result}, callArgs...)...)
		if err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// sortBy returns a new array ordered by the numbers or strings fn maps each
// element to. Equal keys keep their relative order.
func sortBy(args []runtime.Value) (runtime.Value, error) {
	if err := runtime.Expect("sortby", args, 0, runtime.KindArray); err != nil {
		return nil, err
	}
	fn, err := callable("sortby", args, 1)
	if err != nil {
		return nil, err
	}
	elements := args[0].(*runtime.ArrayValue).Copy().Elements
	keys := make([]runtime.Value, len(elements))
	for idx, el := range elements {
		if keys[idx], err = fn.Execute(el); err != nil {
			return nil, err
		}
	}
	order := make([]int, len(elements))
	for idx := range order {
		order[idx] = idx
	}
	var cmpErr error
	sort.SliceStable(order, func(a, b int) bool {
		cmp, err := runtime.Compare("<", keys[order[a]], keys[order[b]])
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return cmp < 0
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	sorted := make([]runtime.Value, len(order))
	for idx, from := range order {
		sorted[idx] = elements[from]
	}
	return runtime.NewArray(sorted...), nil
}
