package interpreter

import (
	"fmt"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

func (i *Interpreter) evaluate(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.Number(n.Value), nil
	case *ast.StringLiteral:
		return runtime.String(n.Value), nil
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.Identifier:
		val, ok := env.Lookup(n.Name)
		if !ok {
			return nil, failf(n, "undefined variable '%s'", n.Name)
		}
		return val, nil
	case *ast.ArrayLiteral:
		elements := make([]runtime.Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			val, err := i.evaluate(el, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return runtime.NewArray(elements...), nil
	case *ast.MapLiteral:
		return i.evaluateMapLiteral(n, env)
	case *ast.UnaryExpression:
		operand, err := i.evaluate(n.Operand, env)
		if err != nil {
			return nil, err
		}
		result, err := runtime.UnaryOp(n.Operator, operand)
		return result, fail(n, err)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n, env)
	case *ast.TernaryExpression:
		cond, err := i.evaluate(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(cond) {
			return i.evaluate(n.Consequent, env)
		}
		return i.evaluate(n.Alternate, env)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env)
	case *ast.UpdateExpression:
		return i.evaluateUpdate(n, env)
	case *ast.CallExpression:
		return i.evaluateCall(n, env)
	case *ast.IndexExpression:
		obj, err := i.evaluate(n.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := i.evaluate(n.Index, env)
		if err != nil {
			return nil, err
		}
		result, err := readIndex(obj, key)
		return result, fail(n, err)
	case *ast.MemberExpression:
		obj, err := i.evaluate(n.Object, env)
		if err != nil {
			return nil, err
		}
		result, err := readIndex(obj, runtime.String(n.Property.Name))
		return result, fail(n, err)
	case *ast.FunctionLiteral:
		return runtime.NewFunctionValue("", i.newFunction("", n.Params, n.Body, env)), nil
	case *ast.FunctionReference:
		fn, ok := i.functions.Get(n.Name)
		if !ok {
			return nil, failf(n, "unknown function '%s'", n.Name)
		}
		return runtime.NewFunctionValue(n.Name, fn), nil
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateMapLiteral(n *ast.MapLiteral, env *runtime.Environment) (runtime.Value, error) {
	m := runtime.NewMap()
	for _, entry := range n.Entries {
		key, err := i.evaluate(entry.Key, env)
		if err != nil {
			return nil, err
		}
		val, err := i.evaluate(entry.Value, env)
		if err != nil {
			return nil, err
		}
		if err := m.Set(key, val); err != nil {
			return nil, fail(entry, err)
		}
	}
	return m, nil
}

func (i *Interpreter) evaluateBinary(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluate(n.Left, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "&&":
		if !runtime.Truthy(left) {
			return runtime.False, nil
		}
	case "||":
		if runtime.Truthy(left) {
			return runtime.True, nil
		}
	}
	right, err := i.evaluate(n.Right, env)
	if err != nil {
		return nil, err
	}
	result, err := runtime.BinaryOp(n.Operator, left, right)
	return result, fail(n, err)
}

// reference is a readable and writable location named by an assignment
// target.
type reference struct {
	get func() (runtime.Value, error)
	set func(runtime.Value) error
}

// resolve evaluates the container and key parts of target once.
func (i *Interpreter) resolve(target ast.AssignmentTarget, env *runtime.Environment) (reference, error) {
	switch t := target.(type) {
	case *ast.Identifier:
		return reference{
			get: func() (runtime.Value, error) {
				val, ok := env.Lookup(t.Name)
				if !ok {
					return nil, failf(t, "undefined variable '%s'", t.Name)
				}
				return val, nil
			},
			set: func(v runtime.Value) error {
				env.Set(t.Name, v)
				return nil
			},
		}, nil
	case *ast.IndexExpression:
		obj, err := i.evaluate(t.Object, env)
		if err != nil {
			return reference{}, err
		}
		key, err := i.evaluate(t.Index, env)
		if err != nil {
			return reference{}, err
		}
		return elementReference(t, obj, key), nil
	case *ast.MemberExpression:
		obj, err := i.evaluate(t.Object, env)
		if err != nil {
			return reference{}, err
		}
		return elementReference(t, obj, runtime.String(t.Property.Name)), nil
	}
	return reference{}, fmt.Errorf("unsupported assignment target: %s", target.NodeType())
}

func elementReference(node ast.Node, obj, key runtime.Value) reference {
	return reference{
		get: func() (runtime.Value, error) {
			val, err := readIndex(obj, key)
			return val, fail(node, err)
		},
		set: func(v runtime.Value) error {
			return fail(node, writeIndex(obj, key, v))
		},
	}
}

func (i *Interpreter) evaluateAssignment(n *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	ref, err := i.resolve(n.Target, env)
	if err != nil {
		return nil, err
	}
	if n.Operator == "=" {
		val, err := i.evaluate(n.Value, env)
		if err != nil {
			return nil, err
		}
		return val, ref.set(val)
	}
	current, err := ref.get()
	if err != nil {
		return nil, err
	}
	operand, err := i.evaluate(n.Value, env)
	if err != nil {
		return nil, err
	}
	op := n.Operator[:len(n.Operator)-1]
	result, err := runtime.BinaryOp(op, current, operand)
	if err != nil {
		return nil, fail(n, err)
	}
	return result, ref.set(result)
}

func (i *Interpreter) evaluateUpdate(n *ast.UpdateExpression, env *runtime.Environment) (runtime.Value, error) {
	ref, err := i.resolve(n.Target, env)
	if err != nil {
		return nil, err
	}
	current, err := ref.get()
	if err != nil {
		return nil, err
	}
	num, ok := current.(runtime.NumberValue)
	if !ok {
		return nil, fail(n, &runtime.TypeError{Function: "operator " + n.Operator, Expected: []runtime.Kind{runtime.KindNumber}, Got: current.Kind()})
	}
	delta := 1.0
	if n.Operator == "--" {
		delta = -1
	}
	next := runtime.Number(num.Val + delta)
	if err := ref.set(next); err != nil {
		return nil, err
	}
	if n.Prefix {
		return next, nil
	}
	return current, nil
}

func (i *Interpreter) evaluateCall(n *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	fn, err := i.callee(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, err := i.evaluate(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	result, err := fn.Execute(args...)
	if err != nil {
		return nil, fail(n, err)
	}
	return result, nil
}

// callee resolves what a call invokes. A bare name prefers a variable holding
// a function, then the registry.
func (i *Interpreter) callee(expr ast.Expression, env *runtime.Environment) (runtime.Function, error) {
	if id, ok := expr.(*ast.Identifier); ok {
		if val, found := env.Lookup(id.Name); found {
			if fn, ok := val.(*runtime.FunctionValue); ok {
				return fn.Fn, nil
			}
		}
		if fn, ok := i.functions.Get(id.Name); ok {
			return fn, nil
		}
		return nil, failf(id, "unknown function '%s'", id.Name)
	}
	val, err := i.evaluate(expr, env)
	if err != nil {
		return nil, err
	}
	fn, ok := val.(*runtime.FunctionValue)
	if !ok {
		return nil, fail(expr, &runtime.TypeError{Function: "call", Expected: []runtime.Kind{runtime.KindFunction}, Got: val.Kind()})
	}
	return fn.Fn, nil
}

func readIndex(obj, key runtime.Value) (runtime.Value, error) {
	switch container := obj.(type) {
	case *runtime.ArrayValue:
		return container.Get(key)
	case *runtime.MapValue:
		val, ok, err := container.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return runtime.Null, nil
		}
		return val, nil
	case runtime.StringValue:
		chars := []rune(container.Val)
		num, ok := key.(runtime.NumberValue)
		if !ok || !num.IsIntegral() {
			return nil, fmt.Errorf("string index must be an integer, got %s", runtime.Format(key))
		}
		if num.Val < 0 || num.Val >= float64(len(chars)) {
			return nil, fmt.Errorf("string index %d out of range [0, %d)", num.Int(), len(chars))
		}
		return runtime.String(string(chars[num.Int()])), nil
	}
	return nil, &runtime.TypeError{
		Function: "index",
		Expected: []runtime.Kind{runtime.KindArray, runtime.KindMap, runtime.KindString},
		Got:      obj.Kind(),
	}
}

func writeIndex(obj, key, val runtime.Value) error {
	switch container := obj.(type) {
	case *runtime.ArrayValue:
		return container.Set(key, val)
	case *runtime.MapValue:
		return container.Set(key, val)
	case runtime.StringValue:
		return fmt.Errorf("strings are immutable")
	}
	return &runtime.TypeError{
		Function: "index assignment",
		Expected: []runtime.Kind{runtime.KindArray, runtime.KindMap},
		Got:      obj.Kind(),
	}
}
