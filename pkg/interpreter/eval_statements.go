package interpreter

import (
	"errors"
	"fmt"
	"io"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/parser"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// execute runs one statement. A stop that surfaced as ErrStopped from an
// expression becomes a halt completion again here.
func (i *Interpreter) execute(node ast.Statement, env *runtime.Environment) (completion, error) {
	c, err := i.executeStatement(node, env)
	if err != nil {
		if errors.Is(err, ErrStopped) {
			return completion{kind: completeHalt, node: node}, nil
		}
		return normal, err
	}
	return c, nil
}

func (i *Interpreter) executeStatement(node ast.Statement, env *runtime.Environment) (completion, error) {
	switch n := node.(type) {
	case *ast.Program:
		return i.executeList(n.Body, env)
	case *ast.BlockStatement:
		return i.executeList(n.Body, env.Extend())
	case *ast.ExpressionStatement:
		_, err := i.evaluate(n.Expression, env)
		return normal, err
	case *ast.PrintStatement:
		return i.executePrint(n, env)
	case *ast.IfStatement:
		return i.executeIf(n, env)
	case *ast.WhileStatement:
		return i.executeWhile(n, env)
	case *ast.DoWhileStatement:
		return i.executeDoWhile(n, env)
	case *ast.ForStatement:
		return i.executeFor(n, env)
	case *ast.ForeachStatement:
		return i.executeForeach(n, env)
	case *ast.BreakStatement:
		return completion{kind: completeBreak, node: n}, nil
	case *ast.ContinueStatement:
		return completion{kind: completeContinue, node: n}, nil
	case *ast.StopStatement:
		return completion{kind: completeHalt, node: n}, nil
	case *ast.ReturnStatement:
		var result runtime.Value = runtime.Null
		if n.Argument != nil {
			val, err := i.evaluate(n.Argument, env)
			if err != nil {
				return normal, err
			}
			result = val
		}
		return completion{kind: completeReturn, value: result, node: n}, nil
	case *ast.FunctionDefinition:
		i.declare(n, env)
		return normal, nil
	case *ast.UseStatement:
		for _, name := range n.Modules {
			if err := i.LoadModule(name); err != nil {
				return normal, fail(n, err)
			}
		}
		return normal, nil
	case *ast.IncludeStatement:
		return i.executeInclude(n, env)
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) executeList(body []ast.Statement, env *runtime.Environment) (completion, error) {
	for _, stmt := range body {
		c, err := i.execute(stmt, env)
		if err != nil || c.abrupt() {
			return c, err
		}
	}
	return normal, nil
}

func (i *Interpreter) executePrint(n *ast.PrintStatement, env *runtime.Environment) (completion, error) {
	val, err := i.evaluate(n.Expression, env)
	if err != nil {
		return normal, err
	}
	text := runtime.Format(val)
	if n.Newline {
		text += "\n"
	}
	if _, err := io.WriteString(i.out, text); err != nil {
		return normal, fail(n, err)
	}
	return normal, nil
}

func (i *Interpreter) executeIf(n *ast.IfStatement, env *runtime.Environment) (completion, error) {
	cond, err := i.evaluate(n.Condition, env)
	if err != nil {
		return normal, err
	}
	if runtime.Truthy(cond) {
		return i.execute(n.Then, env)
	}
	if n.Else != nil {
		return i.execute(n.Else, env)
	}
	return normal, nil
}

func (i *Interpreter) executeWhile(n *ast.WhileStatement, env *runtime.Environment) (completion, error) {
	for {
		cond, err := i.evaluate(n.Condition, env)
		if err != nil {
			return normal, err
		}
		if !runtime.Truthy(cond) {
			return normal, nil
		}
		c, err := i.execute(n.Body, env)
		if err != nil {
			return normal, err
		}
		if exit, out := loopExit(c); exit {
			return out, nil
		}
	}
}

func (i *Interpreter) executeDoWhile(n *ast.DoWhileStatement, env *runtime.Environment) (completion, error) {
	for {
		c, err := i.execute(n.Body, env)
		if err != nil {
			return normal, err
		}
		if exit, out := loopExit(c); exit {
			return out, nil
		}
		cond, err := i.evaluate(n.Condition, env)
		if err != nil {
			return normal, err
		}
		if !runtime.Truthy(cond) {
			return normal, nil
		}
	}
}

// executeFor gives the loop variables their own scope, and each run of the
// body a fresh scope below it.
func (i *Interpreter) executeFor(n *ast.ForStatement, env *runtime.Environment) (completion, error) {
	scope := env.Extend()
	if n.Init != nil {
		c, err := i.execute(n.Init, scope)
		if err != nil || c.abrupt() {
			return c, err
		}
	}
	for {
		if n.Condition != nil {
			cond, err := i.evaluate(n.Condition, scope)
			if err != nil {
				return normal, err
			}
			if !runtime.Truthy(cond) {
				return normal, nil
			}
		}
		c, err := i.execute(n.Body, scope.Extend())
		if err != nil {
			return normal, err
		}
		if exit, out := loopExit(c); exit {
			return out, nil
		}
		if n.Step != nil {
			c, err := i.execute(n.Step, scope)
			if err != nil || c.abrupt() {
				return c, err
			}
		}
	}
}

// executeForeach iterates a snapshot of the container. Arrays bind the
// element (and the index as key), maps bind key and value, or a [key, value]
// pair in the single-variable form, and strings bind one character at a time.
func (i *Interpreter) executeForeach(n *ast.ForeachStatement, env *runtime.Environment) (completion, error) {
	iterable, err := i.evaluate(n.Iterable, env)
	if err != nil {
		return normal, err
	}
	var keys, values []runtime.Value
	switch container := iterable.(type) {
	case *runtime.ArrayValue:
		values = append(values, container.Elements...)
		for idx := range values {
			keys = append(keys, runtime.Number(float64(idx)))
		}
	case *runtime.MapValue:
		container.Range(func(k, v runtime.Value) bool {
			keys = append(keys, k)
			if n.Key == nil {
				v = runtime.NewArray(k, v)
			}
			values = append(values, v)
			return true
		})
	case runtime.StringValue:
		idx := 0
		for _, r := range container.Val {
			keys = append(keys, runtime.Number(float64(idx)))
			values = append(values, runtime.String(string(r)))
			idx++
		}
	default:
		return normal, fail(n.Iterable, &runtime.TypeError{
			Function: "for",
			Expected: []runtime.Kind{runtime.KindArray, runtime.KindMap, runtime.KindString},
			Got:      iterable.Kind(),
		})
	}
	for idx, value := range values {
		scope := env.Extend()
		if n.Key != nil {
			scope.Define(n.Key.Name, keys[idx])
		}
		scope.Define(n.Value.Name, value)
		c, err := i.execute(n.Body, scope)
		if err != nil {
			return normal, err
		}
		if exit, out := loopExit(c); exit {
			return out, nil
		}
	}
	return normal, nil
}

// executeInclude loads, hoists and runs another source file in the global
// scope.
func (i *Interpreter) executeInclude(n *ast.IncludeStatement, env *runtime.Environment) (completion, error) {
	val, err := i.evaluate(n.Path, env)
	if err != nil {
		return normal, err
	}
	path, ok := val.(runtime.StringValue)
	if !ok {
		return normal, fail(n.Path, &runtime.TypeError{Function: "include", Expected: []runtime.Kind{runtime.KindString}, Got: val.Kind()})
	}
	if i.includer == nil {
		return normal, failf(n, "include '%s': no include path configured", path.Val)
	}
	if i.including[path.Val] {
		return normal, failf(n, "include '%s': include cycle", path.Val)
	}
	source, err := i.includer.Include(path.Val)
	if err != nil {
		return normal, fail(n, fmt.Errorf("include '%s': %w", path.Val, err))
	}
	program, diags, err := parser.ParseSource(source)
	if err != nil {
		return normal, fail(n, fmt.Errorf("include '%s': %w", path.Val, err))
	}
	if diags.HasErrors() {
		return normal, failf(n, "include '%s' has parse errors:\n%s", path.Val, diags)
	}

	i.including[path.Val] = true
	defer delete(i.including, path.Val)
	if err := i.Hoist(program); err != nil {
		return normal, err
	}
	c, err := i.execute(program, i.global)
	if err != nil {
		return normal, err
	}
	if c.kind == completeHalt {
		return c, nil
	}
	return normal, topLevel(c)
}
