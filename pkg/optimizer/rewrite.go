package optimizer

import "github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"

// rewriter rebuilds a tree bottom-up. Nodes are copied only when a child
// changes, so untouched subtrees are shared with the input and the input is
// never mutated.
//
// expr and stmt run on a node after its children were rewritten. stmt may
// return nil to drop the statement. list runs on every statement list after
// its elements were rewritten.
type rewriter struct {
	expr func(ast.Expression) ast.Expression
	stmt func(ast.Statement) ast.Statement
	list func([]ast.Statement) []ast.Statement
}

func (r *rewriter) statement(node ast.Statement) ast.Statement {
	if node == nil {
		return nil
	}
	var out ast.Statement = node
	switch n := node.(type) {
	case *ast.Program:
		if body, changed := r.statements(n.Body); changed {
			cp := *n
			cp.Body = body
			out = &cp
		}
	case *ast.BlockStatement:
		if body, changed := r.statements(n.Body); changed {
			cp := *n
			cp.Body = body
			out = &cp
		}
	case *ast.ExpressionStatement:
		if e := r.expression(n.Expression); e != n.Expression {
			cp := *n
			cp.Expression = e
			out = &cp
		}
	case *ast.PrintStatement:
		if e := r.expression(n.Expression); e != n.Expression {
			cp := *n
			cp.Expression = e
			out = &cp
		}
	case *ast.IfStatement:
		cond := r.expression(n.Condition)
		then := r.body(n.Then)
		otherwise := r.statement(n.Else)
		if cond != n.Condition || then != n.Then || otherwise != n.Else {
			cp := *n
			cp.Condition, cp.Then, cp.Else = cond, then, otherwise
			out = &cp
		}
	case *ast.WhileStatement:
		cond := r.expression(n.Condition)
		body := r.body(n.Body)
		if cond != n.Condition || body != n.Body {
			cp := *n
			cp.Condition, cp.Body = cond, body
			out = &cp
		}
	case *ast.DoWhileStatement:
		body := r.body(n.Body)
		cond := r.expression(n.Condition)
		if cond != n.Condition || body != n.Body {
			cp := *n
			cp.Condition, cp.Body = cond, body
			out = &cp
		}
	case *ast.ForStatement:
		init := r.statement(n.Init)
		cond := r.expression(n.Condition)
		step := r.statement(n.Step)
		body := r.body(n.Body)
		if init != n.Init || cond != n.Condition || step != n.Step || body != n.Body {
			cp := *n
			cp.Init, cp.Condition, cp.Step, cp.Body = init, cond, step, body
			out = &cp
		}
	case *ast.ForeachStatement:
		iterable := r.expression(n.Iterable)
		body := r.body(n.Body)
		if iterable != n.Iterable || body != n.Body {
			cp := *n
			cp.Iterable, cp.Body = iterable, body
			out = &cp
		}
	case *ast.ReturnStatement:
		if n.Argument != nil {
			if e := r.expression(n.Argument); e != n.Argument {
				cp := *n
				cp.Argument = e
				out = &cp
			}
		}
	case *ast.IncludeStatement:
		if e := r.expression(n.Path); e != n.Path {
			cp := *n
			cp.Path = e
			out = &cp
		}
	case *ast.FunctionDefinition:
		if body := r.body(n.Body); body != n.Body {
			cp := *n
			cp.Body = body
			out = &cp
		}
	}
	if r.stmt != nil {
		return r.stmt(out)
	}
	return out
}

// body rewrites a statement slot that cannot be empty; a dropped statement
// becomes an empty block.
func (r *rewriter) body(node ast.Statement) ast.Statement {
	out := r.statement(node)
	if out == nil {
		block := ast.NewBlockStatement(nil)
		ast.SetPosition(block, node.Position())
		return block
	}
	return out
}

func (r *rewriter) statements(list []ast.Statement) ([]ast.Statement, bool) {
	changed := false
	out := make([]ast.Statement, 0, len(list))
	for _, stmt := range list {
		next := r.statement(stmt)
		if next != stmt {
			changed = true
		}
		if next != nil {
			out = append(out, next)
		}
	}
	if r.list != nil {
		before := len(out)
		out = r.list(out)
		if len(out) != before {
			changed = true
		}
	}
	if !changed {
		return list, false
	}
	return out, true
}

func (r *rewriter) expressions(list []ast.Expression) ([]ast.Expression, bool) {
	var out []ast.Expression
	for i, e := range list {
		next := r.expression(e)
		if next != e && out == nil {
			out = make([]ast.Expression, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = next
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

func (r *rewriter) expression(node ast.Expression) ast.Expression {
	if node == nil {
		return nil
	}
	var out ast.Expression = node
	switch n := node.(type) {
	case *ast.ArrayLiteral:
		if elements, changed := r.expressions(n.Elements); changed {
			cp := *n
			cp.Elements = elements
			out = &cp
		}
	case *ast.MapLiteral:
		var entries []*ast.MapEntry
		for i, entry := range n.Entries {
			key, value := r.expression(entry.Key), r.expression(entry.Value)
			if (key != entry.Key || value != entry.Value) && entries == nil {
				entries = make([]*ast.MapEntry, len(n.Entries))
				copy(entries, n.Entries[:i])
			}
			if entries != nil {
				if key != entry.Key || value != entry.Value {
					cp := *entry
					cp.Key, cp.Value = key, value
					entries[i] = &cp
				} else {
					entries[i] = entry
				}
			}
		}
		if entries != nil {
			cp := *n
			cp.Entries = entries
			out = &cp
		}
	case *ast.UnaryExpression:
		if operand := r.expression(n.Operand); operand != n.Operand {
			cp := *n
			cp.Operand = operand
			out = &cp
		}
	case *ast.BinaryExpression:
		left, right := r.expression(n.Left), r.expression(n.Right)
		if left != n.Left || right != n.Right {
			cp := *n
			cp.Left, cp.Right = left, right
			out = &cp
		}
	case *ast.TernaryExpression:
		cond := r.expression(n.Condition)
		consequent := r.expression(n.Consequent)
		alternate := r.expression(n.Alternate)
		if cond != n.Condition || consequent != n.Consequent || alternate != n.Alternate {
			cp := *n
			cp.Condition, cp.Consequent, cp.Alternate = cond, consequent, alternate
			out = &cp
		}
	case *ast.AssignmentExpression:
		target := r.target(n.Target)
		value := r.expression(n.Value)
		if target != n.Target || value != n.Value {
			cp := *n
			cp.Target, cp.Value = target, value
			out = &cp
		}
	case *ast.UpdateExpression:
		if target := r.target(n.Target); target != n.Target {
			cp := *n
			cp.Target = target
			out = &cp
		}
	case *ast.CallExpression:
		// A bare callee name is resolved against the registry, not read.
		callee := n.Callee
		if _, ok := callee.(*ast.Identifier); !ok {
			callee = r.expression(callee)
		}
		args, changed := r.expressions(n.Arguments)
		if callee != n.Callee || changed {
			cp := *n
			cp.Callee, cp.Arguments = callee, args
			out = &cp
		}
	case *ast.IndexExpression:
		object, index := r.expression(n.Object), r.expression(n.Index)
		if object != n.Object || index != n.Index {
			cp := *n
			cp.Object, cp.Index = object, index
			out = &cp
		}
	case *ast.MemberExpression:
		if object := r.expression(n.Object); object != n.Object {
			cp := *n
			cp.Object = object
			out = &cp
		}
	case *ast.FunctionLiteral:
		if body := r.body(n.Body); body != n.Body {
			cp := *n
			cp.Body = body
			out = &cp
		}
	}
	if r.expr != nil {
		return r.expr(out)
	}
	return out
}

// target rewrites the parts of an assignment target that are read, never
// the written location itself.
func (r *rewriter) target(node ast.AssignmentTarget) ast.AssignmentTarget {
	switch n := node.(type) {
	case *ast.IndexExpression:
		object, index := r.expression(n.Object), r.expression(n.Index)
		if object != n.Object || index != n.Index {
			cp := *n
			cp.Object, cp.Index = object, index
			return &cp
		}
	case *ast.MemberExpression:
		if object := r.expression(n.Object); object != n.Object {
			cp := *n
			cp.Object = object
			return &cp
		}
	}
	return node
}
