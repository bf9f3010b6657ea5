package optimizer

import (
	"math"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// pass rewrites a tree and reports how many rewrites it made.
type pass struct {
	name string
	run  func(ast.Statement) (ast.Statement, int)
}

var passes = []pass{
	{"constant folding", foldConstants},
	{"constant propagation", propagateConstants},
	{"dead code elimination", eliminateDeadCode},
	{"peephole", simplify},
}

//-----------------------------------------------------------------------------
// Constant folding
//-----------------------------------------------------------------------------

func foldConstants(program ast.Statement) (ast.Statement, int) {
	count := 0
	r := &rewriter{expr: func(e ast.Expression) ast.Expression {
		folded := fold(e)
		if folded != e {
			count++
		}
		return folded
	}}
	return r.statement(program), count
}

func fold(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.UnaryExpression:
		operand, ok := literalValue(n.Operand)
		if !ok {
			return e
		}
		result, err := runtime.UnaryOp(n.Operator, operand)
		if err != nil {
			return e
		}
		return literalAt(result, e)
	case *ast.BinaryExpression:
		left, ok := literalValue(n.Left)
		if !ok {
			return e
		}
		switch {
		case n.Operator == "&&" && !runtime.Truthy(left):
			return literalAt(runtime.False, e)
		case n.Operator == "||" && runtime.Truthy(left):
			return literalAt(runtime.True, e)
		}
		right, ok := literalValue(n.Right)
		if !ok {
			return e
		}
		result, err := runtime.BinaryOp(n.Operator, left, right)
		if err != nil {
			return e
		}
		return literalAt(result, e)
	case *ast.TernaryExpression:
		cond, ok := literalValue(n.Condition)
		if !ok {
			return e
		}
		if runtime.Truthy(cond) {
			return n.Consequent
		}
		return n.Alternate
	}
	return e
}

// literalValue evaluates a literal node.
func literalValue(e ast.Expression) (runtime.Value, bool) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return runtime.Number(n.Value), true
	case *ast.StringLiteral:
		return runtime.String(n.Value), true
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), true
	case *ast.NullLiteral:
		return runtime.Null, true
	}
	return nil, false
}

// literalAt turns a scalar result back into a literal positioned like at.
// Non-finite numbers have no literal form and are left unfolded.
func literalAt(v runtime.Value, at ast.Expression) ast.Expression {
	var lit ast.Expression
	switch val := v.(type) {
	case runtime.NumberValue:
		if math.IsInf(val.Val, 0) || math.IsNaN(val.Val) {
			return at
		}
		lit = ast.NewNumberLiteral(val.Val)
	case runtime.StringValue:
		lit = ast.NewStringLiteral(val.Val)
	case runtime.BoolValue:
		lit = ast.NewBooleanLiteral(val.Val)
	case runtime.NullValue:
		lit = ast.NewNullLiteral()
	default:
		return at
	}
	ast.SetPosition(lit, at.Position())
	return lit
}

//-----------------------------------------------------------------------------
// Constant propagation
//-----------------------------------------------------------------------------

// propagateConstants replaces reads of a variable that is written exactly
// once, by a top-level `name = literal`, with that literal. Only reads in
// later top-level statements outside function bodies are replaced, since a
// function may run before the assignment. Programs that include files or
// call functions they do not define are left alone: code outside the tree
// may write any global.
func propagateConstants(program ast.Statement) (ast.Statement, int) {
	root, ok := program.(*ast.Program)
	if !ok || ast.Contains(root, isInclude) || callsUndefined(root) {
		return program, 0
	}
	writes := countWrites(root)
	constants := make(map[string]ast.Expression)
	count := 0
	r := &rewriter{expr: func(e ast.Expression) ast.Expression {
		if id, ok := e.(*ast.Identifier); ok {
			if lit, ok := constants[id.Name]; ok {
				count++
				return cloneLiteral(lit, id)
			}
		}
		return e
	}}
	var body []ast.Statement
	for idx, stmt := range root.Body {
		if len(constants) > 0 {
			if next := propagateInto(r, stmt); next != stmt {
				if body == nil {
					body = append([]ast.Statement(nil), root.Body...)
				}
				body[idx] = next
			}
		}
		if name, lit, ok := constantAssignment(stmt); ok && writes[name] == 1 {
			constants[name] = lit
		}
	}
	if body == nil {
		return program, 0
	}
	cp := *root
	cp.Body = body
	return &cp, count
}

// propagateInto rewrites stmt but leaves function bodies alone.
func propagateInto(r *rewriter, stmt ast.Statement) ast.Statement {
	if ast.Contains(stmt, isFunction) {
		return stmt
	}
	return r.statement(stmt)
}

func constantAssignment(stmt ast.Statement) (string, ast.Expression, bool) {
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		return "", nil, false
	}
	assign, ok := es.Expression.(*ast.AssignmentExpression)
	if !ok || assign.Operator != "=" {
		return "", nil, false
	}
	id, ok := assign.Target.(*ast.Identifier)
	if !ok {
		return "", nil, false
	}
	if _, ok := literalValue(assign.Value); !ok {
		return "", nil, false
	}
	return id.Name, assign.Value, true
}

// countWrites counts every binding of each name: assignments, updates, loop
// variables and parameters.
func countWrites(root ast.Node) map[string]int {
	writes := make(map[string]int)
	params := func(list []*ast.Identifier) {
		for _, p := range list {
			writes[p.Name] += 2
		}
	}
	ast.Walk(root, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.AssignmentExpression:
			if id, ok := node.Target.(*ast.Identifier); ok {
				writes[id.Name]++
			}
		case *ast.UpdateExpression:
			if id, ok := node.Target.(*ast.Identifier); ok {
				writes[id.Name] += 2
			}
		case *ast.ForeachStatement:
			if node.Key != nil {
				writes[node.Key.Name] += 2
			}
			writes[node.Value.Name] += 2
		case *ast.FunctionDefinition:
			params(node.Params)
		case *ast.FunctionLiteral:
			params(node.Params)
		}
		return true
	})
	return writes
}

func cloneLiteral(lit ast.Expression, at ast.Node) ast.Expression {
	v, _ := literalValue(lit)
	return literalAt(v, at.(ast.Expression))
}

// callsUndefined reports whether root calls anything other than a function
// it defines with def.
func callsUndefined(root ast.Node) bool {
	defined := make(map[string]bool)
	ast.Walk(root, func(n ast.Node) bool {
		if def, ok := n.(*ast.FunctionDefinition); ok {
			defined[def.ID.Name] = true
		}
		return true
	})
	return ast.Contains(root, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpression)
		if !ok {
			return false
		}
		id, ok := call.Callee.(*ast.Identifier)
		return !ok || !defined[id.Name]
	})
}

func isInclude(n ast.Node) bool {
	_, ok := n.(*ast.IncludeStatement)
	return ok
}

func isFunction(n ast.Node) bool {
	switch n.(type) {
	case *ast.FunctionDefinition, *ast.FunctionLiteral:
		return true
	}
	return false
}

//-----------------------------------------------------------------------------
// Dead code elimination
//-----------------------------------------------------------------------------

// declares reports whether removing n would hide a declaration from
// hoisting.
func declares(n ast.Node) bool {
	return n != nil && ast.Contains(n, func(m ast.Node) bool {
		switch m.(type) {
		case *ast.FunctionDefinition, *ast.UseStatement:
			return true
		}
		return false
	})
}

func eliminateDeadCode(program ast.Statement) (ast.Statement, int) {
	count := 0
	r := &rewriter{}
	r.stmt = func(s ast.Statement) ast.Statement {
		switch n := s.(type) {
		case *ast.IfStatement:
			cond, ok := literalValue(n.Condition)
			if !ok {
				return s
			}
			taken, dropped := n.Then, n.Else
			if !runtime.Truthy(cond) {
				taken, dropped = n.Else, n.Then
			}
			if dropped != nil && declares(dropped) {
				return s
			}
			count++
			return taken
		case *ast.WhileStatement:
			cond, ok := literalValue(n.Condition)
			if ok && !runtime.Truthy(cond) && !declares(n.Body) {
				count++
				return nil
			}
		case *ast.ExpressionStatement:
			if _, ok := n.Expression.(ast.Literal); ok {
				count++
				return nil
			}
		}
		return s
	}
	r.list = func(list []ast.Statement) []ast.Statement {
		for idx, stmt := range list {
			if !terminates(stmt) || idx == len(list)-1 {
				continue
			}
			out := append([]ast.Statement(nil), list[:idx+1]...)
			for _, rest := range list[idx+1:] {
				if declares(rest) {
					out = append(out, rest)
				} else {
					count++
				}
			}
			return out
		}
		return list
	}
	out := r.statement(program)
	if out == nil {
		out = ast.NewProgram(nil)
	}
	return out, count
}

// terminates reports whether control never falls through stmt.
func terminates(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.ReturnStatement, *ast.BreakStatement, *ast.ContinueStatement, *ast.StopStatement:
		return true
	}
	return false
}

//-----------------------------------------------------------------------------
// Peephole simplification
//-----------------------------------------------------------------------------

func simplify(program ast.Statement) (ast.Statement, int) {
	count := 0
	r := &rewriter{}
	r.stmt = func(s ast.Statement) ast.Statement {
		switch n := s.(type) {
		case *ast.BlockStatement:
			if len(n.Body) == 1 {
				if inner, ok := n.Body[0].(*ast.BlockStatement); ok {
					count++
					return inner
				}
			}
		case *ast.IfStatement:
			if !isEmptyBlock(n.Then) {
				return s
			}
			if n.Else == nil || isEmptyBlock(n.Else) {
				count++
				stmt := ast.NewExpressionStatement(n.Condition)
				ast.SetPosition(stmt, n.Position())
				return stmt
			}
			count++
			negated := ast.NewUnaryExpression("!", n.Condition)
			ast.SetPosition(negated, n.Condition.Position())
			cp := *n
			cp.Condition, cp.Then, cp.Else = negated, n.Else, nil
			return &cp
		}
		return s
	}
	r.list = func(list []ast.Statement) []ast.Statement {
		var out []ast.Statement
		for idx, stmt := range list {
			if isEmptyBlock(stmt) {
				if out == nil {
					out = append([]ast.Statement{}, list[:idx]...)
				}
				count++
				continue
			}
			if out != nil {
				out = append(out, stmt)
			}
		}
		if out == nil {
			return list
		}
		return out
	}
	return r.statement(program), count
}

func isEmptyBlock(s ast.Statement) bool {
	block, ok := s.(*ast.BlockStatement)
	return ok && len(block.Body) == 0
}
