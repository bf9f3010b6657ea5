package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Entry(key, value Expression) *MapEntry {
	return NewMapEntry(key, value)
}

func MapLit(entries ...*MapEntry) *MapLiteral {
	return NewMapLiteral(entries)
}

// Expression helpers.

func Un(operator string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Tern(condition, consequent, alternate Expression) *TernaryExpression {
	return NewTernaryExpression(condition, consequent, alternate)
}

func Assign(target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression("=", target, value)
}

func AssignOp(operator string, target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(operator, target, value)
}

func Inc(target AssignmentTarget) *UpdateExpression {
	return NewUpdateExpression("++", false, target)
}

func Call(name string, args ...Expression) *CallExpression {
	return NewCallExpression(ID(name), args)
}

func CallExpr(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args)
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func Member(object Expression, name string) *MemberExpression {
	return NewMemberExpression(object, ID(name))
}

func Lam(params []string, statements ...Statement) *FunctionLiteral {
	return NewFunctionLiteral(identifiers(params), Block(statements...))
}

func Ref(name string) *FunctionReference {
	return NewFunctionReference(name)
}

// Statement helpers.

func Prog(statements ...Statement) *Program {
	return NewProgram(statements)
}

func Block(statements ...Statement) *BlockStatement {
	return NewBlockStatement(statements)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Set(name string, value Expression) *ExpressionStatement {
	return Expr(Assign(ID(name), value))
}

func Print(expr Expression) *PrintStatement {
	return NewPrintStatement(expr, false)
}

func Println(expr Expression) *PrintStatement {
	return NewPrintStatement(expr, true)
}

func If(condition Expression, then Statement, otherwise Statement) *IfStatement {
	return NewIfStatement(condition, then, otherwise)
}

func While(condition Expression, statements ...Statement) *WhileStatement {
	return NewWhileStatement(condition, Block(statements...))
}

func For(init Statement, condition Expression, step Statement, statements ...Statement) *ForStatement {
	return NewForStatement(init, condition, step, Block(statements...))
}

func Foreach(value string, iterable Expression, statements ...Statement) *ForeachStatement {
	return NewForeachStatement(nil, ID(value), iterable, Block(statements...))
}

func ForeachKV(key, value string, iterable Expression, statements ...Statement) *ForeachStatement {
	return NewForeachStatement(ID(key), ID(value), iterable, Block(statements...))
}

func Brk() *BreakStatement {
	return NewBreakStatement()
}

func Cont() *ContinueStatement {
	return NewContinueStatement()
}

func Stop() *StopStatement {
	return NewStopStatement()
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func Use(modules ...string) *UseStatement {
	return NewUseStatement(modules)
}

func Include(path string) *IncludeStatement {
	return NewIncludeStatement(Str(path))
}

func Fn(name string, params []string, statements ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(ID(name), identifiers(params), Block(statements...))
}

func identifiers(names []string) []*Identifier {
	out := make([]*Identifier, 0, len(names))
	for _, name := range names {
		out = append(out, ID(name))
	}
	return out
}
