package ast

// Children returns the direct child nodes of node in source order. Nil
// optional children are omitted.
func Children(node Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, child := range children {
			if child == nil || isNilNode(child) {
				continue
			}
			out = append(out, child)
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Body {
			add(stmt)
		}
	case *BlockStatement:
		for _, stmt := range n.Body {
			add(stmt)
		}
	case *ExpressionStatement:
		add(n.Expression)
	case *PrintStatement:
		add(n.Expression)
	case *IfStatement:
		add(n.Condition, n.Then, n.Else)
	case *WhileStatement:
		add(n.Condition, n.Body)
	case *DoWhileStatement:
		add(n.Body, n.Condition)
	case *ForStatement:
		add(n.Init, n.Condition, n.Step, n.Body)
	case *ForeachStatement:
		if n.Key != nil {
			add(n.Key)
		}
		add(n.Value, n.Iterable, n.Body)
	case *ReturnStatement:
		add(n.Argument)
	case *IncludeStatement:
		add(n.Path)
	case *FunctionDefinition:
		add(n.ID)
		for _, param := range n.Params {
			add(param)
		}
		add(n.Body)
	case *ArrayLiteral:
		for _, el := range n.Elements {
			add(el)
		}
	case *MapLiteral:
		for _, entry := range n.Entries {
			add(entry)
		}
	case *MapEntry:
		add(n.Key, n.Value)
	case *UnaryExpression:
		add(n.Operand)
	case *BinaryExpression:
		add(n.Left, n.Right)
	case *TernaryExpression:
		add(n.Condition, n.Consequent, n.Alternate)
	case *AssignmentExpression:
		add(n.Target, n.Value)
	case *UpdateExpression:
		add(n.Target)
	case *CallExpression:
		add(n.Callee)
		for _, arg := range n.Arguments {
			add(arg)
		}
	case *IndexExpression:
		add(n.Object, n.Index)
	case *MemberExpression:
		add(n.Object, n.Property)
	case *FunctionLiteral:
		for _, param := range n.Params {
			add(param)
		}
		add(n.Body)
	}
	return out
}

// Walk visits node and its descendants depth-first. Children of a node are
// skipped when visit returns false for it.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || isNilNode(node) {
		return
	}
	if !visit(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, visit)
	}
}

// Contains reports whether any node under root satisfies match.
func Contains(root Node, match func(Node) bool) bool {
	found := false
	Walk(root, func(n Node) bool {
		if found {
			return false
		}
		if match(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(node Node) bool {
	switch n := node.(type) {
	case *Identifier:
		return n == nil
	case *BlockStatement:
		return n == nil
	case *MapEntry:
		return n == nil
	}
	return false
}
