package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const indentUnit = "  "

// Format renders node back to source text. Binary operands are fully
// parenthesized, so the output reparses to the same tree.
func Format(node Node) string {
	var p printer
	switch n := node.(type) {
	case Statement:
		p.statement(n)
	case Expression:
		p.b.WriteString(formatExpression(n))
	case nil:
	default:
		fmt.Fprintf(&p.b, "<%s>", node.NodeType())
	}
	return strings.TrimRight(p.b.String(), "\n")
}

type printer struct {
	b     strings.Builder
	depth int
}

func (p *printer) line(format string, args ...any) {
	p.b.WriteString(strings.Repeat(indentUnit, p.depth))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) statement(stmt Statement) {
	switch n := stmt.(type) {
	case *Program:
		for _, s := range n.Body {
			p.statement(s)
		}
	case *BlockStatement:
		p.line("{")
		p.body(n.Body)
		p.line("}")
	case *ExpressionStatement:
		p.line("%s;", formatExpression(n.Expression))
	case *PrintStatement:
		keyword := "print"
		if n.Newline {
			keyword = "println"
		}
		p.line("%s %s;", keyword, formatExpression(n.Expression))
	case *IfStatement:
		p.line("if %s", formatExpression(n.Condition))
		p.nested(n.Then)
		if n.Else != nil {
			p.line("else")
			p.nested(n.Else)
		}
	case *WhileStatement:
		p.line("while %s", formatExpression(n.Condition))
		p.nested(n.Body)
	case *DoWhileStatement:
		p.line("do")
		p.nested(n.Body)
		p.line("while %s;", formatExpression(n.Condition))
	case *ForStatement:
		cond := ""
		if n.Condition != nil {
			cond = formatExpression(n.Condition)
		}
		p.line("for %s, %s, %s", inlineStatement(n.Init), cond, inlineStatement(n.Step))
		p.nested(n.Body)
	case *ForeachStatement:
		if n.Key != nil {
			p.line("for %s, %s : %s", n.Key.Name, n.Value.Name, formatExpression(n.Iterable))
		} else {
			p.line("for %s : %s", n.Value.Name, formatExpression(n.Iterable))
		}
		p.nested(n.Body)
	case *BreakStatement:
		p.line("break")
	case *ContinueStatement:
		p.line("continue")
	case *StopStatement:
		p.line("stop")
	case *ReturnStatement:
		if n.Argument == nil {
			p.line("return")
		} else {
			p.line("return %s;", formatExpression(n.Argument))
		}
	case *UseStatement:
		quoted := make([]string, 0, len(n.Modules))
		for _, name := range n.Modules {
			quoted = append(quoted, quote(name))
		}
		p.line("use %s", strings.Join(quoted, ", "))
	case *IncludeStatement:
		p.line("include %s;", formatExpression(n.Path))
	case *FunctionDefinition:
		p.line("def %s(%s)", n.ID.Name, paramList(n.Params))
		p.nested(n.Body)
	case nil:
	default:
		p.line("<%s>", stmt.NodeType())
	}
}

func (p *printer) body(stmts []Statement) {
	p.depth++
	for _, s := range stmts {
		p.statement(s)
	}
	p.depth--
}

// nested prints a loop or branch body. Blocks stay at the current depth so
// the braces line up with the header.
func (p *printer) nested(stmt Statement) {
	if _, ok := stmt.(*BlockStatement); ok {
		p.statement(stmt)
		return
	}
	p.depth++
	p.statement(stmt)
	p.depth--
}

func inlineStatement(stmt Statement) string {
	switch n := stmt.(type) {
	case nil:
		return ""
	case *ExpressionStatement:
		return formatExpression(n.Expression)
	default:
		return strings.TrimSpace(Format(stmt))
	}
}

func paramList(params []*Identifier) string {
	names := make([]string, 0, len(params))
	for _, param := range params {
		names = append(names, param.Name)
	}
	return strings.Join(names, ", ")
}

func formatExpression(expr Expression) string {
	switch n := expr.(type) {
	case nil:
		return ""
	case *NumberLiteral:
		return FormatNumber(n.Value)
	case *StringLiteral:
		return quote(n.Value)
	case *BooleanLiteral:
		return strconv.FormatBool(n.Value)
	case *NullLiteral:
		return "null"
	case *Identifier:
		return n.Name
	case *ArrayLiteral:
		parts := make([]string, 0, len(n.Elements))
		for _, el := range n.Elements {
			parts = append(parts, formatExpression(el))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *MapLiteral:
		parts := make([]string, 0, len(n.Entries))
		for _, entry := range n.Entries {
			parts = append(parts, formatExpression(entry.Key)+" : "+formatExpression(entry.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *UnaryExpression:
		return n.Operator + operand(n.Operand)
	case *BinaryExpression:
		return "(" + grouped(n.Left) + " " + n.Operator + " " + grouped(n.Right) + ")"
	case *TernaryExpression:
		return "(" + grouped(n.Condition) + " ? " + grouped(n.Consequent) + " : " + grouped(n.Alternate) + ")"
	case *AssignmentExpression:
		return formatExpression(n.Target) + " " + n.Operator + " " + formatExpression(n.Value)
	case *UpdateExpression:
		if n.Prefix {
			return n.Operator + formatExpression(n.Target)
		}
		return formatExpression(n.Target) + n.Operator
	case *CallExpression:
		args := make([]string, 0, len(n.Arguments))
		for _, arg := range n.Arguments {
			args = append(args, formatExpression(arg))
		}
		return operand(n.Callee) + "(" + strings.Join(args, ", ") + ")"
	case *IndexExpression:
		return operand(n.Object) + "[" + formatExpression(n.Index) + "]"
	case *MemberExpression:
		return operand(n.Object) + "." + n.Property.Name
	case *FunctionLiteral:
		body := strings.TrimSpace(Format(n.Body))
		if ret, ok := n.Body.(*ReturnStatement); ok && ret.Argument != nil {
			body = "= " + formatExpression(ret.Argument)
		} else {
			lines := strings.Split(body, "\n")
			for i, l := range lines {
				lines[i] = strings.TrimSpace(l)
			}
			body = strings.Join(lines, " ")
		}
		return "def(" + paramList(n.Params) + ") " + body
	case *FunctionReference:
		return "::" + n.Name
	default:
		return fmt.Sprintf("<%s>", expr.NodeType())
	}
}

// grouped wraps operands of binary and ternary nodes that would otherwise
// capture the surrounding operator.
func grouped(expr Expression) string {
	switch expr.(type) {
	case *AssignmentExpression, *FunctionLiteral:
		return "(" + formatExpression(expr) + ")"
	}
	return formatExpression(expr)
}

// operand wraps expressions that would bind looser than a postfix or
// prefix operator.
func operand(expr Expression) string {
	switch expr.(type) {
	case *AssignmentExpression, *FunctionLiteral, *UnaryExpression, *UpdateExpression:
		return "(" + formatExpression(expr) + ")"
	case *NumberLiteral:
		if expr.(*NumberLiteral).Value < 0 {
			return "(" + formatExpression(expr) + ")"
		}
	}
	return formatExpression(expr)
}

// FormatNumber prints integral values without a fractional part.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
