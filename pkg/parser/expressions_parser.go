package parser

import (
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/lexer"
)

// Binary operator precedence, loosest first. Operators at the same level
// associate left to right.
var binaryPrecedence = map[lexer.TokenType]int{
	lexer.OR:      1,
	lexer.AND:     2,
	lexer.BAR:     3,
	lexer.CARET:   4,
	lexer.AMP:     5,
	lexer.EQ:      6,
	lexer.NOT_EQ:  6,
	lexer.LT:      7,
	lexer.LTEQ:    7,
	lexer.GT:      7,
	lexer.GTEQ:    7,
	lexer.LSHIFT:  8,
	lexer.RSHIFT:  8,
	lexer.URSHIFT: 8,
	lexer.PLUS:    9,
	lexer.MINUS:   9,
	lexer.STAR:    10,
	lexer.SLASH:   10,
	lexer.PERCENT: 10,
}

var assignmentOperators = map[lexer.TokenType]bool{
	lexer.ASSIGN:         true,
	lexer.PLUS_ASSIGN:    true,
	lexer.MINUS_ASSIGN:   true,
	lexer.STAR_ASSIGN:    true,
	lexer.SLASH_ASSIGN:   true,
	lexer.PERCENT_ASSIGN: true,
	lexer.AMP_ASSIGN:     true,
	lexer.BAR_ASSIGN:     true,
	lexer.CARET_ASSIGN:   true,
	lexer.LSHIFT_ASSIGN:  true,
	lexer.RSHIFT_ASSIGN:  true,
	lexer.URSHIFT_ASSIGN: true,
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	tok := p.cur()
	if !assignmentOperators[tok.Type] {
		return left, nil
	}
	target, ok := left.(ast.AssignmentTarget)
	if !ok {
		return nil, p.errorf(tok, "invalid assignment target")
	}
	p.advance()
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	assign := ast.NewAssignmentExpression(tok.Text, target, value)
	ast.SetPosition(assign, left.Position())
	return assign, nil
}

func (p *Parser) parseTernary() (ast.Expression, error) {
	condition, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.QUESTION) {
		return condition, nil
	}
	p.advance()
	consequent, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	alternate, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	ternary := ast.NewTernaryExpression(condition, consequent, alternate)
	ast.SetPosition(ternary, condition.Position())
	return ternary, nil
}

// parseBinary is precedence climbing over binaryPrecedence.
func (p *Parser) parseBinary(minPrecedence int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		precedence, ok := binaryPrecedence[tok.Type]
		if !ok || precedence < minPrecedence {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(precedence + 1)
		if err != nil {
			return nil, err
		}
		bin := ast.NewBinaryExpression(string(tok.Type), left, right)
		ast.SetPosition(bin, left.Position())
		left = bin
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.MINUS, lexer.PLUS, lexer.BANG, lexer.TILDE:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewUnaryExpression(string(tok.Type), operand), tok), nil
	case lexer.INC, lexer.DEC:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		target, ok := operand.(ast.AssignmentTarget)
		if !ok {
			return nil, p.errorf(tok, "invalid operand for prefix '%s'", tok.Type)
		}
		return positioned(ast.NewUpdateExpression(string(tok.Type), true, target), tok), nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.LPAREN:
			p.advance()
			args, err := p.parseExpressionList(lexer.RPAREN)
			if err != nil {
				return nil, err
			}
			call := ast.NewCallExpression(expr, args)
			ast.SetPosition(call, expr.Position())
			expr = call
		case lexer.LBRACKET:
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			access := ast.NewIndexExpression(expr, index)
			ast.SetPosition(access, expr.Position())
			expr = access
		case lexer.DOT:
			p.advance()
			name := p.cur()
			if name.Type != lexer.IDENT && !lexer.IsKeyword(name.Text) {
				return nil, p.errorf(name, "expected property name after '.' but found %s", describe(name))
			}
			p.advance()
			member := ast.NewMemberExpression(expr, identifier(name))
			ast.SetPosition(member, expr.Position())
			expr = member
		case lexer.INC, lexer.DEC:
			target, ok := expr.(ast.AssignmentTarget)
			if !ok {
				return nil, p.errorf(tok, "invalid operand for postfix '%s'", tok.Type)
			}
			p.advance()
			update := ast.NewUpdateExpression(string(tok.Type), false, target)
			ast.SetPosition(update, expr.Position())
			return update, nil
		default:
			return expr, nil
		}
	}
}

// parseExpressionList parses comma separated expressions up to and including
// the closing token. A trailing comma is accepted.
func (p *Parser) parseExpressionList(closing lexer.TokenType) ([]ast.Expression, error) {
	var list []ast.Expression
	for !p.at(closing) {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	return list, nil
}
