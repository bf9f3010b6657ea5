package parser

import (
	"strconv"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/lexer"
)

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.NUMBER:
		p.advance()
		value, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number literal %s", tok.Text)
		}
		return positioned(ast.NewNumberLiteral(value), tok), nil
	case lexer.STRING:
		p.advance()
		return positioned(ast.NewStringLiteral(tok.Text), tok), nil
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return positioned(ast.NewBooleanLiteral(tok.Type == lexer.TRUE), tok), nil
	case lexer.NULL:
		p.advance()
		return positioned(ast.NewNullLiteral(), tok), nil
	case lexer.IDENT:
		p.advance()
		return identifier(tok), nil
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.LBRACKET:
		p.advance()
		elements, err := p.parseExpressionList(lexer.RBRACKET)
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewArrayLiteral(elements), tok), nil
	case lexer.LBRACE:
		return p.parseMapLiteral()
	case lexer.DEF:
		p.advance()
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		body, err := p.parseFunctionBody()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewFunctionLiteral(params, body), tok), nil
	case lexer.COLONCOLON:
		p.advance()
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewFunctionReference(name.Name), tok), nil
	case lexer.EOF:
		return nil, p.errorf(tok, "unexpected end of input")
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

func (p *Parser) parseMapLiteral() (ast.Expression, error) {
	open := p.advance()
	var entries []*ast.MapEntry
	for !p.at(lexer.RBRACE) {
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		entry := ast.NewMapEntry(key, value)
		ast.SetPosition(entry, key.Position())
		entries = append(entries, entry)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return positioned(ast.NewMapLiteral(entries), open), nil
}
