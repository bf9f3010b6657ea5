package parser

import (
	"fmt"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/lexer"
)

type syntaxError struct {
	tok     lexer.Token
	message string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.tok.Line, e.tok.Column, e.message)
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) error {
	return &syntaxError{tok: tok, message: fmt.Sprintf(format, args...)}
}

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) at(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.at(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if !p.at(t) {
		return p.cur(), p.errorf(p.cur(), "expected '%s' but found %s", t, describe(p.cur()))
	}
	return p.advance(), nil
}

func (p *Parser) expectIdentifier() (*ast.Identifier, error) {
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, p.errorf(tok, "expected identifier but found %s", describe(tok))
	}
	return identifier(tok), nil
}

func identifier(tok lexer.Token) *ast.Identifier {
	id := ast.NewIdentifier(tok.Text)
	ast.SetPosition(id, position(tok))
	return id
}

func position(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// positioned sets node's position to tok and returns node.
func positioned[T ast.Node](node T, tok lexer.Token) T {
	ast.SetPosition(node, position(tok))
	return node
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.IDENT:
		return fmt.Sprintf("identifier '%s'", tok.Text)
	case lexer.NUMBER:
		return fmt.Sprintf("number %s", tok.Text)
	case lexer.STRING:
		return fmt.Sprintf("string %q", tok.Text)
	default:
		return fmt.Sprintf("'%s'", tok.Type)
	}
}
