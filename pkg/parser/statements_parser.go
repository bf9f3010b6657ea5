package parser

import (
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/lexer"
)

// parseStatement parses one statement and its optional trailing ';'.
func (p *Parser) parseStatement() (ast.Statement, error) {
	stmt, err := p.parseStatementBody()
	if err != nil {
		return nil, err
	}
	p.match(lexer.SEMICOLON)
	return stmt, nil
}

func (p *Parser) parseStatementBody() (ast.Statement, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.PRINT, lexer.PRINTLN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewPrintStatement(expr, tok.Type == lexer.PRINTLN), tok), nil
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		p.advance()
		condition, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewWhileStatement(condition, body), tok), nil
	case lexer.DO:
		p.advance()
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.WHILE); err != nil {
			return nil, err
		}
		condition, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewDoWhileStatement(body, condition), tok), nil
	case lexer.FOR:
		return p.parseFor()
	case lexer.BREAK:
		p.advance()
		return positioned(ast.NewBreakStatement(), tok), nil
	case lexer.CONTINUE:
		p.advance()
		return positioned(ast.NewContinueStatement(), tok), nil
	case lexer.STOP:
		p.advance()
		return positioned(ast.NewStopStatement(), tok), nil
	case lexer.RETURN:
		p.advance()
		if p.endsStatement() {
			return positioned(ast.NewReturnStatement(nil), tok), nil
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewReturnStatement(value), tok), nil
	case lexer.USE:
		return p.parseUse()
	case lexer.INCLUDE:
		p.advance()
		path, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewIncludeStatement(path), tok), nil
	case lexer.DEF:
		if p.peek(1).Type == lexer.IDENT {
			return p.parseFunctionDefinition()
		}
	case lexer.ELSE:
		p.advance()
		return nil, p.errorf(tok, "'else' without matching 'if'")
	case lexer.RBRACE:
		return nil, p.errorf(tok, "unexpected '}'")
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return positioned(ast.NewExpressionStatement(expr), tok), nil
}

// endsStatement reports whether no expression can follow at this point.
func (p *Parser) endsStatement() bool {
	t := p.cur().Type
	return t == lexer.SEMICOLON || t == lexer.RBRACE || t == lexer.EOF || (startsStatement(t) && t != lexer.DEF)
}

func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	open, err := p.expect(lexer.LBRACE)
	if err != nil {
		return nil, err
	}
	p.depth++
	body := p.statementList(lexer.RBRACE)
	p.depth--
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, p.errorf(p.cur(), "missing '}' to close block opened on line %d", open.Line)
	}
	return positioned(ast.NewBlockStatement(body), open), nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	tok := p.advance()
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var otherwise ast.Statement
	if p.match(lexer.ELSE) {
		otherwise, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return positioned(ast.NewIfStatement(condition, then, otherwise), tok), nil
}

// parseFor handles both loop forms:
//
//	for init, condition, step body
//	for value : iterable body
//	for key, value : iterable body
//
// The head may be wrapped in parentheses.
func (p *Parser) parseFor() (ast.Statement, error) {
	tok := p.advance()
	paren := p.match(lexer.LPAREN)

	if p.at(lexer.IDENT) && p.peek(1).Type == lexer.COLON {
		value := identifier(p.advance())
		p.advance()
		return p.finishForeach(tok, paren, nil, value)
	}
	if p.at(lexer.IDENT) && p.peek(1).Type == lexer.COMMA && p.peek(2).Type == lexer.IDENT && p.peek(3).Type == lexer.COLON {
		key := identifier(p.advance())
		p.advance()
		value := identifier(p.advance())
		p.advance()
		return p.finishForeach(tok, paren, key, value)
	}

	var (
		init      ast.Statement
		condition ast.Expression
		step      ast.Statement
		err       error
	)
	if !p.at(lexer.COMMA) {
		if init, err = p.parseStatementBody(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.COMMA); err != nil {
		return nil, err
	}
	if !p.at(lexer.COMMA) {
		if condition, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.COMMA); err != nil {
		return nil, err
	}
	if !(paren && p.at(lexer.RPAREN)) && !(!paren && p.at(lexer.LBRACE)) {
		if step, err = p.parseStatementBody(); err != nil {
			return nil, err
		}
	}
	if paren {
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return positioned(ast.NewForStatement(init, condition, step, body), tok), nil
}

func (p *Parser) finishForeach(tok lexer.Token, paren bool, key, value *ast.Identifier) (ast.Statement, error) {
	if key != nil && key.Name == value.Name {
		return nil, p.errorf(tok, "duplicate loop variable '%s'", key.Name)
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if paren {
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return positioned(ast.NewForeachStatement(key, value, iterable, body), tok), nil
}

func (p *Parser) parseUse() (ast.Statement, error) {
	tok := p.advance()
	var modules []string
	for {
		name := p.cur()
		switch name.Type {
		case lexer.STRING, lexer.IDENT:
			p.advance()
			modules = append(modules, name.Text)
		default:
			return nil, p.errorf(name, "expected module name but found %s", describe(name))
		}
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return positioned(ast.NewUseStatement(modules), tok), nil
}

func (p *Parser) parseFunctionDefinition() (ast.Statement, error) {
	tok := p.advance()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	return positioned(ast.NewFunctionDefinition(name, params, body), tok), nil
}

func (p *Parser) parseParams() ([]*ast.Identifier, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Identifier
	seen := make(map[string]bool)
	for !p.at(lexer.RPAREN) {
		param, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if seen[param.Name] {
			return nil, p.errorf(p.peek(-1), "duplicate parameter '%s'", param.Name)
		}
		seen[param.Name] = true
		params = append(params, param)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

// parseFunctionBody accepts a block or `= expr`, which becomes a return.
func (p *Parser) parseFunctionBody() (ast.Statement, error) {
	if p.at(lexer.ASSIGN) {
		tok := p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return positioned(ast.NewReturnStatement(value), tok), nil
	}
	if !p.at(lexer.LBRACE) {
		return nil, p.errorf(p.cur(), "expected function body but found %s", describe(p.cur()))
	}
	return p.parseBlock()
}
