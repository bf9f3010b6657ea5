package parser

import (
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/lexer"
)

// Parser turns a token sequence into a program tree. Syntax errors are
// collected rather than returned, so one Parse call reports every malformed
// statement.
type Parser struct {
	tokens []lexer.Token
	pos    int
	depth  int // open blocks
	errors *ParseErrors
}

// New constructs a parser over tokens. A missing EOF terminator is added.
func New(tokens []lexer.Token) *Parser {
	if n := len(tokens); n == 0 || tokens[n-1].Type != lexer.EOF {
		line, column := 1, 1
		if n > 0 {
			line, column = tokens[n-1].Line, tokens[n-1].Column+len(tokens[n-1].Text)
		}
		tokens = append(tokens[:n:n], lexer.Token{Type: lexer.EOF, Line: line, Column: column})
	}
	return &Parser{tokens: tokens, errors: &ParseErrors{}}
}

// Parse consumes every token and returns the program root, an
// *ast.Program. Check Errors().HasErrors() before using the tree.
func (p *Parser) Parse() ast.Statement {
	start := p.cur()
	body := p.statementList(lexer.EOF)
	program := ast.NewProgram(body)
	ast.SetPosition(program, position(start))
	return program
}

// Errors returns the diagnostics collected so far.
func (p *Parser) Errors() *ParseErrors {
	return p.errors
}

// ParseSource tokenizes and parses source in one step. Lexical errors are
// returned; syntax errors are reported through the returned ParseErrors.
func ParseSource(source string) (ast.Statement, *ParseErrors, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, nil, err
	}
	p := New(tokens)
	program := p.Parse()
	return program, p.Errors(), nil
}

// statementList parses statements until the terminator token, recording a
// diagnostic and resynchronizing after each malformed one.
func (p *Parser) statementList(terminator lexer.TokenType) []ast.Statement {
	var body []ast.Statement
	for !p.at(terminator) && !p.at(lexer.EOF) {
		if p.errors.full() {
			p.pos = len(p.tokens) - 1
			break
		}
		start := p.pos
		stmt, err := p.parseStatement()
		if err != nil {
			p.record(err)
			p.synchronize(start)
			continue
		}
		body = append(body, stmt)
	}
	return body
}

// synchronize skips to the next statement boundary: past a ';', before a
// '}' closing an open block, or before a statement keyword. Nested braces
// met while skipping are skipped as a unit. At least one token is consumed.
func (p *Parser) synchronize(start int) {
	if p.pos == start && !p.at(lexer.EOF) {
		p.advance()
	}
	nesting := 0
	for !p.at(lexer.EOF) {
		tok := p.cur()
		switch tok.Type {
		case lexer.SEMICOLON:
			if nesting == 0 {
				p.advance()
				return
			}
		case lexer.LBRACE:
			nesting++
		case lexer.RBRACE:
			if nesting == 0 {
				if p.depth == 0 {
					p.advance()
				}
				return
			}
			nesting--
		default:
			if nesting == 0 && startsStatement(tok.Type) {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) record(err error) {
	if se, ok := err.(*syntaxError); ok {
		p.errors.add(se.message, se.tok.Line, se.tok.Column)
		return
	}
	tok := p.cur()
	p.errors.add(err.Error(), tok.Line, tok.Column)
}

func startsStatement(t lexer.TokenType) bool {
	switch t {
	case lexer.PRINT, lexer.PRINTLN, lexer.IF, lexer.WHILE, lexer.FOR, lexer.DO,
		lexer.BREAK, lexer.CONTINUE, lexer.DEF, lexer.RETURN, lexer.USE,
		lexer.INCLUDE, lexer.STOP:
		return true
	}
	return false
}
