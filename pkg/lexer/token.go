package lexer

import "fmt"

// TokenType identifies a single lexeme class (a keyword, an operator, ...).
type TokenType string

const (
	EOF TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	// Keywords
	PRINT    TokenType = "print"
	PRINTLN  TokenType = "println"
	IF       TokenType = "if"
	ELSE     TokenType = "else"
	WHILE    TokenType = "while"
	FOR      TokenType = "for"
	DO       TokenType = "do"
	BREAK    TokenType = "break"
	CONTINUE TokenType = "continue"
	DEF      TokenType = "def"
	RETURN   TokenType = "return"
	USE      TokenType = "use"
	INCLUDE  TokenType = "include"
	STOP     TokenType = "stop"
	TRUE     TokenType = "true"
	FALSE    TokenType = "false"
	NULL     TokenType = "null"

	// Operators
	PLUS           TokenType = "+"
	MINUS          TokenType = "-"
	STAR           TokenType = "*"
	SLASH          TokenType = "/"
	PERCENT        TokenType = "%"
	ASSIGN         TokenType = "="
	PLUS_ASSIGN    TokenType = "+="
	MINUS_ASSIGN   TokenType = "-="
	STAR_ASSIGN    TokenType = "*="
	SLASH_ASSIGN   TokenType = "/="
	PERCENT_ASSIGN TokenType = "%="
	AMP_ASSIGN     TokenType = "&="
	BAR_ASSIGN     TokenType = "|="
	CARET_ASSIGN   TokenType = "^="
	LSHIFT_ASSIGN  TokenType = "<<="
	RSHIFT_ASSIGN  TokenType = ">>="
	URSHIFT_ASSIGN TokenType = ">>>="
	INC            TokenType = "++"
	DEC            TokenType = "--"
	EQ             TokenType = "=="
	NOT_EQ         TokenType = "!="
	LT             TokenType = "<"
	LTEQ           TokenType = "<="
	GT             TokenType = ">"
	GTEQ           TokenType = ">="
	BANG           TokenType = "!"
	AND            TokenType = "&&"
	OR             TokenType = "||"
	AMP            TokenType = "&"
	BAR            TokenType = "|"
	CARET          TokenType = "^"
	TILDE          TokenType = "~"
	LSHIFT         TokenType = "<<"
	RSHIFT         TokenType = ">>"
	URSHIFT        TokenType = ">>>"
	QUESTION       TokenType = "?"
	COLONCOLON     TokenType = "::"

	// Punctuation
	COLON     TokenType = ":"
	COMMA     TokenType = ","
	DOT       TokenType = "."
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
)

// Kind is the coarse token classification exposed to tools.
type Kind int

const (
	KindEOF Kind = iota
	KindKeyword
	KindIdentifier
	KindLiteral
	KindOperator
	KindPunctuation
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "eof"
	case KindKeyword:
		return "keyword"
	case KindIdentifier:
		return "identifier"
	case KindLiteral:
		return "literal"
	case KindOperator:
		return "operator"
	case KindPunctuation:
		return "punctuation"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

var keywords = map[string]TokenType{
	"print":    PRINT,
	"println":  PRINTLN,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"do":       DO,
	"break":    BREAK,
	"continue": CONTINUE,
	"def":      DEF,
	"return":   RETURN,
	"use":      USE,
	"include":  INCLUDE,
	"stop":     STOP,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
}

// operators is searched longest-first by the scanner.
var operators = map[string]TokenType{
	">>>=": URSHIFT_ASSIGN,
	">>>":  URSHIFT,
	"<<=":  LSHIFT_ASSIGN,
	">>=":  RSHIFT_ASSIGN,
	"+=":   PLUS_ASSIGN,
	"-=":   MINUS_ASSIGN,
	"*=":   STAR_ASSIGN,
	"/=":   SLASH_ASSIGN,
	"%=":   PERCENT_ASSIGN,
	"&=":   AMP_ASSIGN,
	"|=":   BAR_ASSIGN,
	"^=":   CARET_ASSIGN,
	"++":   INC,
	"--":   DEC,
	"==":   EQ,
	"!=":   NOT_EQ,
	"<=":   LTEQ,
	">=":   GTEQ,
	"&&":   AND,
	"||":   OR,
	"<<":   LSHIFT,
	">>":   RSHIFT,
	"::":   COLONCOLON,
	"+":    PLUS,
	"-":    MINUS,
	"*":    STAR,
	"/":    SLASH,
	"%":    PERCENT,
	"=":    ASSIGN,
	"<":    LT,
	">":    GT,
	"!":    BANG,
	"&":    AMP,
	"|":    BAR,
	"^":    CARET,
	"~":    TILDE,
	"?":    QUESTION,
	":":    COLON,
	",":    COMMA,
	".":    DOT,
	";":    SEMICOLON,
	"(":    LPAREN,
	")":    RPAREN,
	"[":    LBRACKET,
	"]":    RBRACKET,
	"{":    LBRACE,
	"}":    RBRACE,
}

const maxOperatorLen = 4

// Token is an immutable lexeme with its source position.
type Token struct {
	Type   TokenType
	Text   string // decoded payload for strings, source text otherwise
	Line   int    // 1-based
	Column int    // 1-based, in runes
}

// Kind classifies the token.
func (t Token) Kind() Kind {
	switch t.Type {
	case EOF:
		return KindEOF
	case IDENT:
		return KindIdentifier
	case NUMBER, STRING:
		return KindLiteral
	case COLON, COMMA, DOT, SEMICOLON, LPAREN, RPAREN, LBRACKET, RBRACKET, LBRACE, RBRACE:
		return KindPunctuation
	}
	if _, ok := keywords[string(t.Type)]; ok {
		return KindKeyword
	}
	return KindOperator
}

func (t Token) String() string {
	switch t.Type {
	case STRING:
		return fmt.Sprintf("%s %q (%d:%d)", t.Type, t.Text, t.Line, t.Column)
	case IDENT, NUMBER:
		return fmt.Sprintf("%s %s (%d:%d)", t.Type, t.Text, t.Line, t.Column)
	default:
		return fmt.Sprintf("%s (%d:%d)", t.Type, t.Line, t.Column)
	}
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
