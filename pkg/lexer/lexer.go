package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Error is a lexical failure. Tokenizing stops at the first one.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexer error on line %d:%d: %s", e.Line, e.Column, e.Message)
}

// Lexer scans a whole source text into tokens.
type Lexer struct {
	src    string
	pos    int // byte offset of the next rune
	line   int
	column int

	tokens []Token
}

// New returns a lexer positioned at the start of source.
func New(source string) *Lexer {
	return &Lexer{src: source, line: 1, column: 1}
}

// Tokenize scans source and returns the token sequence terminated by EOF.
func Tokenize(source string) ([]Token, error) {
	return New(source).Tokenize()
}

// Tokenize consumes the entire input.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		if err := l.skipInsignificant(); err != nil {
			return nil, err
		}
		if l.atEnd() {
			break
		}
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Column: l.column})
	return l.tokens, nil
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) rune {
	pos := l.pos
	for ; offset > 0; offset-- {
		if pos >= len(l.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.src[pos:])
		pos += size
	}
	if pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[pos:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) errorf(line, column int, format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}

func (l *Lexer) skipInsignificant() error {
	for !l.atEnd() {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case r == '/' && l.peekAt(1) == '*':
			line, column := l.line, l.column
			l.advance()
			l.advance()
			closed := false
			for !l.atEnd() {
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return l.errorf(line, column, "missing close tag */")
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) emit(tokenType TokenType, text string, line, column int) {
	l.tokens = append(l.tokens, Token{Type: tokenType, Text: text, Line: line, Column: column})
}

func (l *Lexer) scanToken() error {
	line, column := l.line, l.column
	r := l.peek()
	switch {
	case isDigit(r):
		return l.scanNumber(line, column)
	case r == '#' && isHexDigit(l.peekAt(1)):
		l.advance()
		return l.scanHex(line, column)
	case isIdentStart(r):
		l.scanIdentifier(line, column)
		return nil
	case r == '"':
		return l.scanString(line, column)
	}
	for n := maxOperatorLen; n > 0; n-- {
		if l.pos+n > len(l.src) {
			continue
		}
		if tokenType, ok := operators[l.src[l.pos:l.pos+n]]; ok {
			text := l.src[l.pos : l.pos+n]
			for i := 0; i < n; i++ {
				l.advance()
			}
			l.emit(tokenType, text, line, column)
			return nil
		}
	}
	return l.errorf(line, column, "unexpected character %q", r)
}

func (l *Lexer) scanNumber(line, column int) error {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		return l.scanHex(line, column)
	}
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if isIdentStart(l.peek()) {
		return l.errorf(l.line, l.column, "invalid number literal %q", l.src[start:l.pos]+string(l.peek()))
	}
	l.emit(NUMBER, l.src[start:l.pos], line, column)
	return nil
}

func (l *Lexer) scanHex(line, column int) error {
	start := l.pos
	for isHexDigit(l.peek()) {
		l.advance()
	}
	digits := l.src[start:l.pos]
	if digits == "" {
		return l.errorf(line, column, "hexadecimal literal requires digits")
	}
	value, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return l.errorf(line, column, "invalid hexadecimal literal %q", digits)
	}
	l.emit(NUMBER, strconv.FormatUint(value, 10), line, column)
	return nil
}

func (l *Lexer) scanIdentifier(line, column int) {
	start := l.pos
	for isIdentPart(l.peek()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if keyword, ok := keywords[text]; ok {
		l.emit(keyword, text, line, column)
		return
	}
	l.emit(IDENT, text, line, column)
}

func (l *Lexer) scanString(line, column int) error {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.atEnd() {
			return l.errorf(line, column, "reached end of file while parsing text string")
		}
		charLine, charColumn := l.line, l.column
		r := l.advance()
		switch r {
		case '"':
			l.emit(STRING, b.String(), line, column)
			return nil
		case '\\':
			if l.atEnd() {
				return l.errorf(line, column, "reached end of file while parsing text string")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'':
				b.WriteRune(esc)
			case 'u':
				var hex strings.Builder
				for i := 0; i < 4; i++ {
					if !isHexDigit(l.peek()) {
						return l.errorf(charLine, charColumn, "invalid unicode escape")
					}
					hex.WriteRune(l.advance())
				}
				code, _ := strconv.ParseUint(hex.String(), 16, 32)
				b.WriteRune(rune(code))
			default:
				return l.errorf(charLine, charColumn, "unknown escape sequence \\%c", esc)
			}
		default:
			b.WriteRune(r)
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
