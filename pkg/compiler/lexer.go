package compiler

import (
	"fmt"
	"unicode"

	"golang.org/x/text/cases"
)

// keywords maps case-folded source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"program": PROGRAM,
	"var":     VAR,
	"begin":   BEGIN,
	"end":     END,
	"if":      IF,
	"then":    THEN,
	"else":    ELSE,
	"while":   WHILE,
	"do":      DO,
	"and":     AND,
	"or":      OR,
	"not":     NOT,
	"true":    TRUE,
	"false":   FALSE,
	"write":   WRITE,
	"read":    READ,
	"integer": INTEGER_TYPE,
	"real":    REAL_TYPE,
	"boolean": BOOLEAN_TYPE,
	"string":  STRING_TYPE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src    []rune
	pos    int // index of the next rune to consume
	line   int // current 1-based source line
	column int // current 1-based source column
	fold   cases.Caser
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, column: 1, fold: cases.Fold()}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "}".
// The opening "{" must already have been consumed. An unterminated comment
// runs to the end of input.
func (l *Lexer) skipBlockComment() {
	for !l.atEnd() {
		if l.advance() == '}' {
			return
		}
	}
}

// scanIdent collects a full identifier or keyword token.
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.column
	start := l.pos
	for !l.atEnd() {
		r := l.peek()
		if !unicode.IsLetter(r) && !isDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[l.fold.String(lexeme)]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Column: col}
}

// isDigit accepts ASCII digits only; other Unicode digits are not numerals
// in this language.
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanNumber collects an INTEGER or REAL literal. A "." only belongs to the
// number when a digit follows it.
func (l *Lexer) scanNumber() Token {
	line, col := l.line, l.column
	start := l.pos
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	tt := INTEGER
	if l.peek() == '.' && isDigit(l.peek2()) {
		tt = REAL
		l.advance() // .
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: tt, Lexeme: string(l.src[start:l.pos]), Line: line, Column: col}
}

// scanString collects a quoted literal. The lexeme is the raw text between the
// quotes with escapes left in place.
func (l *Lexer) scanString() Token {
	line, col := l.line, l.column
	quote := l.advance()
	start := l.pos
	for !l.atEnd() {
		r := l.peek()
		if r == quote {
			lexeme := string(l.src[start:l.pos])
			l.advance()
			return Token{Type: STRING, Lexeme: lexeme, Line: line, Column: col}
		}
		if r == '\n' {
			break
		}
		if r == '\\' {
			l.advance()
			if l.atEnd() || l.peek() == '\n' {
				break
			}
		}
		l.advance()
	}
	return Token{Type: ERROR, Lexeme: "unterminated string literal", Line: line, Column: col}
}

// nextToken skips whitespace and comments and returns the next Token.
func (l *Lexer) nextToken() Token {
	for {
		l.skipWhitespace()
		if l.peek() == '/' && l.peek2() == '/' {
			l.skipLineComment()
			continue
		}
		if l.peek() == '{' {
			l.advance()
			l.skipBlockComment()
			continue
		}
		break
	}

	line, col := l.line, l.column
	if l.atEnd() {
		return Token{Type: EOF, Lexeme: "", Line: line, Column: col}
	}

	ch := l.peek()
	switch {
	case unicode.IsLetter(ch) || ch == '_':
		return l.scanIdent()
	case isDigit(ch):
		return l.scanNumber()
	case ch == '"' || ch == '\'':
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '+':
		return Token{PLUS, "+", line, col}
	case '-':
		return Token{MINUS, "-", line, col}
	case '*':
		return Token{STAR, "*", line, col}
	case '/':
		return Token{SLASH, "/", line, col}
	case '(':
		return Token{LPAREN, "(", line, col}
	case ')':
		return Token{RPAREN, ")", line, col}
	case ';':
		return Token{SEMICOLON, ";", line, col}
	case ',':
		return Token{COMMA, ",", line, col}
	case '.':
		return Token{DOT, ".", line, col}
	case '=':
		return Token{EQUALS, "=", line, col}
	case ':':
		if l.peek() == '=' {
			l.advance()
			return Token{ASSIGN, ":=", line, col}
		}
		return Token{COLON, ":", line, col}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line, col}
		}
		if l.peek() == '>' {
			l.advance()
			return Token{NOT_EQ, "<>", line, col}
		}
		return Token{LESS, "<", line, col}
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line, col}
		}
		return Token{GREATER, ">", line, col}
	default:
		return Token{ERROR, fmt.Sprintf("unexpected character %q", ch), line, col}
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Lexical problems do not stop the scan; they show up as ERROR tokens.
func Lex(src string) []Token {
	l := newLexer(src)
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// LexErrors returns one lexical diagnostic per ERROR token, in source order.
func LexErrors(tokens []Token) Diagnostics {
	var diags Diagnostics
	for _, tok := range tokens {
		if tok.Type == ERROR {
			diags = append(diags, Diagnostic{
				Kind:    LexicalError,
				Line:    tok.Line,
				Column:  tok.Column,
				Message: tok.Lexeme,
			})
		}
	}
	return diags
}
