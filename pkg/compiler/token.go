package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF   TokenType = iota // sentinel: end of input
	ERROR                  // lexical error; Lexeme holds the message

	// Literals
	IDENTIFIER // variable / program name
	INTEGER    // digit run
	REAL       // digit run "." digit run
	STRING     // '...' or "..."

	// Keywords
	PROGRAM
	VAR
	BEGIN
	END
	IF
	THEN
	ELSE
	WHILE
	DO
	AND
	OR
	NOT
	TRUE
	FALSE
	WRITE
	READ

	// Type keywords
	INTEGER_TYPE // "integer"
	REAL_TYPE    // "real"
	BOOLEAN_TYPE // "boolean"
	STRING_TYPE  // "string"

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	ASSIGN // :=

	// Relational operators
	LESS       // <
	LESS_EQ    // <=
	GREATER    // >
	GREATER_EQ // >=
	EQUALS     // =
	NOT_EQ     // <>

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	SEMICOLON // ;
	COMMA     // ,
	DOT       // .
	COLON     // :
)

// tokenNames is indexed by TokenType. The names double as the KIND column of
// exported token files, so they must stay stable.
var tokenNames = [...]string{
	EOF:          "EOF",
	ERROR:        "ERROR",
	IDENTIFIER:   "IDENTIFIER",
	INTEGER:      "INTEGER",
	REAL:         "REAL",
	STRING:       "STRING",
	PROGRAM:      "PROGRAM",
	VAR:          "VAR",
	BEGIN:        "BEGIN",
	END:          "END",
	IF:           "IF",
	THEN:         "THEN",
	ELSE:         "ELSE",
	WHILE:        "WHILE",
	DO:           "DO",
	AND:          "AND",
	OR:           "OR",
	NOT:          "NOT",
	TRUE:         "TRUE",
	FALSE:        "FALSE",
	WRITE:        "WRITE",
	READ:         "READ",
	INTEGER_TYPE: "INTEGER_TYPE",
	REAL_TYPE:    "REAL_TYPE",
	BOOLEAN_TYPE: "BOOLEAN_TYPE",
	STRING_TYPE:  "STRING_TYPE",
	PLUS:         "PLUS",
	MINUS:        "MINUS",
	STAR:         "STAR",
	SLASH:        "SLASH",
	ASSIGN:       "ASSIGN",
	LESS:         "LESS",
	LESS_EQ:      "LESS_EQ",
	GREATER:      "GREATER",
	GREATER_EQ:   "GREATER_EQ",
	EQUALS:       "EQUALS",
	NOT_EQ:       "NOT_EQ",
	LPAREN:       "LPAREN",
	RPAREN:       "RPAREN",
	SEMICOLON:    "SEMICOLON",
	COMMA:        "COMMA",
	DOT:          "DOT",
	COLON:        "COLON",
}

var tokenTypesByName = func() map[string]TokenType {
	m := make(map[string]TokenType, len(tokenNames))
	for tt, name := range tokenNames {
		m[name] = TokenType(tt)
	}
	return m
}()

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// LookupTokenType maps a name produced by TokenType.String back to its type.
func LookupTokenType(name string) (TokenType, bool) {
	tt, ok := tokenTypesByName[name]
	return tt, ok
}

// isRelational reports whether tt is one of < <= > >= = <>.
func (tt TokenType) isRelational() bool {
	switch tt {
	case LESS, LESS_EQ, GREATER, GREATER_EQ, EQUALS, NOT_EQ:
		return true
	}
	return false
}

// isArithmetic reports whether tt is one of + - * /.
func (tt TokenType) isArithmetic() bool {
	switch tt {
	case PLUS, MINUS, STAR, SLASH:
		return true
	}
	return false
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // source text; for ERROR tokens, the diagnostic message
	Line   int    // 1-based source line
	Column int    // 1-based source column
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-14q  %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}
