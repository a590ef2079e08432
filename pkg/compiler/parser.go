package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer, builds an AST
// and fills the symbol table in the same pass.
//
// Grammar:
//
//	program    = "program" IDENT ";" [varDecls] block "."
//	varDecls   = "var" (identList ":" type ";")+
//	identList  = IDENT ("," IDENT)*
//	block      = "begin" stmtList "end"
//	stmtList   = [stmt (";" stmt)*]
//	stmt       = assign | ifStmt | whileStmt | block | write | read | ε
//	assign     = IDENT ":=" cond
//	ifStmt     = "if" cond "then" stmt ["else" stmt]
//	whileStmt  = "while" cond "do" stmt
//	write      = "write" "(" cond ")"
//	read       = "read" "(" IDENT ")"
//	cond       = orTerm ("or" orTerm)*
//	orTerm     = andTerm ("and" andTerm)*
//	andTerm    = ["not"] comparison
//	comparison = "(" cond ")" | expr [relop expr]
//	expr       = term (("+"|"-") term)*
//	term       = factor (("*"|"/") factor)*
//	factor     = IDENT | NUMBER | STRING | "true" | "false" | "(" expr ")" | "-" factor
//
// Every rule returns (node, ok). The rule that detects a problem records the
// diagnostic; the statement list synchronises on {";", "end"} after a failed
// statement so one pass reports many independent errors.
type Parser struct {
	tokens []Token
	pos    int
	source sourceLines
	syms   *SymbolTable
	diags  Diagnostics
	limits Limits

	recursion int // every guarded rule
	nesting   int // block / if / while
	exprDepth int // every expression rule

	recursionHit, nestingHit, exprHit bool
}

// Limits bounds parser recursion so adversarial input cannot exhaust the
// native stack. Zero fields take the DefaultLimits value.
type Limits struct {
	MaxRecursionDepth  int
	MaxNestingDepth    int
	MaxExpressionDepth int
}

func DefaultLimits() Limits {
	return Limits{MaxRecursionDepth: 100, MaxNestingDepth: 50, MaxExpressionDepth: 50}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxRecursionDepth <= 0 {
		l.MaxRecursionDepth = def.MaxRecursionDepth
	}
	if l.MaxNestingDepth <= 0 {
		l.MaxNestingDepth = def.MaxNestingDepth
	}
	if l.MaxExpressionDepth <= 0 {
		l.MaxExpressionDepth = def.MaxExpressionDepth
	}
	return l
}

// maxExactInteger is the largest integer a float64 holds without rounding.
const maxExactInteger = 1 << 53

func NewParser(tokens []Token, rawSource string, limits Limits) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
		var line, col int = 1, 1
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			line, col = last.Line, last.Column+len([]rune(last.Lexeme))
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: EOF, Line: line, Column: col})
	}
	return &Parser{
		tokens: tokens,
		source: newSourceLines(rawSource),
		syms:   NewSymbolTable(),
		limits: limits.withDefaults(),
	}
}

func (p *Parser) Diagnostics() Diagnostics { return p.diags }
func (p *Parser) Symbols() *SymbolTable     { return p.syms }

//  Token cursor

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

// advance consumes and returns the current token. It never moves past EOF.
func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// check reports whether the current token is one of types.
func (p *Parser) check(types ...TokenType) bool {
	cur := p.peek().Type
	for _, tt := range types {
		if cur == tt {
			return true
		}
	}
	return false
}

// match consumes the current token if it has type tt.
func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches tt; otherwise it records
// the formatted message and leaves the cursor where it is.
func (p *Parser) expect(tt TokenType, format string, args ...any) (Token, bool) {
	if !p.check(tt) {
		msg := fmt.Sprintf(format, args...)
		p.errorf("%s, got %s", msg, describe(p.peek()))
		return p.peek(), false
	}
	return p.advance(), true
}

// synchronize discards tokens until one in set (or EOF) is current.
func (p *Parser) synchronize(set ...TokenType) {
	for !p.check(EOF) && !p.check(set...) {
		p.advance()
	}
}

func (p *Parser) atStatementStart() bool {
	return p.check(IDENTIFIER, IF, WHILE, BEGIN, WRITE, READ)
}

type parserMark struct {
	pos   int
	diags int

	recursionHit, nestingHit, exprHit bool
}

func (p *Parser) mark() parserMark {
	return parserMark{
		pos:          p.pos,
		diags:        len(p.diags),
		recursionHit: p.recursionHit,
		nestingHit:   p.nestingHit,
		exprHit:      p.exprHit,
	}
}

// reset rewinds to m and forgets diagnostics recorded since.
func (p *Parser) reset(m parserMark) {
	p.pos = m.pos
	p.diags = p.diags[:m.diags]
	p.recursionHit, p.nestingHit, p.exprHit = m.recursionHit, m.nestingHit, m.exprHit
}

//  Diagnostics

func (p *Parser) errorAt(tok Token, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Kind:    SyntaxError,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: fmt.Sprintf(format, args...),
		Source:  p.source.at(tok.Line),
	})
}

func (p *Parser) errorf(format string, args ...any) {
	p.errorAt(p.peek(), format, args...)
}

// describe renders a token for use inside a message.
func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case STRING:
		return fmt.Sprintf("string '%s'", tok.Lexeme)
	case ERROR:
		return tok.Lexeme
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

//  Depth guards
//
// A ceiling is reported once per statement that overflows it. The latch for
// a guard is set when it trips and cleared when the enclosing statement
// list moves on to the next statement.

func (p *Parser) enter() bool {
	if p.recursion >= p.limits.MaxRecursionDepth {
		if !p.recursionHit {
			p.errorf("recursion too deep (more than %d levels)", p.limits.MaxRecursionDepth)
			p.recursionHit = true
		}
		return false
	}
	p.recursion++
	return true
}

func (p *Parser) leave() {
	p.recursion--
}

// enterNested guards block, if and while. Nesting is checked before
// recursion so the more specific diagnostic wins.
func (p *Parser) enterNested() bool {
	if p.nesting >= p.limits.MaxNestingDepth {
		if !p.nestingHit {
			p.errorf("statements nested too deep (more than %d levels)", p.limits.MaxNestingDepth)
			p.nestingHit = true
		}
		return false
	}
	if !p.enter() {
		return false
	}
	p.nesting++
	return true
}

func (p *Parser) leaveNested() {
	p.nesting--
	p.leave()
}

func (p *Parser) enterExpr() bool {
	if p.exprDepth >= p.limits.MaxExpressionDepth {
		if !p.exprHit {
			p.errorf("expression nested too deep (more than %d levels)", p.limits.MaxExpressionDepth)
			p.exprHit = true
		}
		return false
	}
	if !p.enter() {
		return false
	}
	p.exprDepth++
	return true
}

func (p *Parser) leaveExpr() {
	p.exprDepth--
	p.leave()
}

func (p *Parser) clearDepthLatches() {
	p.recursionHit, p.nestingHit, p.exprHit = false, false, false
}

// skipBlock consumes a "begin" ... "end" span including every block nested
// inside it, so the enclosing statement list resumes after the matching end.
func (p *Parser) skipBlock() {
	depth := 0
	for !p.check(EOF) {
		switch p.advance().Type {
		case BEGIN:
			depth++
		case END:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

// skipStatement consumes one statement without parsing it. It stops before
// a ";" or an "end" that is not matched by a "begin" inside the statement.
func (p *Parser) skipStatement() {
	depth := 0
	for !p.check(EOF) {
		switch p.peek().Type {
		case BEGIN:
			depth++
		case END:
			if depth == 0 {
				return
			}
			depth--
		case SEMICOLON:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

//  Symbols

// resolve reports tok as undeclared if it does not name a visible variable.
// Assignment and read targets mark the symbol initialised.
func (p *Parser) resolve(tok Token, assigned bool) {
	sym, ok := p.syms.Lookup(tok.Lexeme)
	if !ok {
		p.errorAt(tok, "undeclared variable '%s'", tok.Lexeme)
		return
	}
	if assigned {
		sym.Initialized = true
	}
}

func posOf(tok Token) Pos { return Pos{Line: tok.Line, Column: tok.Column} }

//  Program structure

// Parse runs the grammar from the program rule and checks that nothing
// follows the final ".". It may return a partial Program alongside
// diagnostics.
func (p *Parser) Parse() *Program {
	prog, ok := p.parseProgram()
	if ok && !p.check(EOF) {
		p.errorf("unexpected tokens after end of program: %s", describe(p.peek()))
	}
	return prog
}

func (p *Parser) parseProgram() (*Program, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	progTok, ok := p.expect(PROGRAM, "program must start with 'program'")
	if !ok {
		return nil, false
	}
	prog := &Program{Pos: posOf(progTok)}
	if nameTok, ok := p.expect(IDENTIFIER, "expected program name after 'program'"); ok {
		prog.Name = nameTok.Lexeme
	} else {
		p.synchronize(SEMICOLON, VAR, BEGIN)
	}
	if _, ok := p.expect(SEMICOLON, "expected ';' after program name"); !ok {
		p.synchronize(VAR, BEGIN)
	}

	if p.check(VAR) {
		prog.Decls = p.parseVarDecls()
	}

	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	prog.Body = body

	p.expect(DOT, "program must end with '.'")
	return prog, true
}

// parseVarDecls handles the var section. Duplicate names are reported and
// dropped; the first declaration wins.
func (p *Parser) parseVarDecls() []*VarDecl {
	decls := []*VarDecl{}
	if !p.enter() {
		p.synchronize(BEGIN)
		return decls
	}
	defer p.leave()

	p.advance() // var
	if !p.check(IDENTIFIER) {
		p.errorf("expected variable name after 'var', got %s", describe(p.peek()))
		p.synchronize(BEGIN)
		return decls
	}
	for p.check(IDENTIFIER) {
		group, ok := p.parseVarGroup()
		decls = append(decls, group...)
		if !ok {
			p.synchronize(SEMICOLON, BEGIN)
			p.match(SEMICOLON)
		}
	}
	return decls
}

// parseVarGroup handles  identList ":" type ";"
func (p *Parser) parseVarGroup() ([]*VarDecl, bool) {
	names := []Token{p.advance()}
	for p.match(COMMA) {
		tok, ok := p.expect(IDENTIFIER, "expected variable name after ','")
		if !ok {
			return nil, false
		}
		names = append(names, tok)
	}
	if _, ok := p.expect(COLON, "expected ':' after variable name"); !ok {
		return nil, false
	}
	typ, ok := TypeFromKeyword(p.peek().Type)
	if !ok {
		p.errorf("expected type (integer, real, boolean, string), got %s", describe(p.peek()))
		return nil, false
	}
	p.advance()

	var decls []*VarDecl
	for _, name := range names {
		sym := &Symbol{Name: name.Lexeme, Type: typ, Line: name.Line, Column: name.Column}
		if !p.syms.Define(sym) {
			p.errorAt(name, "duplicate declaration of variable '%s'", name.Lexeme)
			continue
		}
		decls = append(decls, &VarDecl{Pos: posOf(name), Name: name.Lexeme, Type: typ})
	}

	// A missing ";" is reported but the group is kept.
	p.expect(SEMICOLON, "expected ';' after variable declaration")
	return decls, true
}

func (p *Parser) parseBlock() (*Block, bool) {
	if !p.enterNested() {
		if p.check(BEGIN) {
			p.skipBlock()
		}
		return nil, false
	}
	defer p.leaveNested()

	beginTok, ok := p.expect(BEGIN, "expected 'begin'")
	if !ok {
		return nil, false
	}
	stmts := p.parseStmtList()
	p.expect(END, "expected 'end' to close 'begin' at line %d", beginTok.Line)
	return &Block{Pos: posOf(beginTok), Stmts: stmts}, true
}

func (p *Parser) parseStmtList() []Stmt {
	var stmts []Stmt
	for {
		if p.check(END) {
			return stmts
		}
		p.clearDepthLatches()
		start := p.pos
		stmt, ok := p.parseStatement()
		if ok {
			stmts = append(stmts, stmt)
		} else {
			p.synchronize(SEMICOLON, END)
			if p.pos == start && !p.check(SEMICOLON, END) {
				return stmts
			}
		}

		switch {
		case p.match(SEMICOLON):
		case p.check(END, EOF, DOT):
			return stmts
		case p.atStatementStart():
			p.errorf("missing ';' between statements")
		default:
			p.errorf("expected ';' or 'end', got %s", describe(p.peek()))
			p.synchronize(SEMICOLON, END)
			if !p.match(SEMICOLON) {
				return stmts
			}
		}
	}
}

//  Statements

// parseStatement dispatches on the first token. It carries no depth guard of
// its own: every construct that can contain a statement is guarded by
// enterNested and every expression by enterExpr.
func (p *Parser) parseStatement() (Stmt, bool) {
	tok := p.peek()
	switch tok.Type {
	case IDENTIFIER:
		return p.parseAssignment()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case BEGIN:
		block, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return block, true
	case WRITE:
		return p.parseWrite()
	case READ:
		return p.parseRead()
	case SEMICOLON, END, ELSE, DOT, EOF:
		return &EmptyStatement{Pos: posOf(tok)}, true
	default:
		p.errorf("invalid start of statement: %s", describe(tok))
		return nil, false
	}
}

func (p *Parser) parseAssignment() (Stmt, bool) {
	target := p.advance()
	p.resolve(target, true)
	if _, ok := p.expect(ASSIGN, "expected ':=' after '%s'", target.Lexeme); !ok {
		return nil, false
	}
	value, ok := p.parseCondition()
	if !ok {
		return nil, false
	}
	return &Assignment{Pos: posOf(target), Target: target.Lexeme, Value: value}, true
}

// parseIf handles  "if" cond "then" stmt ["else" stmt]
// A missing "then" is reported and parsing continues with the branch when a
// statement follows.
func (p *Parser) parseIf() (Stmt, bool) {
	if !p.enterNested() {
		p.skipStatement()
		return nil, false
	}
	defer p.leaveNested()

	ifTok := p.advance()
	cond, condOK := p.parseCondition()
	if !condOK {
		p.synchronize(THEN, SEMICOLON, END)
		if !p.check(THEN) {
			return nil, false
		}
	}
	if _, ok := p.expect(THEN, "expected 'then' after if condition"); !ok && !p.atStatementStart() {
		return nil, false
	}

	then, ok := p.parseStatement()
	if !ok {
		return nil, false
	}
	var els Stmt
	if p.match(ELSE) {
		if els, ok = p.parseStatement(); !ok {
			return nil, false
		}
	}
	if !condOK {
		return nil, false
	}
	return &IfStatement{Pos: posOf(ifTok), Cond: cond, Then: then, Else: els}, true
}

// parseWhile handles  "while" cond "do" stmt
func (p *Parser) parseWhile() (Stmt, bool) {
	if !p.enterNested() {
		p.skipStatement()
		return nil, false
	}
	defer p.leaveNested()

	whileTok := p.advance()
	cond, condOK := p.parseCondition()
	if !condOK {
		p.synchronize(DO, SEMICOLON, END)
		if !p.check(DO) {
			return nil, false
		}
	}
	if _, ok := p.expect(DO, "expected 'do' after while condition"); !ok && !p.atStatementStart() {
		return nil, false
	}

	body, ok := p.parseStatement()
	if !ok || !condOK {
		return nil, false
	}
	return &WhileStatement{Pos: posOf(whileTok), Cond: cond, Body: body}, true
}

func (p *Parser) parseWrite() (Stmt, bool) {
	writeTok := p.advance()
	if _, ok := p.expect(LPAREN, "expected '(' after 'write'"); !ok {
		return nil, false
	}
	value, ok := p.parseCondition()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(RPAREN, "expected ')' to close 'write'"); !ok {
		return nil, false
	}
	return &WriteStatement{Pos: posOf(writeTok), Value: value}, true
}

func (p *Parser) parseRead() (Stmt, bool) {
	readTok := p.advance()
	if _, ok := p.expect(LPAREN, "expected '(' after 'read'"); !ok {
		return nil, false
	}
	target, ok := p.expect(IDENTIFIER, "expected variable name in 'read'")
	if !ok {
		return nil, false
	}
	p.resolve(target, true)
	if _, ok := p.expect(RPAREN, "expected ')' to close 'read'"); !ok {
		return nil, false
	}
	return &ReadStatement{Pos: posOf(readTok), Target: target.Lexeme}, true
}

//  Conditions

// parseCondition handles  orTerm ("or" orTerm)*
func (p *Parser) parseCondition() (Expr, bool) {
	if !p.enterExpr() {
		return nil, false
	}
	defer p.leaveExpr()

	left, ok := p.parseOrTerm()
	if !ok {
		return nil, false
	}
	for p.check(OR) {
		op := p.advance()
		right, ok := p.parseOrTerm()
		if !ok {
			return nil, false
		}
		left = &BinaryOp{Pos: posOf(op), Op: OR, Left: left, Right: right}
	}
	return left, true
}

// parseOrTerm handles  andTerm ("and" andTerm)*
func (p *Parser) parseOrTerm() (Expr, bool) {
	if !p.enterExpr() {
		return nil, false
	}
	defer p.leaveExpr()

	left, ok := p.parseAndTerm()
	if !ok {
		return nil, false
	}
	for p.check(AND) {
		op := p.advance()
		right, ok := p.parseAndTerm()
		if !ok {
			return nil, false
		}
		left = &BinaryOp{Pos: posOf(op), Op: AND, Left: left, Right: right}
	}
	return left, true
}

// parseAndTerm handles  ["not"] comparison
func (p *Parser) parseAndTerm() (Expr, bool) {
	if !p.enterExpr() {
		return nil, false
	}
	defer p.leaveExpr()

	if p.check(NOT) {
		op := p.advance()
		operand, ok := p.parseComparison()
		if !ok {
			return nil, false
		}
		return &UnaryOp{Pos: posOf(op), Op: NOT, Operand: operand}, true
	}
	return p.parseComparison()
}

// parseComparison handles  "(" cond ")" | expr [relop expr]
func (p *Parser) parseComparison() (Expr, bool) {
	if !p.enterExpr() {
		return nil, false
	}
	defer p.leaveExpr()

	if p.check(LPAREN) {
		if group, ok := p.tryParenCondition(); ok {
			return group, true
		}
	}

	left, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if !p.peek().Type.isRelational() {
		return left, true
	}
	op := p.advance()
	right, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	return &BinaryOp{Pos: posOf(op), Op: op.Type, Left: left, Right: right}, true
}

// tryParenCondition parses "(" cond ")" speculatively. When the group turns
// out to be the first operand of a larger expression, as in "(a + b) > c",
// it rewinds and reports false.
func (p *Parser) tryParenCondition() (Expr, bool) {
	m := p.mark()
	p.advance() // (
	cond, ok := p.parseCondition()
	if ok && p.match(RPAREN) {
		next := p.peek().Type
		if !next.isArithmetic() && !next.isRelational() {
			return cond, true
		}
	}
	p.reset(m)
	return nil, false
}

//  Arithmetic expressions

// parseExpr handles  term (("+"|"-") term)*
func (p *Parser) parseExpr() (Expr, bool) {
	if !p.enterExpr() {
		return nil, false
	}
	defer p.leaveExpr()

	left, ok := p.parseTerm()
	if !ok {
		return nil, false
	}
	for p.check(PLUS, MINUS) {
		op := p.advance()
		right, ok := p.parseTerm()
		if !ok {
			return nil, false
		}
		left = &BinaryOp{Pos: posOf(op), Op: op.Type, Left: left, Right: right}
	}
	return left, true
}

// parseTerm handles  factor (("*"|"/") factor)*
func (p *Parser) parseTerm() (Expr, bool) {
	if !p.enterExpr() {
		return nil, false
	}
	defer p.leaveExpr()

	left, ok := p.parseFactor()
	if !ok {
		return nil, false
	}
	for p.check(STAR, SLASH) {
		op := p.advance()
		right, ok := p.parseFactor()
		if !ok {
			return nil, false
		}
		left = &BinaryOp{Pos: posOf(op), Op: op.Type, Left: left, Right: right}
	}
	return left, true
}

// parseFactor handles literals, variables, parenthesised expressions and
// unary minus.
func (p *Parser) parseFactor() (Expr, bool) {
	if !p.enterExpr() {
		return nil, false
	}
	defer p.leaveExpr()

	tok := p.peek()
	switch tok.Type {
	case IDENTIFIER:
		p.advance()
		p.resolve(tok, false)
		return &VariableRef{Pos: posOf(tok), Name: tok.Lexeme}, true

	case INTEGER, REAL:
		p.advance()
		return p.numberLiteral(tok), true

	case STRING:
		p.advance()
		return &StringLiteral{Pos: posOf(tok), Value: unescape(tok.Lexeme)}, true

	case TRUE, FALSE:
		p.advance()
		return &BooleanLiteral{Pos: posOf(tok), Value: tok.Type == TRUE}, true

	case LPAREN:
		p.advance()
		expr, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(RPAREN, "expected ')' to close '(' at %d:%d", tok.Line, tok.Column); !ok {
			return nil, false
		}
		return expr, true

	case MINUS:
		p.advance()
		operand, ok := p.parseFactor()
		if !ok {
			return nil, false
		}
		return &UnaryOp{Pos: posOf(tok), Op: MINUS, Operand: operand}, true

	default:
		p.errorf("expected expression, got %s", describe(tok))
		return nil, false
	}
}

// numberLiteral converts an INTEGER or REAL token. Out-of-range values are
// reported but still produce a node so parsing continues.
func (p *Parser) numberLiteral(tok Token) *NumberLiteral {
	lit := &NumberLiteral{Pos: posOf(tok), IsReal: tok.Type == REAL}
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		p.errorAt(tok, "numeric literal %s out of range", tok.Lexeme)
		return lit
	}
	if !lit.IsReal {
		if n, err := strconv.ParseUint(tok.Lexeme, 10, 64); err != nil || n > maxExactInteger {
			p.errorAt(tok, "integer literal out of range: %s exceeds %d", tok.Lexeme, uint64(maxExactInteger))
		}
	}
	lit.Value = v
	return lit
}

// unescape decodes backslash escapes in a raw string lexeme: \n and \t are
// control characters, any other escaped character stands for itself.
func unescape(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var sb strings.Builder
	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' && i+1 < len(rs) {
			i++
			switch rs[i] {
			case 'n':
				r = '\n'
			case 't':
				r = '\t'
			default:
				r = rs[i]
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
