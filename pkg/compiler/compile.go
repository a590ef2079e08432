package compiler

// ParseToAST lexes and parses src with DefaultLimits.
//
// Lexical errors short-circuit: the result is a nil Program, an empty symbol
// table and only the lexical diagnostics. Otherwise the Program may be
// partial when syntax errors were recovered from.
func ParseToAST(src string) (*Program, Diagnostics, *SymbolTable) {
	return ParseToASTWithLimits(src, DefaultLimits())
}

// ParseToASTWithLimits is ParseToAST with explicit depth limits.
func ParseToASTWithLimits(src string, limits Limits) (*Program, Diagnostics, *SymbolTable) {
	return ParseTokens(Lex(src), src, limits)
}

// ParseTokens parses an already lexed token stream. rawSource is used only
// for diagnostic snippets and may be empty, e.g. for imported token files.
func ParseTokens(tokens []Token, rawSource string, limits Limits) (*Program, Diagnostics, *SymbolTable) {
	if lexDiags := LexErrors(tokens); len(lexDiags) > 0 {
		lexDiags.FillSource(rawSource)
		return nil, lexDiags, NewSymbolTable()
	}

	p := NewParser(tokens, rawSource, limits)
	prog := p.Parse()
	return prog, p.Diagnostics(), p.Symbols()
}

// Check runs the parser and, when parsing produced no diagnostics, the
// semantic analyser. The returned diagnostics are in phase order.
func Check(src string, limits Limits) (*Program, Diagnostics, *SymbolTable) {
	prog, diags, syms := ParseToASTWithLimits(src, limits)
	if len(diags) > 0 || prog == nil {
		return prog, diags, syms
	}
	semDiags := Analyze(prog, syms)
	semDiags.FillSource(src)
	return prog, semDiags, syms
}
