// Package compiler provides the front end for a small Pascal-like teaching
// language: a lexer, a scoped symbol table, a recovering recursive-descent
// parser and a semantic type checker.
//
// Pipeline: source → Lex → Parse (AST + symbols) → Analyze → diagnostics
//
// Nothing in the package panics on bad input; problems are reported as
// Diagnostics and each phase keeps going to find as many as it can.
package compiler
