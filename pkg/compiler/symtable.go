package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the static type of a variable or expression.
type Type int

const (
	TypeUnknown Type = iota // result of an expression that failed to check
	TypeInteger
	TypeReal
	TypeBoolean
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "Integer"
	case TypeReal:
		return "Real"
	case TypeBoolean:
		return "Boolean"
	case TypeString:
		return "String"
	}
	return "unknown"
}

// IsNumeric reports whether t is Integer or Real.
func (t Type) IsNumeric() bool {
	return t == TypeInteger || t == TypeReal
}

// CanAssign reports whether a value of type from may be stored in a variable
// of type to. Integer to Real is the only implicit widening.
func CanAssign(from, to Type) bool {
	if from == TypeUnknown || to == TypeUnknown {
		return false
	}
	return from == to || (from == TypeInteger && to == TypeReal)
}

// TypeFromKeyword maps a type keyword token to its Type.
func TypeFromKeyword(tt TokenType) (Type, bool) {
	switch tt {
	case INTEGER_TYPE:
		return TypeInteger, true
	case REAL_TYPE:
		return TypeReal, true
	case BOOLEAN_TYPE:
		return TypeBoolean, true
	case STRING_TYPE:
		return TypeString, true
	}
	return TypeUnknown, false
}

// Symbol is the compile-time record of a declared variable.
type Symbol struct {
	Name        string
	Type        Type
	Line        int // declaration position
	Column      int
	Initialized bool // an assignment or read targets it somewhere in the program
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s: %s", s.Name, s.Type)
}

// Scope maps names to symbols. The parent link is used for lookup only.
type Scope struct {
	symbols map[string]*Symbol
	parent  *Scope
}

func newScope(parent *Scope) *Scope {
	return &Scope{symbols: make(map[string]*Symbol), parent: parent}
}

// Define adds sym to this scope. It returns false, leaving the scope
// untouched, if the name is already defined here.
func (s *Scope) Define(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	return true
}

// LookupLocal checks only this scope.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Lookup searches this scope, then each enclosing scope outwards.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Symbols returns the symbols of this scope sorted by name.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.symbols))
	for _, sym := range s.symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SymbolTable tracks the global scope and the innermost open scope.
// The language only ever uses the global scope; EnterScope/ExitScope exist
// for nested constructs the grammar may grow later.
type SymbolTable struct {
	global  *Scope
	current *Scope
	depth   int
}

func NewSymbolTable() *SymbolTable {
	g := newScope(nil)
	return &SymbolTable{global: g, current: g}
}

func (t *SymbolTable) EnterScope() {
	t.current = newScope(t.current)
	t.depth++
}

// ExitScope closes the innermost scope. The global scope is never closed.
func (t *SymbolTable) ExitScope() {
	if t.depth == 0 {
		return
	}
	t.current = t.current.parent
	t.depth--
}

// Define adds sym to the innermost scope; see Scope.Define.
func (t *SymbolTable) Define(sym *Symbol) bool {
	return t.current.Define(sym)
}

// Lookup returns the symbol and whether it was found in any visible scope.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	return t.current.Lookup(name)
}

// Exists reports whether name resolves in a visible scope.
func (t *SymbolTable) Exists(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

func (t *SymbolTable) Global() *Scope  { return t.global }
func (t *SymbolTable) Current() *Scope { return t.current }

// Symbols returns the global symbols sorted by name.
func (t *SymbolTable) Symbols() []*Symbol {
	return t.global.Symbols()
}

// String returns a deterministically ordered dump of every open scope.
func (t *SymbolTable) String() string {
	var scopes []*Scope
	for s := t.current; s != nil; s = s.parent {
		scopes = append(scopes, s)
	}

	var sb strings.Builder
	for i := len(scopes) - 1; i >= 0; i-- {
		level := len(scopes) - 1 - i
		if level == 0 {
			sb.WriteString("Globals:")
		} else {
			fmt.Fprintf(&sb, "%sScope %d:", strings.Repeat("  ", level), level)
		}
		syms := scopes[i].Symbols()
		if len(syms) == 0 {
			sb.WriteString(" (empty)\n")
			continue
		}
		sb.WriteString("\n")
		for _, sym := range syms {
			fmt.Fprintf(&sb, "%s  %-20s  %-8s (declared %d:%d)\n",
				strings.Repeat("  ", level), sym.Name, sym.Type, sym.Line, sym.Column)
		}
	}
	return sb.String()
}
