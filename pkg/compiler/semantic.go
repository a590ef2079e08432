package compiler

import "fmt"

// Analyzer type-checks a parsed Program against its symbol table. It visits
// the whole tree and collects every violation; an expression that fails to
// check has TypeUnknown, and operators over an unknown operand stay unknown
// without reporting again.
type Analyzer struct {
	syms  *SymbolTable
	diags Diagnostics
}

func NewAnalyzer(syms *SymbolTable) *Analyzer {
	if syms == nil {
		syms = NewSymbolTable()
	}
	return &Analyzer{syms: syms}
}

// Analyze type-checks prog and returns the semantic diagnostics, empty when
// the program is well typed.
func Analyze(prog *Program, syms *SymbolTable) Diagnostics {
	a := NewAnalyzer(syms)
	a.Program(prog)
	return a.diags
}

func (a *Analyzer) Diagnostics() Diagnostics { return a.diags }

func (a *Analyzer) errorAt(pos Pos, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{
		Kind:    SemanticError,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
	})
}

func (a *Analyzer) Program(prog *Program) {
	if prog == nil {
		return
	}
	for _, d := range prog.Decls {
		if _, ok := a.syms.Lookup(d.Name); !ok {
			a.errorAt(d.Pos, "variable '%s' missing from symbol table", d.Name)
		}
	}
	if prog.Body != nil {
		a.stmt(prog.Body)
	}
}

func (a *Analyzer) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *Block:
		for _, inner := range s.Stmts {
			a.stmt(inner)
		}

	case *Assignment:
		valueType := a.expr(s.Value)
		sym, ok := a.syms.Lookup(s.Target)
		if !ok {
			a.errorAt(s.Pos, "undeclared variable '%s'", s.Target)
			return
		}
		if valueType == TypeUnknown {
			return
		}
		if !CanAssign(valueType, sym.Type) {
			a.errorAt(s.Pos, "type mismatch: cannot assign %s to variable '%s' of type %s",
				valueType, s.Target, sym.Type)
		}

	case *IfStatement:
		a.condition(s.Cond, "if")
		a.stmt(s.Then)
		if s.Else != nil {
			a.stmt(s.Else)
		}

	case *WhileStatement:
		a.condition(s.Cond, "while")
		a.stmt(s.Body)

	case *WriteStatement:
		a.expr(s.Value)

	case *ReadStatement:
		if _, ok := a.syms.Lookup(s.Target); !ok {
			a.errorAt(s.Pos, "undeclared variable '%s'", s.Target)
		}

	case *EmptyStatement, nil:
	}
}

func (a *Analyzer) condition(cond Expr, construct string) {
	t := a.expr(cond)
	if t != TypeUnknown && t != TypeBoolean {
		a.errorAt(cond.Position(), "%s condition must be Boolean, got %s", construct, t)
	}
}

// expr returns the static type of e, recording a diagnostic for each rule it
// breaks.
func (a *Analyzer) expr(e Expr) Type {
	switch n := e.(type) {
	case *NumberLiteral:
		if n.IsReal {
			return TypeReal
		}
		return TypeInteger

	case *StringLiteral:
		return TypeString

	case *BooleanLiteral:
		return TypeBoolean

	case *VariableRef:
		sym, ok := a.syms.Lookup(n.Name)
		if !ok {
			a.errorAt(n.Pos, "undeclared variable '%s'", n.Name)
			return TypeUnknown
		}
		return sym.Type

	case *UnaryOp:
		operand := a.expr(n.Operand)
		if operand == TypeUnknown {
			return TypeUnknown
		}
		switch n.Op {
		case MINUS:
			if !operand.IsNumeric() {
				a.errorAt(n.Pos, "unary '-' requires a numeric operand, got %s", operand)
				return TypeUnknown
			}
			return operand
		case NOT:
			if operand != TypeBoolean {
				a.errorAt(n.Pos, "'not' requires a Boolean operand, got %s", operand)
				return TypeUnknown
			}
			return TypeBoolean
		}
		a.errorAt(n.Pos, "unknown unary operator %s", n.Op)
		return TypeUnknown

	case *BinaryOp:
		return a.binary(n)
	}
	return TypeUnknown
}

func (a *Analyzer) binary(n *BinaryOp) Type {
	left := a.expr(n.Left)
	right := a.expr(n.Right)

	if n.Op == SLASH {
		if lit, ok := n.Right.(*NumberLiteral); ok && lit.Value == 0 {
			a.errorAt(n.Pos, "division by zero")
		}
	}
	if left == TypeUnknown || right == TypeUnknown {
		return TypeUnknown
	}

	switch n.Op {
	case PLUS, MINUS, STAR, SLASH:
		if !left.IsNumeric() || !right.IsNumeric() {
			a.errorAt(n.Pos, "operator '%s' requires numeric operands, got %s and %s", opText(n.Op), left, right)
			return TypeUnknown
		}
		if left == TypeReal || right == TypeReal {
			return TypeReal
		}
		return TypeInteger

	case EQUALS, NOT_EQ:
		if left == TypeString && right == TypeString {
			return TypeBoolean
		}
		fallthrough
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		if !left.IsNumeric() || !right.IsNumeric() {
			a.errorAt(n.Pos, "operator '%s' cannot compare %s and %s", opText(n.Op), left, right)
			return TypeUnknown
		}
		return TypeBoolean

	case AND, OR:
		if left != TypeBoolean || right != TypeBoolean {
			a.errorAt(n.Pos, "operator '%s' requires Boolean operands, got %s and %s", opText(n.Op), left, right)
			return TypeUnknown
		}
		return TypeBoolean
	}
	a.errorAt(n.Pos, "unknown operator %s", n.Op)
	return TypeUnknown
}
