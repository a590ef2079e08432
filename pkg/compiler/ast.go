package compiler

import (
	"fmt"
	"strconv"
)

// Pos is the source position of the token a node was built from.
type Pos struct {
	Line   int
	Column int
}

// Position returns p; embedding Pos gives every node a Position method.
func (p Pos) Position() Pos { return p }

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
	String() string
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// NumberLiteral is a numeric constant. The value is always a float64; the
// lexical form decides whether it is typed Integer or Real.
//
//	x := 10     NumberLiteral{Value: 10}
//	x := 2.5    NumberLiteral{Value: 2.5, IsReal: true}
type NumberLiteral struct {
	Pos
	Value  float64
	IsReal bool
}

func (*NumberLiteral) exprNode() {}
func (n *NumberLiteral) String() string {
	s := strconv.FormatFloat(n.Value, 'f', -1, 64)
	if n.IsReal && !hasFraction(s) {
		s += ".0"
	}
	return s
}

func hasFraction(s string) bool {
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			return true
		}
	}
	return false
}

// StringLiteral is a quoted constant with escapes already decoded.
type StringLiteral struct {
	Pos
	Value string
}

func (*StringLiteral) exprNode()        {}
func (s *StringLiteral) String() string { return strconv.Quote(s.Value) }

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Pos
	Value bool
}

func (*BooleanLiteral) exprNode()        {}
func (b *BooleanLiteral) String() string { return strconv.FormatBool(b.Value) }

// VariableRef is a read of a named variable.
type VariableRef struct {
	Pos
	Name string
}

func (*VariableRef) exprNode()        {}
func (v *VariableRef) String() string { return v.Name }

// BinaryOp represents Left Op Right for arithmetic, relational and logical
// operators.
//
//	x + 1
//	^ ^ ^
//	| | Right
//	| Op
//	Left
type BinaryOp struct {
	Pos
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryOp) exprNode() {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opText(b.Op), b.Right)
}

// UnaryOp represents "-" Operand or "not" Operand.
type UnaryOp struct {
	Pos
	Op      TokenType
	Operand Expr
}

func (*UnaryOp) exprNode() {}
func (u *UnaryOp) String() string {
	if u.Op == NOT {
		return fmt.Sprintf("(not %s)", u.Operand)
	}
	return fmt.Sprintf("(%s%s)", opText(u.Op), u.Operand)
}

// opText returns the source spelling of an operator token type.
func opText(tt TokenType) string {
	switch tt {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case LESS:
		return "<"
	case LESS_EQ:
		return "<="
	case GREATER:
		return ">"
	case GREATER_EQ:
		return ">="
	case EQUALS:
		return "="
	case NOT_EQ:
		return "<>"
	case AND:
		return "and"
	case OR:
		return "or"
	case NOT:
		return "not"
	}
	return tt.String()
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	Node
	stmtNode()
}

// Assignment represents  Target := Value
type Assignment struct {
	Pos
	Target string
	Value  Expr
}

func (*Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment(%s := %s)", a.Target, a.Value)
}

// IfStatement represents if Cond then Then [else Else]
type IfStatement struct {
	Pos
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

func (*IfStatement) stmtNode() {}
func (i *IfStatement) String() string {
	if i.Else != nil {
		return fmt.Sprintf("IfStatement(if %s then %s else %s)", i.Cond, i.Then, i.Else)
	}
	return fmt.Sprintf("IfStatement(if %s then %s)", i.Cond, i.Then)
}

// WhileStatement represents while Cond do Body
type WhileStatement struct {
	Pos
	Cond Expr
	Body Stmt
}

func (*WhileStatement) stmtNode() {}
func (w *WhileStatement) String() string {
	return fmt.Sprintf("WhileStatement(while %s do %s)", w.Cond, w.Body)
}

// EmptyStatement is the ε statement, e.g. the gap in "begin ; end".
type EmptyStatement struct {
	Pos
}

func (*EmptyStatement) stmtNode()        {}
func (*EmptyStatement) String() string { return "EmptyStatement" }

// WriteStatement represents write(Value)
type WriteStatement struct {
	Pos
	Value Expr
}

func (*WriteStatement) stmtNode() {}
func (w *WriteStatement) String() string {
	return fmt.Sprintf("WriteStatement(%s)", w.Value)
}

// ReadStatement represents read(Target)
type ReadStatement struct {
	Pos
	Target string
}

func (*ReadStatement) stmtNode() {}
func (r *ReadStatement) String() string {
	return fmt.Sprintf("ReadStatement(%s)", r.Target)
}

// Block represents begin Stmts end. It is also a statement.
type Block struct {
	Pos
	Stmts []Stmt
}

func (*Block) stmtNode() {}
func (b *Block) String() string {
	return fmt.Sprintf("Block(len=%d)", len(b.Stmts))
}

//  Declarations

// VarDecl is one declared name; "var a, b: integer;" yields two.
type VarDecl struct {
	Pos
	Name string
	Type Type
}

func (d *VarDecl) String() string {
	return fmt.Sprintf("VarDecl(%s: %s)", d.Name, d.Type)
}

// Program is the root node.
type Program struct {
	Pos
	Name  string
	Decls []*VarDecl // nil when there is no var section
	Body  *Block
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(%s, decls=%d, %s)", p.Name, len(p.Decls), p.Body)
}
