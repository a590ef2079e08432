package compiler

import (
	"fmt"
	"strings"
)

// Print renders node as an indented tree, one construct per line.
//
//	Program(demo)
//	  Variables:
//	    Var(x: Integer)
//	  Body:
//	    Block:
//	      Assign(x := (1 + 2))
func Print(node Node) string {
	var pr printer
	pr.node(node)
	return pr.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (pr *printer) line(format string, args ...any) {
	pr.sb.WriteString(strings.Repeat("  ", pr.indent))
	fmt.Fprintf(&pr.sb, format, args...)
	pr.sb.WriteByte('\n')
}

func (pr *printer) nested(f func()) {
	pr.indent++
	f()
	pr.indent--
}

func (pr *printer) node(node Node) {
	switch n := node.(type) {
	case *Program:
		pr.line("Program(%s)", n.Name)
		pr.nested(func() {
			if n.Decls != nil {
				pr.line("Variables:")
				pr.nested(func() {
					for _, d := range n.Decls {
						pr.line("Var(%s: %s)", d.Name, d.Type)
					}
				})
			}
			pr.line("Body:")
			pr.nested(func() { pr.node(n.Body) })
		})
	case *VarDecl:
		pr.line("Var(%s: %s)", n.Name, n.Type)
	case Stmt:
		pr.stmt(n)
	case Expr:
		pr.line("%s", n)
	default:
		pr.line("<nil>")
	}
}

func (pr *printer) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *Block:
		if s == nil {
			pr.line("<nil>")
			return
		}
		pr.line("Block:")
		pr.nested(func() {
			for _, inner := range s.Stmts {
				pr.stmt(inner)
			}
		})
	case *Assignment:
		pr.line("Assign(%s := %s)", s.Target, s.Value)
	case *IfStatement:
		pr.line("If(%s)", s.Cond)
		pr.nested(func() {
			pr.line("then:")
			pr.nested(func() { pr.stmt(s.Then) })
			if s.Else != nil {
				pr.line("else:")
				pr.nested(func() { pr.stmt(s.Else) })
			}
		})
	case *WhileStatement:
		pr.line("While(%s)", s.Cond)
		pr.nested(func() { pr.stmt(s.Body) })
	case *WriteStatement:
		pr.line("Write(%s)", s.Value)
	case *ReadStatement:
		pr.line("Read(%s)", s.Target)
	case *EmptyStatement:
		pr.line("Empty")
	default:
		pr.line("<nil>")
	}
}
