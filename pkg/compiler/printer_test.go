package compiler

import "testing"

func TestPrint(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{
			name: "Program Without Variables",
			node: &Program{Name: "p", Body: &Block{Stmts: []Stmt{
				&WriteStatement{Value: &StringLiteral{Value: "hi"}},
				&EmptyStatement{},
			}}},
			expected: "Program(p)\n  Body:\n    Block:\n      Write(\"hi\")\n      Empty\n",
		},
		{
			name:     "Missing Body",
			node:     &Program{Name: "p"},
			expected: "Program(p)\n  Body:\n    <nil>\n",
		},
		{
			name: "Read And Nested Block",
			node: &Block{Stmts: []Stmt{
				&ReadStatement{Target: "x"},
				&Block{Stmts: []Stmt{&Assignment{Target: "x", Value: &NumberLiteral{Value: 2, IsReal: true}}}},
			}},
			expected: "Block:\n  Read(x)\n  Block:\n    Assign(x := 2.0)\n",
		},
		{
			name:     "Expression",
			node:     &UnaryOp{Op: NOT, Operand: &BooleanLiteral{Value: false}},
			expected: "(not false)\n",
		},
		{
			name:     "Declaration",
			node:     &VarDecl{Name: "flag", Type: TypeBoolean},
			expected: "Var(flag: Boolean)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.node); got != tt.expected {
				t.Errorf("Print mismatch\n got: %q\nwant: %q", got, tt.expected)
			}
		})
	}
}

func TestNumberLiteralString(t *testing.T) {
	tests := []struct {
		lit      NumberLiteral
		expected string
	}{
		{NumberLiteral{Value: 10}, "10"},
		{NumberLiteral{Value: 10, IsReal: true}, "10.0"},
		{NumberLiteral{Value: 3.25, IsReal: true}, "3.25"},
	}
	for _, tt := range tests {
		if got := tt.lit.String(); got != tt.expected {
			t.Errorf("%+v: got %q, want %q", tt.lit, got, tt.expected)
		}
	}
}
