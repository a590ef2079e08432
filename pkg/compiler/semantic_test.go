package compiler

import (
	"reflect"
	"testing"
)

const semanticDecls = "program t; var x, i: integer; r: real; b: boolean; s: string; begin "

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name: "Well Typed",
			body: "x := 1; r := 2.5; b := x > 1; s := 'hi'; write(s); write(b); write(x + r)",
		},
		{
			name:     "Assign String To Integer",
			body:     `x := "hello"`,
			expected: []string{"type mismatch: cannot assign String to variable 'x' of type Integer"},
		},
		{
			name:     "Literal Division By Zero",
			body:     "x := 10 / 0",
			expected: []string{"division by zero"},
		},
		{
			name:     "Parenthesised Zero Divisor",
			body:     "r := 10 / (0.0)",
			expected: []string{"division by zero"},
		},
		{
			name: "Negated Zero Is Not Checked",
			body: "x := 10 / -0",
		},
		{
			name: "Integer Widens To Real",
			body: "r := i + 1; r := i / 2",
		},
		{
			name:     "Real Does Not Narrow",
			body:     "i := r",
			expected: []string{"type mismatch: cannot assign Real to variable 'i' of type Integer"},
		},
		{
			name:     "Real Literal Does Not Narrow",
			body:     "i := 2.5",
			expected: []string{"type mismatch: cannot assign Real to variable 'i' of type Integer"},
		},
		{
			name: "Integer Division Stays Integer",
			body: "i := 7 / 2",
		},
		{
			name:     "Non Boolean If",
			body:     "if x then x := 1",
			expected: []string{"if condition must be Boolean, got Integer"},
		},
		{
			name:     "Non Boolean While",
			body:     "while s do x := 1",
			expected: []string{"while condition must be Boolean, got String"},
		},
		{
			name:     "String Arithmetic",
			body:     "x := 'a' + 1",
			expected: []string{"operator '+' requires numeric operands, got String and Integer"},
		},
		{
			name:     "Unknown Propagates Silently",
			body:     "x := (s + 1) * 2; b := not (s * 2 > 1)",
			expected: []string{
				"operator '+' requires numeric operands, got String and Integer",
				"operator '*' requires numeric operands, got String and Integer",
			},
		},
		{
			name: "String Equality",
			body: "b := s = 'x'; b := s <> 'y'",
		},
		{
			name:     "String Ordering",
			body:     "b := s < 'x'",
			expected: []string{"operator '<' cannot compare String and String"},
		},
		{
			name:     "Boolean Equality",
			body:     "b := b = true",
			expected: []string{"operator '=' cannot compare Boolean and Boolean"},
		},
		{
			name:     "Logical Needs Booleans",
			body:     "b := x and b",
			expected: []string{"operator 'and' requires Boolean operands, got Integer and Boolean"},
		},
		{
			name:     "Not Needs Boolean",
			body:     "b := not x",
			expected: []string{"'not' requires a Boolean operand, got Integer"},
		},
		{
			name:     "Minus Needs Number",
			body:     "s := -s",
			expected: []string{"unary '-' requires a numeric operand, got String"},
		},
		{
			name:     "Assign Boolean To String",
			body:     "s := x > 1",
			expected: []string{"type mismatch: cannot assign Boolean to variable 's' of type String"},
		},
		{
			name: "Errors Across The Tree",
			body: "x := 's'; if r then begin b := 1 end; while b do s := 2",
			expected: []string{
				"type mismatch: cannot assign String to variable 'x' of type Integer",
				"if condition must be Boolean, got Real",
				"type mismatch: cannot assign Integer to variable 'b' of type Boolean",
				"type mismatch: cannot assign Integer to variable 's' of type String",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, diags, _ := Check(semanticDecls+tt.body+" end.", DefaultLimits())
			if prog == nil {
				t.Fatalf("parse failed: %v", diags)
			}
			var got []string
			for _, d := range diags {
				if d.Kind != SemanticError {
					t.Fatalf("unexpected %s", d)
				}
				got = append(got, d.Message)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("diagnostics\n got: %q\nwant: %q", got, tt.expected)
			}
		})
	}
}

func TestAnalyzeWideningLaw(t *testing.T) {
	intExprs := []string{"1", "i", "i + 2", "i * i - 3", "-i", "i / 2"}
	realExprs := []string{"1.5", "r", "i + 0.5", "r * 2", "-r", "i / 2.0"}

	for _, e := range intExprs {
		_, diags, _ := Check(semanticDecls+"r := "+e+" end.", DefaultLimits())
		if len(diags) != 0 {
			t.Errorf("r := %s: Integer to Real must be accepted, got %v", e, diags)
		}
	}
	for _, e := range realExprs {
		_, diags, _ := Check(semanticDecls+"i := "+e+" end.", DefaultLimits())
		if len(diags) != 1 {
			t.Errorf("i := %s: Real to Integer must be rejected once, got %v", e, diags)
		}
	}
}

func TestAnalyzeDiagnosticPosition(t *testing.T) {
	_, diags, _ := Check("program t;\nvar x: integer;\nbegin\n  x := 'a'\nend.", DefaultLimits())
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	want := "semantic error [line 4:3]: type mismatch: cannot assign String to variable 'x' of type Integer"
	if got := diags[0].String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if diags[0].Source != "  x := 'a'" {
		t.Errorf("source snippet: got %q", diags[0].Source)
	}
}

func TestAnalyzeUndeclared(t *testing.T) {
	// Hand-built tree whose names are missing from the symbol table.
	prog := &Program{
		Name: "p",
		Body: &Block{Stmts: []Stmt{
			&Assignment{Pos: Pos{Line: 1, Column: 1}, Target: "x", Value: &NumberLiteral{Value: 1}},
			&WriteStatement{Value: &VariableRef{Pos: Pos{Line: 2, Column: 7}, Name: "y"}},
			&ReadStatement{Pos: Pos{Line: 3, Column: 1}, Target: "z"},
		}},
	}
	diags := Analyze(prog, NewSymbolTable())
	want := []string{
		"undeclared variable 'x'",
		"undeclared variable 'y'",
		"undeclared variable 'z'",
	}
	var got []string
	for _, d := range diags {
		got = append(got, d.Message)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAnalyzeNilProgram(t *testing.T) {
	if diags := Analyze(nil, nil); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}
