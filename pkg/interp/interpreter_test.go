package interp

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"minipas/pkg/compiler"
)

// compile parses and checks src, failing the test on any diagnostic.
func compile(t *testing.T, src string) (*compiler.Program, *compiler.SymbolTable) {
	t.Helper()
	prog, diags, syms := compiler.Check(src, compiler.DefaultLimits())
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	return prog, syms
}

func run(t *testing.T, src, input string, limits Limits) (State, string, error) {
	t.Helper()
	prog, syms := compile(t, src)
	var out bytes.Buffer
	it := New(syms, Options{Limits: limits, Input: strings.NewReader(input), Output: &out})
	state, err := it.Run(prog)
	return state, out.String(), err
}

func TestRunFibonacci(t *testing.T) {
	src := `program f; var n,a,b,t:integer;
begin n:=10;a:=0;b:=1; while n>0 do begin t:=a+b;a:=b;b:=t;n:=n-1 end end.`
	state, _, err := run(t, src, "", Limits{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// F(0)=0, F(1)=1: after ten steps b holds F(11).
	if got := state["b"]; got != IntegerValue(89) {
		t.Errorf("b = %v, want 89", got)
	}
	if got := state["n"]; got != IntegerValue(0) {
		t.Errorf("n = %v, want 0", got)
	}
}

func TestRunZeroValues(t *testing.T) {
	state, _, err := run(t, "program p; var i: integer; r: real; b: boolean; s: string; begin end.", "", Limits{})
	if err != nil {
		t.Fatal(err)
	}
	want := State{
		"i": IntegerValue(0),
		"r": RealValue(0),
		"b": BoolValue(false),
		"s": StringValue(""),
	}
	for name, v := range want {
		if state[name] != v {
			t.Errorf("%s = %#v, want %#v", name, state[name], v)
		}
	}
}

func TestRunArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		variable string
		expected Value
	}{
		{"Integer Sum", "i := 2 + 3 * 4", "i", IntegerValue(14)},
		{"Integer Division Truncates", "i := 7 / 2", "i", IntegerValue(3)},
		{"Negative Division Truncates", "i := -7 / 2", "i", IntegerValue(-3)},
		{"Real Division", "r := 7 / 2.0", "r", RealValue(3.5)},
		{"Widening Store", "r := 4", "r", RealValue(4)},
		{"Widening Expression", "i := 5; r := i / 2", "r", RealValue(2)},
		{"Unary Minus", "i := 3; i := -i", "i", IntegerValue(-3)},
		{"Comparison", "b := 3 >= 3", "b", BoolValue(true)},
		{"String Equality", "s := 'a'; b := s = 'a'", "b", BoolValue(true)},
		{"String Inequality", "s := 'a'; b := s <> 'a'", "b", BoolValue(false)},
		{"And Or Not", "b := (1 < 2) and not (2 < 1) or false", "b", BoolValue(true)},
		{"Mixed Comparison", "r := 2.5; b := r > 2", "b", BoolValue(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "program p; var i: integer; r: real; b: boolean; s: string; begin " + tt.body + " end."
			state, _, err := run(t, src, "", Limits{})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if got := state[tt.variable]; got != tt.expected {
				t.Errorf("%s = %#v, want %#v", tt.variable, got, tt.expected)
			}
		})
	}
}

func TestRunWrite(t *testing.T) {
	src := `program p; var i: integer; r: real; b: boolean; s: string;
begin
  i := 10; r := 10; b := i > 5; s := 'hello';
  write(i); write(r); write(b); write(s); write(i / 4); write(r / 4); write(1 = 2)
end.`
	_, out, err := run(t, src, "", Limits{})
	if err != nil {
		t.Fatal(err)
	}
	want := "10\n10.0\ntrue\nhello\n2\n2.5\nfalse\n"
	if out != want {
		t.Errorf("output\n got: %q\nwant: %q", out, want)
	}
}

func TestRunIfElse(t *testing.T) {
	src := `program p; var x: integer;
begin
  x := 5;
  if x > 3 then write('big') else write('small');
  if x > 9 then write('huge') else write('not huge');
  if x = 5 then write('five')
end.`
	_, out, err := run(t, src, "", Limits{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "big\nnot huge\nfive\n"; out != want {
		t.Errorf("output\n got: %q\nwant: %q", out, want)
	}
}

func TestRunRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		line    int
		column  int
	}{
		{"Division By Zero", "i := 0; i := 10 / i", ErrDivisionByZero, 1, 71},
		{"Real Division By Zero", "r := 0.0; r := 1.5 / r", ErrDivisionByZero, 1, 74},
		{"Integer Overflow", "i := 9007199254740992; i := i * i * i * i", ErrOverflow, 0, 0},
		{"Real Overflow", "r := 1.0; while true do r := r * 1000000.0", ErrOverflow, 0, 0},
		{"Negated Integer Minimum", "i := 9007199254740992 * -1024; i := -i", ErrOverflow, 1, 91},
		{"Infinite Loop", "i := 1; while i > 0 do i := i + 1", ErrInfiniteLoop, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "program p; var i: integer; r: real; b: boolean; begin " + tt.body + " end."
			_, _, err := run(t, src, "", Limits{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			var re *RuntimeError
			if !errors.As(err, &re) {
				t.Fatalf("error %T is not a *RuntimeError", err)
			}
			if tt.line != 0 && (re.Line != tt.line || re.Column != tt.column) {
				t.Errorf("position %d:%d, want %d:%d", re.Line, re.Column, tt.line, tt.column)
			}
			if !strings.HasPrefix(err.Error(), "runtime error [line ") {
				t.Errorf("unexpected error text %q", err.Error())
			}
		})
	}
}

func TestRunLoopGuard(t *testing.T) {
	src := "program p; var x: integer; begin x := 1; while x > 0 do x := x + 1 end."
	state, _, err := run(t, src, "", Limits{MaxLoopIterations: 50})
	if !errors.Is(err, ErrInfiniteLoop) {
		t.Fatalf("got %v, want ErrInfiniteLoop", err)
	}
	// Partial state survives: the body ran exactly 50 times.
	if got := state["x"]; got != IntegerValue(51) {
		t.Errorf("x = %v, want 51", got)
	}
}

func TestRunLoopGuardIsShared(t *testing.T) {
	// Two loops of 30 iterations each exceed a shared ceiling of 50.
	src := `program p; var i: integer;
begin
  i := 0; while i < 30 do i := i + 1;
  i := 0; while i < 30 do i := i + 1
end.`
	_, _, err := run(t, src, "", Limits{MaxLoopIterations: 50})
	if !errors.Is(err, ErrInfiniteLoop) {
		t.Fatalf("got %v, want ErrInfiniteLoop", err)
	}
}

func TestRunOutputGuard(t *testing.T) {
	src := "program p; var i: integer; begin while true do write(i) end."
	_, out, err := run(t, src, "", Limits{MaxLoopIterations: 100000, MaxOutputLines: 20})
	if !errors.Is(err, ErrOutputLimit) {
		t.Fatalf("got %v, want ErrOutputLimit", err)
	}
	if n := strings.Count(out, "\n"); n != 20 {
		t.Errorf("wrote %d lines before the guard, want 20", n)
	}
}

func TestRunGuardsResetBetweenRuns(t *testing.T) {
	prog, syms := compile(t, "program p; var i: integer; begin i := 0; while i < 40 do i := i + 1 end.")
	it := New(syms, Options{Limits: Limits{MaxLoopIterations: 50}})
	for run := 0; run < 3; run++ {
		if _, err := it.Run(prog); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}
}

func TestRunRead(t *testing.T) {
	src := `program p; var i: integer; r: real; b: boolean; s: string;
begin read(i); read(r); read(b); read(s); write(i); write(r); write(b); write(s) end.`
	prog, syms := compile(t, src)
	var out, prompt bytes.Buffer
	it := New(syms, Options{
		Input:  strings.NewReader("10.7\n2\nYes\n  hello world \n"),
		Output: &out,
		Prompt: &prompt,
	})
	state, err := it.Run(prog)
	if err != nil {
		t.Fatal(err)
	}
	if state["i"] != IntegerValue(10) || state["r"] != RealValue(2) || state["b"] != BoolValue(true) {
		t.Errorf("unexpected state %v", state)
	}
	if want := "10\n2.0\ntrue\nhello world\n"; out.String() != want {
		t.Errorf("output %q, want %q", out.String(), want)
	}
	if !strings.HasPrefix(prompt.String(), "enter value for i: ") {
		t.Errorf("prompt %q", prompt.String())
	}
}

func TestRunReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		decl    string
		input   string
		wantErr error
	}{
		{"Bad Integer", "integer", "ten\n", ErrInvalidInput},
		{"Bad Real", "real", "1,5\n", ErrInvalidInput},
		{"Bad Boolean", "boolean", "maybe\n", ErrInvalidInput},
		{"End Of Input", "integer", "", ErrInputInterrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "program p; var v: " + tt.decl + "; begin read(v) end."
			_, _, err := run(t, src, tt.input, Limits{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunReadLastLineWithoutNewline(t *testing.T) {
	state, _, err := run(t, "program p; var v: integer; begin read(v) end.", "42", Limits{})
	if err != nil {
		t.Fatal(err)
	}
	if state["v"] != IntegerValue(42) {
		t.Errorf("v = %v, want 42", state["v"])
	}
}

func TestInterpretSummary(t *testing.T) {
	prog, syms := compile(t, "program p; var b, a: integer; r: real; begin a := 2; b := a * 3; r := b end.")
	state, summary := Interpret(prog, syms, Options{})
	want := "program executed successfully\n  a = 2\n  b = 6\n  r = 6.0"
	if summary != want {
		t.Errorf("summary\n got: %q\nwant: %q", summary, want)
	}
	if len(state) != 3 {
		t.Errorf("state has %d variables, want 3", len(state))
	}

	prog, syms = compile(t, "program p; var a: integer; begin a := 1; a := a / (a - 1); a := 5 end.")
	state, summary = Interpret(prog, syms, Options{})
	if !strings.HasPrefix(summary, "runtime error [line 1:") || !strings.Contains(summary, "division by zero") {
		t.Errorf("unexpected failure summary %q", summary)
	}
	if state["a"] != IntegerValue(1) {
		t.Errorf("partial state a = %v, want 1", state["a"])
	}
}

func TestInterpretNilProgram(t *testing.T) {
	_, summary := Interpret(nil, nil, Options{})
	if !strings.Contains(summary, "nil program") {
		t.Errorf("unexpected summary %q", summary)
	}
}

func TestRunUndefinedVariable(t *testing.T) {
	// Bypasses the analyser: x is never declared.
	prog := &compiler.Program{Name: "p", Body: &compiler.Block{Stmts: []compiler.Stmt{
		&compiler.WriteStatement{Value: &compiler.VariableRef{Pos: compiler.Pos{Line: 1, Column: 7}, Name: "x"}},
	}}}
	_, err := New(nil, Options{}).Run(prog)
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("got %v, want ErrUndefinedVariable", err)
	}
}

func TestRunLiteralDivisionBypassingChecks(t *testing.T) {
	// The analyser rejects 10/0; executing the tree anyway must still fail.
	prog, _, syms := compiler.ParseToAST("program t; var x: integer; begin x := 10/0 end.")
	_, err := New(syms, Options{}).Run(prog)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("got %v, want ErrDivisionByZero", err)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v        Value
		expected string
	}{
		{IntegerValue(42), "42"},
		{IntegerValue(-7), "-7"},
		{RealValue(10), "10.0"},
		{RealValue(2.5), "2.5"},
		{RealValue(math.Inf(1)), "Infinity"},
		{RealValue(math.Inf(-1)), "-Infinity"},
		{RealValue(math.NaN()), "NaN"},
		{RealValue(1e300), "1e+300"},
		{BoolValue(true), "true"},
		{StringValue("a b"), "a b"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.expected {
			t.Errorf("%#v: got %q, want %q", tt.v, got, tt.expected)
		}
	}
}

func TestConvertInput(t *testing.T) {
	tests := []struct {
		text     string
		typ      compiler.Type
		expected Value
		wantErr  bool
	}{
		{"10", compiler.TypeInteger, IntegerValue(10), false},
		{"-3.9", compiler.TypeInteger, IntegerValue(-3), false},
		{"1e3", compiler.TypeInteger, IntegerValue(1000), false},
		{"abc", compiler.TypeInteger, Value{}, true},
		{"inf", compiler.TypeInteger, Value{}, true},
		{"2.25", compiler.TypeReal, RealValue(2.25), false},
		{"x", compiler.TypeReal, Value{}, true},
		{"TRUE", compiler.TypeBoolean, BoolValue(true), false},
		{"y", compiler.TypeBoolean, BoolValue(true), false},
		{"1", compiler.TypeBoolean, BoolValue(true), false},
		{"No", compiler.TypeBoolean, BoolValue(false), false},
		{"0", compiler.TypeBoolean, BoolValue(false), false},
		{"perhaps", compiler.TypeBoolean, Value{}, true},
		{"anything at all", compiler.TypeString, StringValue("anything at all"), false},
	}
	for _, tt := range tests {
		got, err := ConvertInput(tt.text, tt.typ)
		if (err != nil) != tt.wantErr {
			t.Errorf("ConvertInput(%q, %s) error = %v, wantErr %v", tt.text, tt.typ, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.expected {
			t.Errorf("ConvertInput(%q, %s) = %#v, want %#v", tt.text, tt.typ, got, tt.expected)
		}
	}
}
