// Package interp executes a type-checked Program by walking its AST.
//
// Runtime state is a single flat store keyed by variable name. Two guards,
// owned by each Interpreter and reset at the start of every run, bound the
// total number of loop iterations and output lines so a runaway program
// always terminates.
package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"minipas/pkg/compiler"
)

// Limits are the runtime ceilings. Zero fields take the DefaultLimits value.
type Limits struct {
	MaxLoopIterations int
	MaxOutputLines    int
}

func DefaultLimits() Limits {
	return Limits{MaxLoopIterations: 10000, MaxOutputLines: 1000}
}

type Options struct {
	Limits Limits
	Input  io.Reader    // source for read; nil behaves like an empty stream
	Output io.Writer    // destination for write; nil discards
	Prompt io.Writer    // destination for read prompts; nil discards
	Logger *slog.Logger // debug tracing; nil discards
}

type Interpreter struct {
	syms   *compiler.SymbolTable
	limits Limits
	in     *bufio.Reader
	out    io.Writer
	prompt io.Writer
	log    *slog.Logger

	state       State
	loopCount   int
	outputLines int
}

// maxInt64 is 2^63, the first float64 beyond the int64 range.
const maxInt64 = float64(math.MaxInt64)

func New(syms *compiler.SymbolTable, opts Options) *Interpreter {
	def := DefaultLimits()
	if opts.Limits.MaxLoopIterations <= 0 {
		opts.Limits.MaxLoopIterations = def.MaxLoopIterations
	}
	if opts.Limits.MaxOutputLines <= 0 {
		opts.Limits.MaxOutputLines = def.MaxOutputLines
	}
	if opts.Input == nil {
		opts.Input = strings.NewReader("")
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Prompt == nil {
		opts.Prompt = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Interpreter{
		syms:   syms,
		limits: opts.Limits,
		in:     bufio.NewReader(opts.Input),
		out:    opts.Output,
		prompt: opts.Prompt,
		log:    opts.Logger,
	}
}

// Interpret runs prog and returns the final variable state together with a
// summary: the sorted variable dump on success, the runtime error text on
// failure. The state is returned in both cases.
func Interpret(prog *compiler.Program, syms *compiler.SymbolTable, opts Options) (State, string) {
	state, err := New(syms, opts).Run(prog)
	return state, Summary(state, err)
}

// Summary renders the outcome of a run.
func Summary(state State, err error) string {
	if err != nil {
		return err.Error()
	}
	var sb strings.Builder
	sb.WriteString("program executed successfully")
	for _, name := range state.Names() {
		fmt.Fprintf(&sb, "\n  %s = %s", name, state[name])
	}
	return sb.String()
}

// Run executes prog from a fresh store. The error, if any, is a
// *RuntimeError; the state accumulated up to the failure is still returned.
func (it *Interpreter) Run(prog *compiler.Program) (State, error) {
	it.state = State{}
	it.loopCount = 0
	it.outputLines = 0

	if prog == nil {
		return it.state, errors.New("interp: nil program")
	}
	it.log.Debug("run program", "name", prog.Name)

	for _, d := range prog.Decls {
		it.state[d.Name] = ZeroValue(d.Type)
		it.log.Debug("declare", "name", d.Name, "type", d.Type.String(), "value", it.state[d.Name].String())
	}
	if prog.Body == nil {
		return it.state, nil
	}
	if err := it.exec(prog.Body); err != nil {
		return it.state, err
	}
	it.log.Debug("program finished", "name", prog.Name, "loop_iterations", it.loopCount, "output_lines", it.outputLines)
	return it.state, nil
}

func (it *Interpreter) exec(stmt compiler.Stmt) error {
	switch s := stmt.(type) {
	case *compiler.Block:
		for _, inner := range s.Stmts {
			if err := it.exec(inner); err != nil {
				return err
			}
		}
		return nil

	case *compiler.Assignment:
		v, err := it.eval(s.Value)
		if err != nil {
			return err
		}
		return it.store(s, s.Target, v)

	case *compiler.IfStatement:
		cond, err := it.eval(s.Cond)
		if err != nil {
			return err
		}
		it.log.Debug("if", "line", s.Line, "condition", cond.Truthy())
		if cond.Truthy() {
			return it.exec(s.Then)
		}
		if s.Else != nil {
			return it.exec(s.Else)
		}
		return nil

	case *compiler.WhileStatement:
		return it.execWhile(s)

	case *compiler.WriteStatement:
		it.outputLines++
		if it.outputLines > it.limits.MaxOutputLines {
			return fail(s, ErrOutputLimit, "more than %d lines written", it.limits.MaxOutputLines)
		}
		v, err := it.eval(s.Value)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(it.out, v.String()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil

	case *compiler.ReadStatement:
		return it.execRead(s)

	case *compiler.EmptyStatement, nil:
		return nil
	}
	return fmt.Errorf("interp: unknown statement %T", stmt)
}

func (it *Interpreter) execWhile(s *compiler.WhileStatement) error {
	iterations := 0
	for {
		cond, err := it.eval(s.Cond)
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			break
		}
		iterations++
		it.loopCount++
		if it.loopCount > it.limits.MaxLoopIterations {
			return fail(s, ErrInfiniteLoop, "more than %d loop iterations", it.limits.MaxLoopIterations)
		}
		if err := it.exec(s.Body); err != nil {
			return err
		}
	}
	it.log.Debug("while done", "line", s.Line, "iterations", iterations)
	return nil
}

// declaredType is the static type of name, taken from the symbol table when
// one was supplied and from the store otherwise.
func (it *Interpreter) declaredType(name string) (compiler.Type, bool) {
	if it.syms != nil {
		if sym, ok := it.syms.Lookup(name); ok {
			return sym.Type, true
		}
	}
	v, ok := it.state[name]
	return v.Type, ok
}

// store writes v into name, widening Integer to Real for Real variables.
func (it *Interpreter) store(at compiler.Node, name string, v Value) error {
	if _, ok := it.state[name]; !ok {
		return fail(at, ErrUndefinedVariable, "'%s'", name)
	}
	if t, _ := it.declaredType(name); t == compiler.TypeReal && v.Type == compiler.TypeInteger {
		v.Type = compiler.TypeReal
	}
	it.state[name] = v
	it.log.Debug("assign", "name", name, "value", v.String())
	return nil
}

func (it *Interpreter) eval(e compiler.Expr) (Value, error) {
	switch n := e.(type) {
	case *compiler.NumberLiteral:
		if n.IsReal {
			return RealValue(n.Value), nil
		}
		return IntegerValue(n.Value), nil

	case *compiler.StringLiteral:
		return StringValue(n.Value), nil

	case *compiler.BooleanLiteral:
		return BoolValue(n.Value), nil

	case *compiler.VariableRef:
		v, ok := it.state[n.Name]
		if !ok {
			return Value{}, fail(n, ErrUndefinedVariable, "'%s'", n.Name)
		}
		return v, nil

	case *compiler.UnaryOp:
		operand, err := it.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		if n.Op == compiler.NOT {
			return BoolValue(!operand.Truthy()), nil
		}
		operand.Num = -operand.Num
		if operand.Type == compiler.TypeInteger && (operand.Num >= maxInt64 || operand.Num < -maxInt64) {
			return Value{}, fail(n, ErrOverflow, "integer result of unary '-' out of range")
		}
		return operand, nil

	case *compiler.BinaryOp:
		left, err := it.eval(n.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := it.eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		return it.binary(n, left, right)
	}
	return Value{}, fmt.Errorf("interp: unknown expression %T", e)
}

func (it *Interpreter) binary(n *compiler.BinaryOp, l, r Value) (Value, error) {
	switch n.Op {
	case compiler.PLUS, compiler.MINUS, compiler.STAR, compiler.SLASH:
		return arithmetic(n, l, r)
	case compiler.AND:
		return BoolValue(l.Truthy() && r.Truthy()), nil
	case compiler.OR:
		return BoolValue(l.Truthy() || r.Truthy()), nil
	}
	return compare(n, l, r)
}

// arithmetic applies + - * / and checks the result. Two Integer operands give
// an Integer result; "/" then truncates toward zero.
func arithmetic(n *compiler.BinaryOp, l, r Value) (Value, error) {
	integer := l.Type == compiler.TypeInteger && r.Type == compiler.TypeInteger
	var res float64
	switch n.Op {
	case compiler.PLUS:
		res = l.Num + r.Num
	case compiler.MINUS:
		res = l.Num - r.Num
	case compiler.STAR:
		res = l.Num * r.Num
	case compiler.SLASH:
		if r.Num == 0 {
			return Value{}, fail(n, ErrDivisionByZero, "")
		}
		res = l.Num / r.Num
		if integer {
			res = math.Trunc(res)
		}
	}

	switch {
	case math.IsNaN(res):
		return Value{}, fail(n, ErrOverflow, "result of '%s' is not a number", opString(n.Op))
	case math.IsInf(res, 0):
		return Value{}, fail(n, ErrOverflow, "result of '%s' is infinite", opString(n.Op))
	case integer && (res >= maxInt64 || res < -maxInt64):
		return Value{}, fail(n, ErrOverflow, "integer result of '%s' out of range", opString(n.Op))
	}
	if integer {
		return IntegerValue(res), nil
	}
	return RealValue(res), nil
}

func compare(n *compiler.BinaryOp, l, r Value) (Value, error) {
	if l.Type == compiler.TypeString && r.Type == compiler.TypeString {
		switch n.Op {
		case compiler.EQUALS:
			return BoolValue(l.Str == r.Str), nil
		case compiler.NOT_EQ:
			return BoolValue(l.Str != r.Str), nil
		}
	}
	if l.Type == compiler.TypeBoolean && r.Type == compiler.TypeBoolean {
		switch n.Op {
		case compiler.EQUALS:
			return BoolValue(l.Bool == r.Bool), nil
		case compiler.NOT_EQ:
			return BoolValue(l.Bool != r.Bool), nil
		}
	}

	switch n.Op {
	case compiler.LESS:
		return BoolValue(l.Num < r.Num), nil
	case compiler.LESS_EQ:
		return BoolValue(l.Num <= r.Num), nil
	case compiler.GREATER:
		return BoolValue(l.Num > r.Num), nil
	case compiler.GREATER_EQ:
		return BoolValue(l.Num >= r.Num), nil
	case compiler.EQUALS:
		return BoolValue(l.Num == r.Num), nil
	case compiler.NOT_EQ:
		return BoolValue(l.Num != r.Num), nil
	}
	return Value{}, fmt.Errorf("interp: unknown operator %s", n.Op)
}

func opString(tt compiler.TokenType) string {
	switch tt {
	case compiler.PLUS:
		return "+"
	case compiler.MINUS:
		return "-"
	case compiler.STAR:
		return "*"
	case compiler.SLASH:
		return "/"
	}
	return tt.String()
}
