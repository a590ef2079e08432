package interp

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"minipas/pkg/compiler"
)

var (
	truthySpellings = map[string]bool{"true": true, "1": true, "yes": true, "t": true, "y": true}
	falsySpellings  = map[string]bool{"false": true, "0": true, "no": true, "f": true, "n": true}
)

func (it *Interpreter) execRead(s *compiler.ReadStatement) error {
	t, ok := it.declaredType(s.Target)
	if !ok {
		return fail(s, ErrUndefinedVariable, "'%s'", s.Target)
	}
	fmt.Fprintf(it.prompt, "enter value for %s: ", s.Target)

	line, err := it.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return fail(s, ErrInputInterrupted, "")
	}

	v, err := ConvertInput(strings.TrimSpace(line), t)
	if err != nil {
		return fail(s, ErrInvalidInput, "%v", err)
	}
	it.log.Debug("read", "name", s.Target, "value", v.String())
	return it.store(s, s.Target, v)
}

// ConvertInput turns one line of user input into a value of type t.
//
//	Integer  parsed as a number, then truncated ("10.7" -> 10)
//	Real     parsed as a number
//	Boolean  true/1/yes/t/y or false/0/no/f/n, any case
//	String   taken as is
func ConvertInput(text string, t compiler.Type) (Value, error) {
	switch t {
	case compiler.TypeInteger:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("expected an integer, got %q", text)
		}
		f = math.Trunc(f)
		if f >= maxInt64 || f < -maxInt64 {
			return Value{}, fmt.Errorf("integer %q out of range", text)
		}
		return IntegerValue(f), nil

	case compiler.TypeReal:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("expected a real number, got %q", text)
		}
		return RealValue(f), nil

	case compiler.TypeBoolean:
		lower := strings.ToLower(text)
		switch {
		case truthySpellings[lower]:
			return BoolValue(true), nil
		case falsySpellings[lower]:
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("expected a boolean, got %q", text)

	case compiler.TypeString:
		return StringValue(text), nil
	}
	return Value{}, fmt.Errorf("cannot read a value of type %s", t)
}
