package interp

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"minipas/pkg/compiler"
)

// Value is a tagged runtime value. Integer and Real both live in Num; the
// tag decides how arithmetic and formatting treat it.
type Value struct {
	Type compiler.Type
	Num  float64
	Bool bool
	Str  string
}

func IntegerValue(n float64) Value { return Value{Type: compiler.TypeInteger, Num: n} }
func RealValue(n float64) Value    { return Value{Type: compiler.TypeReal, Num: n} }
func BoolValue(b bool) Value       { return Value{Type: compiler.TypeBoolean, Bool: b} }
func StringValue(s string) Value   { return Value{Type: compiler.TypeString, Str: s} }

// ZeroValue is the value a declared variable starts with.
func ZeroValue(t compiler.Type) Value {
	switch t {
	case compiler.TypeReal:
		return RealValue(0)
	case compiler.TypeBoolean:
		return BoolValue(false)
	case compiler.TypeString:
		return StringValue("")
	}
	return IntegerValue(0)
}

// Truthy coerces any value to a boolean: numbers are true when non-zero,
// strings when non-empty.
func (v Value) Truthy() bool {
	switch v.Type {
	case compiler.TypeBoolean:
		return v.Bool
	case compiler.TypeString:
		return v.Str != ""
	}
	return v.Num != 0
}

// String formats v the way write prints it.
//
//	Integer 10   -> 10
//	Real 10      -> 10.0
//	Real +Inf    -> Infinity
func (v Value) String() string {
	switch v.Type {
	case compiler.TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case compiler.TypeString:
		return v.Str
	}
	switch {
	case math.IsNaN(v.Num):
		return "NaN"
	case math.IsInf(v.Num, 1):
		return "Infinity"
	case math.IsInf(v.Num, -1):
		return "-Infinity"
	}
	if v.Type == compiler.TypeInteger {
		return strconv.FormatFloat(math.Trunc(v.Num), 'f', -1, 64)
	}
	format := byte('f')
	if a := math.Abs(v.Num); a >= 1e21 || (a != 0 && a < 1e-6) {
		format = 'e'
	}
	s := strconv.FormatFloat(v.Num, format, -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// State is the flat runtime store: one entry per declared variable.
type State map[string]Value

// Names returns the variable names in sorted order.
func (s State) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
