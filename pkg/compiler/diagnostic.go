package compiler

import (
	"fmt"
	"strings"
)

// DiagnosticKind tells which phase produced a Diagnostic.
type DiagnosticKind int

const (
	LexicalError DiagnosticKind = iota
	SyntaxError
	SemanticError
)

func (k DiagnosticKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case SemanticError:
		return "semantic error"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic is a compile-time problem report. Diagnostics are data: every
// phase collects them and keeps going.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Column  int
	Message string
	Source  string // offending source line, trimmed of trailing whitespace; may be empty
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [line %d:%d]: %s", d.Kind, d.Line, d.Column, d.Message)
}

// Diagnostics is an ordered list in discovery order.
type Diagnostics []Diagnostic

// Strings renders every diagnostic on its own line-sized string.
func (ds Diagnostics) Strings() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

func (ds Diagnostics) String() string {
	return strings.Join(ds.Strings(), "\n")
}

// sourceLines splits src for snippet lookup.
type sourceLines []string

func newSourceLines(src string) sourceLines {
	if src == "" {
		return nil
	}
	return strings.Split(src, "\n")
}

// at returns the 1-based line, or "" when it is not available.
func (s sourceLines) at(line int) string {
	if line < 1 || line > len(s) {
		return ""
	}
	return strings.TrimRight(s[line-1], " \t\r")
}

// FillSource sets the Source snippet of every diagnostic that lacks one.
func (ds Diagnostics) FillSource(src string) {
	lines := newSourceLines(src)
	for i := range ds {
		if ds[i].Source == "" {
			ds[i].Source = lines.at(ds[i].Line)
		}
	}
}
