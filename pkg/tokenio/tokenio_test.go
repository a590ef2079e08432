package tokenio

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"minipas/pkg/compiler"
)

func TestWrite(t *testing.T) {
	tokens := []compiler.Token{
		{Type: compiler.IDENTIFIER, Lexeme: "x", Line: 1, Column: 1},
		{Type: compiler.STRING, Lexeme: "a\tb\\c", Line: 1, Column: 3},
		{Type: compiler.EOF, Lexeme: "", Line: 1, Column: 12},
	}
	var buf bytes.Buffer
	if err := Write(&buf, tokens); err != nil {
		t.Fatal(err)
	}
	want := "IDENTIFIER\tx\t1\t1\nSTRING\ta\\tb\\\\c\t1\t3\nEOF\t\t1\t12\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteReadLexedProgram(t *testing.T) {
	src := "program p;\nvar s: string;\nbegin s := 'tab\\there' end."
	tokens := compiler.Lex(src)

	var buf bytes.Buffer
	if err := Write(&buf, tokens); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, tokens) {
		t.Errorf("imported tokens differ\n got: %v\nwant: %v", got, tokens)
	}

	prog, diags, _ := compiler.ParseTokens(got, "", compiler.DefaultLimits())
	if len(diags) != 0 || prog == nil {
		t.Fatalf("imported tokens did not parse: %v", diags)
	}
}

func TestRead(t *testing.T) {
	input := "PROGRAM\tprogram\t1\t1\n\nIDENTIFIER\tp\t1\t9\r\n"
	got, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []compiler.Token{
		{Type: compiler.PROGRAM, Lexeme: "program", Line: 1, Column: 1},
		{Type: compiler.IDENTIFIER, Lexeme: "p", Line: 1, Column: 9},
		{Type: compiler.EOF, Lexeme: "", Line: 1, Column: 10},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		line    string
	}{
		{"Too Few Fields", "IDENTIFIER\tx\t1\n", ErrMalformedLine, "line 1"},
		{"Unknown Kind", "PROGRAM\tprogram\t1\t1\nWIDGET\tx\t1\t9\n", ErrUnknownKind, "line 2"},
		{"Bad Line Number", "IDENTIFIER\tx\tone\t1\n", ErrMalformedLine, "line 1"},
		{"Bad Column", "\nIDENTIFIER\tx\t1\t0\n", ErrMalformedLine, "line 2"},
		{"Bad Escape", "STRING\ta\\qb\t1\t1\n", ErrMalformedLine, "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if !strings.HasPrefix(err.Error(), tt.line+":") {
				t.Errorf("error %q does not name %s", err, tt.line)
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	got, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Type != compiler.EOF {
		t.Errorf("expected a lone EOF, got %v", got)
	}
}
