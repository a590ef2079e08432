// Package tokenio exports and imports token streams as tab-separated text,
// one token per line:
//
//	KIND<TAB>LEXEME<TAB>LINE<TAB>COLUMN
//
// Backslash, tab, carriage return and newline inside a lexeme are written as
// \\, \t, \r and \n.
package tokenio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"minipas/pkg/compiler"
)

var (
	ErrMalformedLine = errors.New("malformed token line")
	ErrUnknownKind   = errors.New("unknown token kind")
)

var (
	escaper   = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\r", `\r`, "\n", `\n`)
	unescapes = map[byte]byte{'\\': '\\', 't': '\t', 'r': '\r', 'n': '\n'}
)

// Write emits tokens in order, including any EOF token.
func Write(w io.Writer, tokens []compiler.Token) error {
	bw := bufio.NewWriter(w)
	for _, tok := range tokens {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%d\t%d\n", tok.Type, escaper.Replace(tok.Lexeme), tok.Line, tok.Column); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses a token file. Blank lines are skipped; an EOF token is
// appended when the input does not end with one. Errors name the 1-based
// file line.
func Read(r io.Reader) ([]compiler.Token, error) {
	var tokens []compiler.Token
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		tok, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}

	if len(tokens) == 0 || tokens[len(tokens)-1].Type != compiler.EOF {
		eof := compiler.Token{Type: compiler.EOF, Line: 1, Column: 1}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Line, eof.Column = last.Line, last.Column+len([]rune(last.Lexeme))
		}
		tokens = append(tokens, eof)
	}
	return tokens, nil
}

func parseLine(text string) (compiler.Token, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != 4 {
		return compiler.Token{}, fmt.Errorf("%w: want 4 tab-separated fields, got %d", ErrMalformedLine, len(fields))
	}
	kind, ok := compiler.LookupTokenType(fields[0])
	if !ok {
		return compiler.Token{}, fmt.Errorf("%w: %q", ErrUnknownKind, fields[0])
	}
	lexeme, err := unescape(fields[1])
	if err != nil {
		return compiler.Token{}, err
	}
	line, err := strconv.Atoi(fields[2])
	if err != nil || line < 1 {
		return compiler.Token{}, fmt.Errorf("%w: bad line number %q", ErrMalformedLine, fields[2])
	}
	col, err := strconv.Atoi(fields[3])
	if err != nil || col < 1 {
		return compiler.Token{}, fmt.Errorf("%w: bad column %q", ErrMalformedLine, fields[3])
	}
	return compiler.Token{Type: kind, Lexeme: lexeme, Line: line, Column: col}, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 == len(s) {
			return "", fmt.Errorf("%w: dangling escape in %q", ErrMalformedLine, s)
		}
		i++
		c, ok := unescapes[s[i]]
		if !ok {
			return "", fmt.Errorf("%w: unknown escape \\%c", ErrMalformedLine, s[i])
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}
