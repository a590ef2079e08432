package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"minipas/pkg/compiler"
)

var (
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Emerald
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorAccent  = lipgloss.Color("#F59E0B") // Amber
)

type diagStyles struct {
	header  lipgloss.Style
	gutter  lipgloss.Style
	caret   lipgloss.Style
	success lipgloss.Style
	title   lipgloss.Style
}

func newDiagStyles(color bool) *diagStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return &diagStyles{header: plain, gutter: plain, caret: plain, success: plain, title: plain}
	}
	return &diagStyles{
		header:  lipgloss.NewStyle().Foreground(colorError).Bold(true),
		gutter:  lipgloss.NewStyle().Foreground(colorMuted),
		caret:   lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		success: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		title:   lipgloss.NewStyle().Bold(true).Underline(true),
	}
}

// renderDiagnostics prints each diagnostic with its source line and a caret
// under the column:
//
//	syntax error [line 3:6]: expected expression, got ';'
//	   3 | x := ;
//	     |      ^
func renderDiagnostics(w io.Writer, file string, diags compiler.Diagnostics) {
	for _, d := range diags {
		fmt.Fprintln(w, styles.header.Render(fmt.Sprintf("%s: %s", file, d)))
		if d.Source == "" {
			continue
		}
		num := fmt.Sprintf("%4d", d.Line)
		blank := strings.Repeat(" ", len(num))
		fmt.Fprintf(w, "%s %s\n", styles.gutter.Render(num+" |"), expandTabs(d.Source))
		col := d.Column - 1
		if col < 0 {
			col = 0
		}
		fmt.Fprintf(w, "%s %s%s\n", styles.gutter.Render(blank+" |"), strings.Repeat(" ", caretOffset(d.Source, col)), styles.caret.Render("^"))
	}
	fmt.Fprintln(w, styles.header.Render(fmt.Sprintf("%d error(s)", len(diags))))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// caretOffset converts a rune column into a display offset in the
// tab-expanded line.
func caretOffset(line string, col int) int {
	off := 0
	for i, r := range []rune(line) {
		if i == col {
			break
		}
		if r == '\t' {
			off += 4
		} else {
			off++
		}
	}
	return off
}
