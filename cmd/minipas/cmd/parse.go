package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"minipas/pkg/compiler"
	"minipas/pkg/utils"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the AST and symbol table of a program",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	src, _, err := utils.ReadSource(args[0])
	if err != nil {
		return err
	}
	prog, diags, syms := compiler.ParseToASTWithLimits(src, cfg.ParserLimits())
	if len(diags) > 0 {
		renderDiagnostics(cmd.ErrOrStderr(), args[0], diags)
		return errFailed
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.title.Render("AST"))
	fmt.Fprint(out, compiler.Print(prog))
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.title.Render("Symbols"))
	fmt.Fprint(out, syms)
	return nil
}
