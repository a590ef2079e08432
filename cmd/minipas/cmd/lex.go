package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minipas/pkg/compiler"
	"minipas/pkg/tokenio"
	"minipas/pkg/utils"
)

var lexOutput string

var lexCmd = &cobra.Command{
	Use:   "lex FILE",
	Short: "Print or export the token stream of a program",
	Long: `Lexes FILE and prints one token per line. With -o the tokens are written
as a tab-separated token file that "minipas tokens import" reads back.`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	lexCmd.Flags().StringVarP(&lexOutput, "output", "o", "", "write tokens to this file instead of stdout")
	rootCmd.AddCommand(lexCmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	src, _, err := utils.ReadSource(args[0])
	if err != nil {
		return err
	}
	tokens := compiler.Lex(src)
	logger.Debug("lexed", "file", args[0], "tokens", len(tokens))

	if lexOutput != "" {
		f, err := os.Create(lexOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", lexOutput, err)
		}
		if err := tokenio.Write(f, tokens); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", lexOutput, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tokens to %s\n", len(tokens), lexOutput)
	} else {
		out := cmd.OutOrStdout()
		for _, tok := range tokens {
			fmt.Fprintln(out, tok)
		}
	}

	if diags := compiler.LexErrors(tokens); len(diags) > 0 {
		diags.FillSource(src)
		renderDiagnostics(cmd.ErrOrStderr(), args[0], diags)
		return errFailed
	}
	return nil
}
