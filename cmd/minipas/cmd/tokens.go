package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minipas/pkg/compiler"
	"minipas/pkg/pipeline"
	"minipas/pkg/tokenio"
)

var tokensRun bool

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Work with exported token files",
}

var tokensImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Parse and check a token file without re-lexing",
	Long: `Reads a tab-separated token file (KIND, LEXEME, LINE, COLUMN) and runs the
parser and semantic analyser over it. With --run the program is executed too.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokensImport,
}

func init() {
	tokensImportCmd.Flags().BoolVar(&tokensRun, "run", false, "execute the program when it checks clean")
	tokensCmd.AddCommand(tokensImportCmd)
	rootCmd.AddCommand(tokensCmd)
}

func runTokensImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	tokens, err := tokenio.Read(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	logger.Debug("imported tokens", "file", args[0], "tokens", len(tokens))

	rep := pipeline.RunTokens(tokens, "", pipelineOptions(cmd, !tokensRun))
	return report(cmd, args[0], rep, func() {
		fmt.Fprint(cmd.OutOrStdout(), compiler.Print(rep.Program))
	})
}
