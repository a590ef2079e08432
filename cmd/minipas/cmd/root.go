package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"minipas/pkg/config"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *slog.Logger
	styles *diagStyles
)

// errFailed marks a command whose problems were already printed.
var errFailed = errors.New("failed")

var rootCmd = &cobra.Command{
	Use:   "minipas",
	Short: "minipas - front end and interpreter for a small Pascal-like language",
	Long: `minipas lexes, parses, type-checks and runs programs written in a small
Pascal-like teaching language.

Commands:
  lex     - print or export the token stream
  tokens  - work with exported token files
  parse   - print the AST and symbol table
  check   - report lexical, syntax and semantic errors
  run     - execute a program`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errFailed) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $MINIPAS_CONFIG or ./minipas.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	level, err := cfg.Output.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	styles = newDiagStyles(!noColor && !cfg.Output.NoColor)
	logger.Debug("config loaded", "parser", cfg.Parser, "interpreter", cfg.Interpreter)
	return nil
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
