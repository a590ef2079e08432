package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"minipas/pkg/interp"
	"minipas/pkg/pipeline"
	"minipas/pkg/utils"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Execute a program",
	Long: `Checks FILE and, when it is clean, executes it. write output goes to stdout,
read takes lines from stdin. The final variable state is printed at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	src, _, err := utils.ReadSource(args[0])
	if err != nil {
		return err
	}
	rep := pipeline.Run(src, pipelineOptions(cmd, false))
	return report(cmd, args[0], rep, nil)
}

// pipelineOptions builds the options shared by check, run and tokens import.
func pipelineOptions(cmd *cobra.Command, checkOnly bool) pipeline.Options {
	return pipeline.Options{
		ParserLimits: cfg.ParserLimits(),
		Interp: interp.Options{
			Limits: cfg.InterpreterLimits(),
			Input:  cmd.InOrStdin(),
			Output: cmd.OutOrStdout(),
			Prompt: cmd.OutOrStdout(),
		},
		CheckOnly: checkOnly,
		Logger:    logger,
	}
}

// report prints the outcome of a pipeline run. onClean runs when a
// check-only run found nothing.
func report(cmd *cobra.Command, file string, rep *pipeline.Report, onClean func()) error {
	logger.Debug("pipeline finished", "run_id", rep.RunID, "stage", rep.Stage.String())
	if len(rep.Diagnostics) > 0 {
		renderDiagnostics(cmd.ErrOrStderr(), file, rep.Diagnostics)
		return errFailed
	}
	if rep.Stage != pipeline.StageRun {
		if onClean != nil {
			onClean()
		}
		return nil
	}
	if rep.Err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.header.Render(rep.Summary))
		return errFailed
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.success.Render(rep.Summary))
	return nil
}
