package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"minipas/pkg/pipeline"
	"minipas/pkg/utils"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Report lexical, syntax and semantic errors",
	Long: `Lexes, parses and type-checks FILE without running it. The exit status is 1
when any diagnostic is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	src, _, err := utils.ReadSource(args[0])
	if err != nil {
		return err
	}
	rep := pipeline.Run(src, pipelineOptions(cmd, true))
	return report(cmd, args[0], rep, func() {
		fmt.Fprintln(cmd.OutOrStdout(), styles.success.Render(args[0]+": no problems found"))
	})
}
