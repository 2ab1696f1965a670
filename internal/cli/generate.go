package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackforge-labs/stackforge/internal/config"
	"github.com/stackforge-labs/stackforge/internal/writer"
)

var (
	generateAnswers    string
	generateCategories []string
)

func init() {
	generateCmd.Flags().StringVar(&generateAnswers, "answers", "", "Answer file with explicit choices")
	generateCmd.Flags().StringSliceVar(&generateCategories, "category", nil, "Limit to categories (project, tests, docker, ci)")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate artifacts for the detected stacks",
	Long: `Resolve the configuration, build the generation plan, and execute it
against the workspace. Files you may have customized are skipped, generated
files are replaced atomically, and managed blocks are rewritten in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPlan(cmd, generateAnswers, generateCategories)
		if err != nil {
			return err
		}

		report, err := writer.Execute(cmd.Context(), flagRoot, p, config.Workers())
		if err != nil {
			return err
		}
		report.Fprint(os.Stdout)

		return reportOutcome(report)
	},
}

// reportOutcome maps the generation report to the command outcome: skipped
// nodes are a warning (exit 1), failed nodes are an unrecoverable write
// failure and fatal (exit 2).
func reportOutcome(report *writer.Report) error {
	if n := report.FailedCount(); n > 0 {
		return fmt.Errorf("%d write operation(s) failed", n)
	}
	if report.SkippedCount() > 0 {
		exitCode = 1
	}
	return nil
}
