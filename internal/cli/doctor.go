package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackforge-labs/stackforge/internal/config"
	"github.com/stackforge-labs/stackforge/internal/doctor"
	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

var (
	doctorFix     bool
	doctorJSON    bool
	doctorAnswers string
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Run declared remediations for failing probes")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output the health report as JSON")
	doctorCmd.Flags().StringVar(&doctorAnswers, "answers", "", "Answer file; its fix flag also authorizes remediation")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the development environment",
	Long: `Evaluate the diagnostic probe rules from the rule table: tool presence,
version thresholds, and per-rule classification. Probes are read-only;
remediation only runs with --fix, and each fixed probe is re-checked once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules()
		if err != nil {
			return err
		}

		fix := doctorFix
		if doctorAnswers != "" {
			answers, err := ruleset.ParseAnswersFile(doctorAnswers)
			if err != nil {
				return err
			}
			fix = fix || answers.Fix
		}

		var opts []doctor.Option
		if w := config.Workers(); w > 0 {
			opts = append(opts, doctor.WithWorkers(w))
		}
		if t := config.ProbeTimeout(); t > 0 {
			opts = append(opts, doctor.WithTimeout(t))
		}

		engine := doctor.New(rs.Probes, doctor.ExecRunner{}, opts...)
		report, err := engine.Run(cmd.Context(), fix)
		if err != nil {
			return err
		}

		if doctorJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling health report: %w", err)
			}
			fmt.Println(string(out))
		} else {
			report.Fprint(os.Stdout)
		}

		if !report.AllPassed() {
			exitCode = 1
		}
		return nil
	},
}
