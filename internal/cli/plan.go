package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stackforge-labs/stackforge/internal/plan"
	"github.com/stackforge-labs/stackforge/internal/registry"
	"github.com/stackforge-labs/stackforge/internal/resolve"
	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

var (
	planAnswers    string
	planCategories []string
)

func init() {
	planCmd.Flags().StringVar(&planAnswers, "answers", "", "Answer file with explicit choices")
	planCmd.Flags().StringSliceVar(&planCategories, "category", nil, "Limit to categories (project, tests, docker, ci)")
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the generation plan without writing",
	Long:  `Resolve the configuration and print the ordered generation plan. Nothing touches the filesystem; the same workspace and answers always produce the identical plan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cfg, err := buildPlan(cmd, planAnswers, planCategories)
		if err != nil {
			return err
		}

		fmt.Printf("Configuration:\n%s\n", indent(cfg.Fingerprint()))
		if len(p.Nodes) == 0 {
			fmt.Println("Plan: nothing to generate for this configuration.")
			return nil
		}
		fmt.Printf("Plan (%d operations):\n%s", len(p.Nodes), indent(p.String()))
		return nil
	},
}

// buildPlan runs the detect → resolve → plan pipeline shared by the plan
// and generate commands.
func buildPlan(cmd *cobra.Command, answersPath string, categories []string) (*plan.Plan, *resolve.Config, error) {
	rs, err := loadRules()
	if err != nil {
		return nil, nil, err
	}

	var answers *ruleset.AnswerSet
	if answersPath != "" {
		answers, err = ruleset.ParseAnswersFile(answersPath)
		if err != nil {
			return nil, nil, err
		}
	}

	sigs, ids, err := detectWorkspace(cmd.Context(), flagRoot, rs)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := resolve.Resolve(flagRoot, sigs, ids, answers)
	if err != nil {
		return nil, nil, err
	}

	p, err := plan.Build(cfg, registry.Specs(), categories)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

func indent(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}
