package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackforge-labs/stackforge/internal/branding"
	"github.com/stackforge-labs/stackforge/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// exitCode is set by commands that complete with warnings (exit 1). Fatal
// errors are mapped in Execute.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` inspects a workspace for evidence of technology stacks, merges
detected signals with explicit answers into one configuration, and
deterministically generates test, Docker, and CI scaffolding. The doctor
subcommand diagnoses the surrounding environment and can apply bounded fixes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

// Execute runs the root command with build info injected via ldflags and
// returns the process exit code: 0 clean, 1 completed with warnings or
// skips, 2 fatal.
func Execute(version, commit, date string) int {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// Command errors are planning/setup failures or failed writes, all
		// fatal. Warning-level outcomes set exitCode and return nil instead.
		return 2
	}
	return exitCode
}
