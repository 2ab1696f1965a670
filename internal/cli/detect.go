package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var detectJSON bool

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Output detected stacks as JSON")
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect technology stacks in the workspace",
	Long:  `Inspect the workspace and environment for stack evidence and print ranked identities with their confidence and contributing signals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules()
		if err != nil {
			return err
		}
		sigs, ids, err := detectWorkspace(cmd.Context(), flagRoot, rs)
		if err != nil {
			return err
		}

		if detectJSON {
			out, err := json.MarshalIndent(ids, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling identities: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		if len(ids) == 0 {
			fmt.Printf("No stack detected (%d signals observed).\n", len(sigs))
			return nil
		}

		fmt.Printf("Detected stacks (%d signals observed):\n", len(sigs))
		for _, id := range ids {
			marker := ""
			if id.Ambiguous {
				marker = "  [ambiguous]"
			}
			fmt.Printf("  %-10s confidence %.2f  via %s%s\n",
				id.ID, id.Confidence, strings.Join(id.Signals, ", "), marker)
		}
		return nil
	},
}
