package cli

import (
	"context"
	"fmt"

	"github.com/stackforge-labs/stackforge/internal/classify"
	"github.com/stackforge-labs/stackforge/internal/config"
	"github.com/stackforge-labs/stackforge/internal/ruleset"
	"github.com/stackforge-labs/stackforge/internal/signal"
)

var (
	flagRoot    string
	flagRuleset string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "Workspace root to inspect")
	rootCmd.PersistentFlags().StringVar(&flagRuleset, "ruleset", "", "Rule table file (default: embedded table)")
}

// loadRules resolves the rule table: the --ruleset flag wins, then the
// engine.ruleset config key, then the embedded default.
func loadRules() (*ruleset.Ruleset, error) {
	path := flagRuleset
	if path == "" {
		path = config.RulesetPath()
	}
	rs, err := ruleset.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading rule table: %w", err)
	}
	return rs, nil
}

// detectWorkspace collects signals from the workspace and environment and
// ranks stack identities against the rule table.
func detectWorkspace(ctx context.Context, root string, rs *ruleset.Ruleset) (signal.Set, []classify.StackIdentity, error) {
	sigs, err := signal.Collect(ctx, root, signal.EnvSnapshot(), rs.Signals, config.Workers())
	if err != nil {
		return nil, nil, fmt.Errorf("collecting signals: %w", err)
	}
	return sigs, classify.Rank(sigs, rs), nil
}
