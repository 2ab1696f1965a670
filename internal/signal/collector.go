package signal

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

// DefaultWorkers bounds concurrent probes when the caller does not configure
// a pool size.
const DefaultWorkers = 8

// Collect evaluates every signal definition against the workspace root and
// the environment snapshot and returns the set of matched signals. Probes
// run concurrently across a bounded pool; unreadable locations yield no
// signal rather than an error. The only error returned is context
// cancellation.
func Collect(ctx context.Context, root string, env map[string]string, defs []ruleset.SignalDef, workers int) (Set, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]*Signal, len(defs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = probe(root, env, def)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var set Set
	for _, sig := range results {
		if sig != nil {
			set = append(set, *sig)
		}
	}
	return set.sorted(), nil
}

// probe evaluates one definition. It never fails: any read error is treated
// as "no evidence".
func probe(root string, env map[string]string, def ruleset.SignalDef) *Signal {
	switch def.Kind {
	case ruleset.KindFilePresence:
		match := findPath(root, def.Path)
		if match == "" {
			return nil
		}
		return &Signal{Name: def.Name, Kind: def.Kind, Strength: def.Strength, Detail: match}

	case ruleset.KindContentMatch:
		match := findPath(root, def.Path)
		if match == "" {
			return nil
		}
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			return nil
		}
		data, err := os.ReadFile(filepath.Join(root, match))
		if err != nil {
			return nil
		}
		if !re.Match(data) {
			return nil
		}
		return &Signal{Name: def.Name, Kind: def.Kind, Strength: def.Strength, Detail: match}

	case ruleset.KindEnvVar:
		if env[def.Env] == "" {
			return nil
		}
		return &Signal{Name: def.Name, Kind: def.Kind, Strength: def.Strength, Detail: def.Env}

	default:
		return nil
	}
}

// findPath resolves a glob pattern relative to root and returns the first
// match in lexical order, as a root-relative path. Empty means no match.
func findPath(root, pattern string) string {
	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	rel, err := filepath.Rel(root, matches[0])
	if err != nil {
		return matches[0]
	}
	return filepath.ToSlash(rel)
}
