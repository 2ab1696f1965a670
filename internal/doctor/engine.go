package doctor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/stackforge-labs/stackforge/internal/platform"
	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

// Engine defaults.
const (
	DefaultWorkers = 4
	DefaultTimeout = 10 * time.Second
)

// defaultVersionPattern extracts the first dotted number from version output
// when a rule declares no pattern of its own.
const defaultVersionPattern = `(\d+\.\d+(?:\.\d+)?)`

// Engine evaluates probe rules. It holds no state between runs.
type Engine struct {
	rules   []ruleset.ProbeDef
	runner  Runner
	lookup  func(string) (string, error)
	timeout time.Duration
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-probe command timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithWorkers bounds the probe evaluation pool.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithLookup overrides executable resolution, for tests.
func WithLookup(fn func(string) (string, error)) Option {
	return func(e *Engine) { e.lookup = fn }
}

// New builds an engine over the given probe rules and command runner.
func New(rules []ruleset.ProbeDef, runner Runner, opts ...Option) *Engine {
	e := &Engine{
		rules:   rules,
		runner:  runner,
		lookup:  platform.LookPath,
		timeout: DefaultTimeout,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates every rule concurrently across a bounded pool and folds the
// results into a health report in rule-declared order. When fix is true,
// each non-passing rule with a declared remedy has the remedy run once and
// the probe re-evaluated exactly once; remediation never loops.
func (e *Engine) Run(ctx context.Context, fix bool) (*HealthReport, error) {
	results := make([]ProbeResult, len(e.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, rule := range e.rules {
		i, rule := i, rule
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.evaluate(gctx, rule)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fix {
		for i, rule := range e.rules {
			if results[i].Status == ruleset.SeverityPass || rule.Remedy == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = e.remediate(ctx, rule, results[i])
		}
	}

	return &HealthReport{Results: results}, nil
}

// evaluate runs one read-only probe and classifies the outcome using the
// rule's declared thresholds.
func (e *Engine) evaluate(ctx context.Context, rule ruleset.ProbeDef) ProbeResult {
	res := ProbeResult{RuleID: rule.ID, Description: rule.Description}

	path, err := e.lookup(rule.Tool)
	if err != nil {
		res.Status = severityOr(rule.OnAbsent, ruleset.SeverityFail)
		res.Evidence = fmt.Sprintf("%s not found in PATH", rule.Tool)
		return res
	}

	if rule.MinVersion == "" {
		res.Status = ruleset.SeverityPass
		res.Evidence = fmt.Sprintf("%s found at %s", rule.Tool, path)
		return res
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.runner.Run(probeCtx, rule.Tool, rule.VersionArgs...)
	if err != nil {
		// A timed-out or unavailable probe is classified, never dropped.
		if errors.Is(err, context.DeadlineExceeded) {
			res.Status = ruleset.SeverityFail
			res.Evidence = fmt.Sprintf("version probe timed out after %s", e.timeout)
			return res
		}
		res.Status = ruleset.SeverityFail
		res.Evidence = fmt.Sprintf("version probe unavailable: %v", err)
		return res
	}

	version, ok := extractVersion(rule, out.Stdout+out.Stderr)
	if !ok {
		res.Status = ruleset.SeverityFail
		res.Evidence = fmt.Sprintf("could not parse version from %s output", rule.Tool)
		return res
	}

	stale, err := olderThan(version, rule.MinVersion)
	if err != nil {
		res.Status = ruleset.SeverityFail
		res.Evidence = fmt.Sprintf("comparing versions: %v", err)
		return res
	}
	if stale {
		res.Status = severityOr(rule.OnStale, ruleset.SeverityWarn)
		res.Evidence = fmt.Sprintf("%s %s older than required %s", rule.Tool, version, rule.MinVersion)
		return res
	}

	res.Status = ruleset.SeverityPass
	res.Evidence = fmt.Sprintf("%s %s at %s", rule.Tool, version, path)
	return res
}

// remediate runs the rule's declared fix command and re-evaluates the probe
// once. The updated result carries what happened either way.
func (e *Engine) remediate(ctx context.Context, rule ruleset.ProbeDef, prior ProbeResult) ProbeResult {
	remedyCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.runner.Run(remedyCtx, rule.Remedy.Command, rule.Remedy.Args...)
	if err != nil || out.ExitCode != 0 {
		prior.Remediated = true
		reason := fmt.Sprintf("exit code %d", out.ExitCode)
		if err != nil {
			reason = err.Error()
		}
		prior.Evidence += fmt.Sprintf("; remediation failed (%s)", reason)
		return prior
	}

	res := e.evaluate(ctx, rule)
	res.Remediated = true
	if res.Status != ruleset.SeverityPass {
		res.Evidence += " (after remediation)"
	}
	return res
}

func extractVersion(rule ruleset.ProbeDef, output string) (string, bool) {
	pattern := rule.VersionPattern
	if pattern == "" {
		pattern = defaultVersionPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(output)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

func olderThan(actual, minimum string) (bool, error) {
	av, err := semver.NewVersion(actual)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", actual, err)
	}
	mv, err := semver.NewVersion(minimum)
	if err != nil {
		return false, fmt.Errorf("parsing minimum version %q: %w", minimum, err)
	}
	return av.LessThan(mv), nil
}

func severityOr(s, fallback ruleset.Severity) ruleset.Severity {
	if s == "" {
		return fallback
	}
	return s
}
