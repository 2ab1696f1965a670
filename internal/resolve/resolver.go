package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stackforge-labs/stackforge/internal/classify"
	"github.com/stackforge-labs/stackforge/internal/ruleset"
	"github.com/stackforge-labs/stackforge/internal/signal"
)

// Config is the final merged settings for one run. It is immutable after
// Resolve returns: re-resolving with the same inputs yields a byte-identical
// Fingerprint, which is what makes generation plans deterministic.
type Config struct {
	stacks  []string // sorted stack ids
	primary string
	options map[string]Option
}

// Resolve merges defaults, detected values, and explicit answers under the
// precedence explicit > detected > default. A nil answers is treated as an
// empty answer set.
func Resolve(root string, sigs signal.Set, ids []classify.StackIdentity, answers *ruleset.AnswerSet) (*Config, error) {
	if answers == nil {
		answers = &ruleset.AnswerSet{}
	}

	stacks, primary, err := resolveStacks(ids, answers)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		stacks:  stacks,
		primary: primary,
		options: make(map[string]Option),
	}

	in := detectInput{root: root, signals: sigs, stacks: ids}
	for _, def := range catalog {
		opt, err := resolveOption(def, in, answers)
		if err != nil {
			return nil, err
		}
		cfg.options[opt.Name] = opt
	}

	// Explicit answers outside the catalog are carried through verbatim so
	// artifact templates can reference caller-defined variables.
	for name, value := range answers.Options {
		if _, known := cfg.options[name]; known {
			continue
		}
		cfg.options[name] = Option{Name: name, Value: value, Provenance: ProvenanceExplicit}
	}

	return cfg, nil
}

func resolveStacks(ids []classify.StackIdentity, answers *ruleset.AnswerSet) (stacks []string, primary string, err error) {
	switch {
	case len(answers.Stacks) > 0:
		stacks = append(stacks, answers.Stacks...)
	default:
		for _, id := range ids {
			stacks = append(stacks, id.ID)
		}
	}
	if len(stacks) == 0 {
		return nil, "", &NeedsClarificationError{
			Option: "stacks",
			Reason: "no stack was detected and none was answered",
		}
	}
	sort.Strings(stacks)

	if answers.PrimaryStack != "" {
		if !contains(stacks, answers.PrimaryStack) {
			return nil, "", &NeedsClarificationError{
				Option: "primary-stack",
				Reason: fmt.Sprintf("answered stack %q is not among %s", answers.PrimaryStack, strings.Join(stacks, ", ")),
			}
		}
		return stacks, answers.PrimaryStack, nil
	}

	// A single resolved stack needs no ranking at all; an explicit
	// single-entry stacks answer settles a classifier tie the same way a
	// primary_stack answer would.
	if len(stacks) == 1 {
		return stacks, stacks[0], nil
	}

	// No explicit primary: the top-ranked identity decides, unless the
	// classifier flagged a tie. An explicit stack list narrows the ranking
	// first, so a tie partner the answer excluded no longer counts.
	ranked := ids
	if len(answers.Stacks) > 0 {
		ranked = nil
		for _, id := range ids {
			if contains(stacks, id.ID) {
				ranked = append(ranked, id)
			}
		}
	}
	if len(ranked) > 0 && ranked[0].Ambiguous {
		var tied []string
		for _, id := range ranked {
			if id.Ambiguous {
				tied = append(tied, id.ID)
			}
		}
		if len(tied) > 1 {
			return nil, "", &AmbiguousStackError{Candidates: tied}
		}
	}
	if len(ranked) > 0 {
		return stacks, ranked[0].ID, nil
	}
	return nil, "", &NeedsClarificationError{
		Option: "primary-stack",
		Reason: fmt.Sprintf("multiple stacks (%s) and no primary_stack answer", strings.Join(stacks, ", ")),
	}
}

func resolveOption(def optionDef, in detectInput, answers *ruleset.AnswerSet) (Option, error) {
	if v, ok := answers.Options[def.name]; ok {
		return Option{Name: def.name, Value: v, Provenance: ProvenanceExplicit}, nil
	}
	if def.detect != nil {
		if v, ok := def.detect(in); ok {
			return Option{Name: def.name, Value: v, Provenance: ProvenanceDetected}, nil
		}
	}
	if def.fallback != "" || !def.required {
		return Option{Name: def.name, Value: def.fallback, Provenance: ProvenanceDefault}, nil
	}
	return Option{}, &NeedsClarificationError{
		Option: def.name,
		Reason: "required option has no explicit answer and no safe default",
	}
}

// Stacks returns the resolved stack ids, sorted.
func (c *Config) Stacks() []string {
	out := make([]string, len(c.stacks))
	copy(out, c.stacks)
	return out
}

// Primary returns the primary stack id.
func (c *Config) Primary() string { return c.primary }

// HasStack reports whether the configuration includes the given stack.
func (c *Config) HasStack(id string) bool { return contains(c.stacks, id) }

// Option returns the named option.
func (c *Config) Option(name string) (Option, bool) {
	opt, ok := c.options[name]
	return opt, ok
}

// Value returns the named option's value, or empty when unset.
func (c *Config) Value(name string) string {
	return c.options[name].Value
}

// Bool reports whether the named option resolves to "true".
func (c *Config) Bool(name string) bool {
	return c.options[name].Value == "true"
}

// OptionNames returns all resolved option names, sorted.
func (c *Config) OptionNames() []string {
	names := make([]string, 0, len(c.options))
	for name := range c.options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fingerprint renders the configuration as a canonical byte string: stacks,
// primary, then options sorted by name with provenance. Equal configurations
// produce identical fingerprints, which the determinism tests rely on.
func (c *Config) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stacks=%s\n", strings.Join(c.stacks, ","))
	fmt.Fprintf(&b, "primary=%s\n", c.primary)
	for _, name := range c.OptionNames() {
		opt := c.options[name]
		fmt.Fprintf(&b, "%s=%s (%s)\n", opt.Name, opt.Value, opt.Provenance)
	}
	return b.String()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
