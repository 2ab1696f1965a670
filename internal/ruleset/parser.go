package ruleset

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed defaults/ruleset.yaml
var defaultRulesetBytes []byte

var (
	defaultOnce sync.Once
	defaultRS   *Ruleset
	defaultErr  error
)

// Default returns the embedded default rule table, parsed and checked once.
// The embedded table documents the chosen detection weights; users override
// it with a file of the same format.
func Default() (*Ruleset, error) {
	defaultOnce.Do(func() {
		defaultRS, defaultErr = Parse(defaultRulesetBytes)
	})
	return defaultRS, defaultErr
}

// Parse validates raw YAML against the ruleset schema, unmarshals it, and
// cross-checks internal references. Schema issues are folded into the error.
func Parse(data []byte) (*Ruleset, error) {
	result, err := ValidateRuleset(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, issuesError("ruleset", result.Issues)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing ruleset: %w", err)
	}
	if err := rs.check(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// ParseFile reads and parses a ruleset file.
func ParseFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return rs, nil
}

// Load returns the ruleset at path, or the embedded default when path is empty.
func Load(path string) (*Ruleset, error) {
	if path == "" {
		return Default()
	}
	return ParseFile(path)
}

// ParseAnswers validates and unmarshals an answer file.
func ParseAnswers(data []byte) (*AnswerSet, error) {
	result, err := ValidateAnswers(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, issuesError("answers", result.Issues)
	}

	var as AnswerSet
	if err := yaml.Unmarshal(data, &as); err != nil {
		return nil, fmt.Errorf("parsing answers: %w", err)
	}
	return &as, nil
}

// ParseAnswersFile reads and parses an answer file.
func ParseAnswersFile(path string) (*AnswerSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers %s: %w", path, err)
	}
	as, err := ParseAnswers(data)
	if err != nil {
		return nil, fmt.Errorf("answers %s: %w", path, err)
	}
	return as, nil
}

// check verifies cross-references the schema cannot express: unique names,
// and weight rules pointing at declared signals.
func (rs *Ruleset) check() error {
	signalNames := make(map[string]bool, len(rs.Signals))
	for _, s := range rs.Signals {
		if signalNames[s.Name] {
			return fmt.Errorf("duplicate signal %q", s.Name)
		}
		signalNames[s.Name] = true
	}

	stackIDs := make(map[string]bool, len(rs.Stacks))
	for _, st := range rs.Stacks {
		if stackIDs[st.ID] {
			return fmt.Errorf("duplicate stack %q", st.ID)
		}
		stackIDs[st.ID] = true
		for _, rule := range st.Rules {
			if !signalNames[rule.Signal] {
				return fmt.Errorf("stack %q references unknown signal %q", st.ID, rule.Signal)
			}
		}
	}

	probeIDs := make(map[string]bool, len(rs.Probes))
	for _, p := range rs.Probes {
		if probeIDs[p.ID] {
			return fmt.Errorf("duplicate probe %q", p.ID)
		}
		probeIDs[p.ID] = true
	}

	return nil
}

// StackIDs returns all declared stack ids in sorted order.
func (rs *Ruleset) StackIDs() []string {
	ids := make([]string, 0, len(rs.Stacks))
	for _, st := range rs.Stacks {
		ids = append(ids, st.ID)
	}
	sort.Strings(ids)
	return ids
}

func issuesError(what string, issues []ValidationIssue) error {
	var msgs []string
	for _, issue := range issues {
		msg := issue.Message
		if issue.Path != "" {
			msg = issue.Path + ": " + msg
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%s has %d validation issue(s):\n  %s", what, len(issues), strings.Join(msgs, "\n  "))
}
