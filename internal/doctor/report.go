package doctor

import (
	"fmt"
	"io"

	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

// ProbeResult is the classified outcome of one probe rule.
type ProbeResult struct {
	RuleID      string           `json:"rule_id"`
	Description string           `json:"description"`
	Status      ruleset.Severity `json:"status"`
	Evidence    string           `json:"evidence"`
	Remediated  bool             `json:"remediated,omitempty"`
}

// HealthReport aggregates probe results in rule-declared order. Every
// evaluated rule appears exactly once; nothing is silently dropped.
type HealthReport struct {
	Results []ProbeResult `json:"results"`
}

// Counts returns the pass, warn, and fail totals. They always sum to the
// number of evaluated rules.
func (h *HealthReport) Counts() (pass, warn, fail int) {
	for _, r := range h.Results {
		switch r.Status {
		case ruleset.SeverityPass:
			pass++
		case ruleset.SeverityWarn:
			warn++
		default:
			fail++
		}
	}
	return pass, warn, fail
}

// AllPassed reports whether every probe passed.
func (h *HealthReport) AllPassed() bool {
	pass, _, _ := h.Counts()
	return pass == len(h.Results)
}

// HasFailure reports whether any probe failed.
func (h *HealthReport) HasFailure() bool {
	_, _, fail := h.Counts()
	return fail > 0
}

// Fprint writes the report as check lines plus a summary.
func (h *HealthReport) Fprint(w io.Writer) {
	fmt.Fprintln(w, "Environment check:")
	for _, r := range h.Results {
		tag := " OK "
		switch r.Status {
		case ruleset.SeverityWarn:
			tag = "WARN"
		case ruleset.SeverityFail:
			tag = "FAIL"
		}
		line := fmt.Sprintf("  [%s] %s: %s", tag, r.RuleID, r.Evidence)
		if r.Remediated && r.Status == ruleset.SeverityPass {
			line += " [fixed]"
		}
		fmt.Fprintln(w, line)
	}
	pass, warn, fail := h.Counts()
	fmt.Fprintf(w, "  %d passed, %d warnings, %d failures\n", pass, warn, fail)
}
