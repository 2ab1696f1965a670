package resolve

import (
	"path/filepath"

	"github.com/stackforge-labs/stackforge/internal/classify"
	"github.com/stackforge-labs/stackforge/internal/signal"
)

// Provenance records where a resolved option value came from.
type Provenance string

// Provenance values, in precedence order (explicit wins).
const (
	ProvenanceExplicit Provenance = "explicit"
	ProvenanceDetected Provenance = "detected"
	ProvenanceDefault  Provenance = "default"
)

// Option is one resolved setting with its provenance.
type Option struct {
	Name       string
	Value      string
	Provenance Provenance
}

// optionDef is one entry in the built-in option catalog. Detect inspects the
// collected evidence and returns an inferred value; Default applies when
// nothing was detected or answered. An option with neither and Required set
// fails resolution.
type optionDef struct {
	name     string
	fallback string
	required bool
	detect   func(in detectInput) (string, bool)
}

type detectInput struct {
	root    string
	signals signal.Set
	stacks  []classify.StackIdentity
}

// catalog is the built-in option catalog, kept in resolution order.
// Adding an option is adding data, not branching code.
var catalog = []optionDef{
	{
		name: "project-name",
		detect: func(in detectInput) (string, bool) {
			abs, err := filepath.Abs(in.root)
			if err != nil {
				return "", false
			}
			return filepath.Base(abs), true
		},
	},
	{
		name:     "docker",
		fallback: "false",
		detect:   signalFlag("dockerfile", "compose-file"),
	},
	{
		name:     "compose",
		fallback: "false",
		detect:   signalFlag("compose-file"),
	},
	{
		name:     "ci",
		fallback: "false",
		detect:   signalFlag("github-workflows"),
	},
	{
		name:     "ci-provider",
		fallback: "github",
	},
}

// signalFlag builds a detector that reports "true" when any named signal was
// observed. Absence detects nothing; the default carries the "false".
func signalFlag(names ...string) func(detectInput) (string, bool) {
	return func(in detectInput) (string, bool) {
		for _, n := range names {
			if in.signals.Has(n) {
				return "true", true
			}
		}
		return "", false
	}
}
