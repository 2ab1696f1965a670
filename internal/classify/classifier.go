package classify

import (
	"sort"

	"github.com/stackforge-labs/stackforge/internal/ruleset"
	"github.com/stackforge-labs/stackforge/internal/signal"
)

// DefaultFloor is the minimum confidence used when the rule table does not
// declare one.
const DefaultFloor = 0.3

// tieEpsilon bounds float comparison when detecting tied top confidences.
const tieEpsilon = 1e-9

// StackIdentity is a recognized technology stack with a confidence score.
type StackIdentity struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name,omitempty"`
	Confidence  float64  `json:"confidence"`
	Ambiguous   bool     `json:"ambiguous,omitempty"`
	Signals     []string `json:"signals"` // contributing signal names, sorted
}

// Rank scores every stack in the rule table against the signal set and
// returns the identities at or above the confidence floor, ordered by
// confidence descending then id ascending. A stack's confidence is the sum
// of weight*strength over its matched signals, capped at 1. Identities tied
// at the top confidence are all marked Ambiguous.
func Rank(signals signal.Set, rs *ruleset.Ruleset) []StackIdentity {
	floor := rs.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}

	var out []StackIdentity
	for _, st := range rs.Stacks {
		id := score(signals, st)
		if id.Confidence >= floor {
			out = append(out, id)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].ID < out[j].ID
	})

	markTopTies(out)
	return out
}

func score(signals signal.Set, st ruleset.StackDef) StackIdentity {
	id := StackIdentity{ID: st.ID, DisplayName: st.DisplayName}
	for _, rule := range st.Rules {
		sig, ok := signals.Get(rule.Signal)
		if !ok {
			continue
		}
		id.Confidence += rule.Weight * sig.Strength
		id.Signals = append(id.Signals, sig.Name)
	}
	if id.Confidence > 1 {
		id.Confidence = 1
	}
	sort.Strings(id.Signals)
	return id
}

// markTopTies flags every identity whose confidence equals the maximum when
// more than one does.
func markTopTies(ids []StackIdentity) {
	if len(ids) < 2 {
		return
	}
	top := ids[0].Confidence
	tied := 0
	for i := range ids {
		if top-ids[i].Confidence < tieEpsilon {
			tied++
		}
	}
	if tied < 2 {
		return
	}
	for i := range ids {
		if top-ids[i].Confidence < tieEpsilon {
			ids[i].Ambiguous = true
		}
	}
}
