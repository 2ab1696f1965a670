package signal

import (
	"os"
	"sort"
	"strings"

	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

// Signal is one unit of observed evidence. Immutable once collected.
type Signal struct {
	Name     string
	Kind     ruleset.SignalKind
	Strength float64
	Detail   string // matched path or env var, for reporting
}

// Set is a collection of matched signals, sorted by name.
type Set []Signal

// Has reports whether a signal with the given name was observed.
func (s Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Get returns the signal with the given name.
func (s Set) Get(name string) (Signal, bool) {
	for _, sig := range s {
		if sig.Name == name {
			return sig, true
		}
	}
	return Signal{}, false
}

// Names returns the sorted names of all observed signals.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, sig := range s {
		names[i] = sig.Name
	}
	return names
}

func (s Set) sorted() Set {
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
	return s
}

// EnvSnapshot captures the process environment as a map. Collection operates
// on the snapshot, not the live environment, so a run sees a stable view.
func EnvSnapshot() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
