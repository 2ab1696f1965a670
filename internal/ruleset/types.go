package ruleset

// SignalKind discriminates how a detection signal is probed.
type SignalKind string

// Supported signal kinds.
const (
	KindFilePresence SignalKind = "file-presence"
	KindContentMatch SignalKind = "content-match"
	KindEnvVar       SignalKind = "env-var"
)

// SignalDef declares one detection probe. Path is a glob relative to the
// workspace root; Pattern is a regular expression applied to the file
// contents for content-match signals; Env names an environment variable for
// env-var signals. Strength is the evidence weight the signal carries when
// it matches, in [0,1].
type SignalDef struct {
	Name     string     `yaml:"name" json:"name"`
	Kind     SignalKind `yaml:"kind" json:"kind"`
	Path     string     `yaml:"path,omitempty" json:"path,omitempty"`
	Pattern  string     `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Env      string     `yaml:"env,omitempty" json:"env,omitempty"`
	Strength float64    `yaml:"strength" json:"strength"`
}

// WeightRule ties a signal to a stack with a multiplier. A stack's
// confidence is the capped sum of weight*strength over its matched signals.
type WeightRule struct {
	Signal string  `yaml:"signal" json:"signal"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// StackDef declares one recognizable stack and its weight rules.
type StackDef struct {
	ID          string       `yaml:"id" json:"id"`
	DisplayName string       `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Rules       []WeightRule `yaml:"rules" json:"rules"`
}

// Severity is a probe classification outcome.
type Severity string

// Probe classification levels.
const (
	SeverityPass Severity = "pass"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// ProbeDef declares one diagnostic check: which tool to look up, how to ask
// it for its version, and how to classify absence or staleness. Probes are
// read-only; Remedy is a distinct action that only runs in fix mode.
type ProbeDef struct {
	ID             string     `yaml:"id" json:"id"`
	Description    string     `yaml:"description" json:"description"`
	Tool           string     `yaml:"tool" json:"tool"`
	VersionArgs    []string   `yaml:"version_args,omitempty" json:"version_args,omitempty"`
	VersionPattern string     `yaml:"version_pattern,omitempty" json:"version_pattern,omitempty"`
	MinVersion     string     `yaml:"min_version,omitempty" json:"min_version,omitempty"`
	OnAbsent       Severity   `yaml:"on_absent,omitempty" json:"on_absent,omitempty"`
	OnStale        Severity   `yaml:"on_stale,omitempty" json:"on_stale,omitempty"`
	Remedy         *RemedyDef `yaml:"remedy,omitempty" json:"remedy,omitempty"`
}

// RemedyDef declares the bounded remediation action for a probe.
type RemedyDef struct {
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Command     string   `yaml:"command" json:"command"`
	Args        []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Ruleset is the full rule table: detection signals, stack weight rules,
// and diagnostic probes. Floor is the minimum confidence a stack identity
// needs to be reported at all.
type Ruleset struct {
	Version int         `yaml:"version" json:"version"`
	Floor   float64     `yaml:"floor" json:"floor"`
	Signals []SignalDef `yaml:"signals" json:"signals"`
	Stacks  []StackDef  `yaml:"stacks" json:"stacks"`
	Probes  []ProbeDef  `yaml:"probes" json:"probes"`
}

// AnswerSet carries the explicit choices the front end collected up front:
// a primary stack override, option values, and the fix-mode authorization.
// The resolver never solicits answers itself; it only consumes this object.
type AnswerSet struct {
	PrimaryStack string            `yaml:"primary_stack,omitempty" json:"primary_stack,omitempty"`
	Stacks       []string          `yaml:"stacks,omitempty" json:"stacks,omitempty"`
	Options      map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
	Fix          bool              `yaml:"fix,omitempty" json:"fix,omitempty"`
}

// SignalByName returns the signal definition with the given name, or nil.
func (rs *Ruleset) SignalByName(name string) *SignalDef {
	for i := range rs.Signals {
		if rs.Signals[i].Name == name {
			return &rs.Signals[i]
		}
	}
	return nil
}

// StackByID returns the stack definition with the given id, or nil.
func (rs *Ruleset) StackByID(id string) *StackDef {
	for i := range rs.Stacks {
		if rs.Stacks[i].ID == id {
			return &rs.Stacks[i]
		}
	}
	return nil
}
