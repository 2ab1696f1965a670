// Package resolve merges built-in option defaults, values inferred from
// detected signals, and explicit user answers into one immutable
// configuration. Precedence is strict: explicit > detected > default. Every
// resolved option carries its provenance, and a required option with no safe
// source fails resolution with a clarification error naming the option —
// the resolver never falls back to an arbitrary choice.
package resolve
