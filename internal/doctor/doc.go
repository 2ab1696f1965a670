// Package doctor evaluates diagnostic probe rules against the live
// environment: tool presence, version thresholds, and classification into
// pass/warn/fail per the thresholds each rule declares. Probes are read-only
// and order-insensitive to evaluate, but the health report preserves the
// rule-declared order. A rule may carry a bounded remediation; it only runs
// when the caller passes fix mode, and the originating probe is re-evaluated
// exactly once afterwards.
package doctor
