// Package signal collects raw evidence about a workspace: manifest files
// present, file contents matching patterns, environment variables set. Each
// probe is independent and read-only; a location that cannot be read simply
// yields no signal. Collection runs across a bounded worker pool but results
// are ordered by signal name, so output is reproducible regardless of
// scheduling.
package signal
