// Package config manages persistent CLI settings stored in
// ~/.stackforge/config.yaml, with STACKFORGE_* environment variables taking
// precedence. Engine tunables live here: worker pool sizes, the per-probe
// timeout, and an optional rule-table override path.
package config
