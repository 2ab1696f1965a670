// Package cli defines the Cobra command tree for the stackforge CLI. Each
// file in this package registers one top-level command (detect, plan,
// generate, doctor, config, version) with the root command. Command
// implementations delegate to internal packages for engine logic and only
// handle flag parsing, I/O formatting, and exit-code mapping.
package cli
