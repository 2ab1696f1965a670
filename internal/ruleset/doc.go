// Package ruleset handles parsing and validation of the StackForge rule
// table: the detection signals the collector probes for, the per-stack
// weight rules the classifier scores with, and the diagnostic probe rules
// the doctor evaluates. It also parses answer files (explicit user choices
// handed to the resolver). Both file formats are YAML validated against
// embedded JSON Schemas, so a malformed table surfaces as validation issues
// rather than silently skewed detection.
package ruleset
