// Package writer executes a generation plan against the filesystem. It is
// the only component that mutates external state, and it does so in
// topological layers: nodes inside a layer run concurrently, layers run
// sequentially, and writes sharing a parent directory are serialized.
// Overwrites go through a temp-file-then-rename so a crash never leaves a
// half-written target. One failed node never rolls back completed nodes;
// every outcome lands in the generation report.
package writer
