// Package platform provides low-level filesystem and process primitives shared
// by the writer and doctor packages: crash-safe atomic file writes and a
// PATH lookup that avoids syscalls blocked by seccomp on some restricted
// kernels.
package platform
