// Package plan derives a deterministic, dependency-ordered generation plan
// from a resolved configuration and the artifact catalog. The planner never
// touches the filesystem: it filters specs, renders path and content
// templates, builds the dependency graph, orders it topologically in stable
// layers, and fails fast on path collisions. The same configuration always
// produces an identical plan, which is what makes dry-run previews
// trustworthy.
package plan
