// Package registry is the static catalog of generatable artifacts. Each
// spec declares an applicability predicate over the resolved configuration,
// a templated target path, a content template from the embedded set, and a
// merge policy. The catalog is data, not logic: supporting a new stack means
// adding specs and templates, not new control flow.
package registry
