package registry

import (
	"github.com/stackforge-labs/stackforge/internal/resolve"
)

// MergePolicy governs how a planned write interacts with an existing target.
type MergePolicy string

// Supported merge policies.
const (
	// PolicyOverwrite replaces the target unconditionally, via an atomic
	// temp-file-then-rename. Used for generated, non-user-owned files.
	PolicyOverwrite MergePolicy = "overwrite"
	// PolicySkipIfExists never touches a file the user may have customized.
	PolicySkipIfExists MergePolicy = "skip-if-exists"
	// PolicyMergeBlock rewrites only a marker-delimited block inside an
	// existing file, preserving surrounding user content.
	PolicyMergeBlock MergePolicy = "merge-block"
)

// Artifact categories, selectable via the --category flag on plan and
// generate.
const (
	CategoryProject = "project"
	CategoryTests   = "tests"
	CategoryDocker  = "docker"
	CategoryCI      = "ci"
)

// Spec describes one generatable artifact. Path and the template contents
// are text/template expressions resolved against the configuration; Dir
// specs create a directory and carry no template. AppliesTo must be pure.
type Spec struct {
	ID        string
	Category  string
	Path      string
	Template  string // file name under templates/, empty for Dir specs
	Policy    MergePolicy
	Block     string   // block id for PolicyMergeBlock
	Dir       bool
	Requires  []string // spec IDs that must be written first
	AppliesTo func(*resolve.Config) bool
}

// Specs returns a copy of the built-in catalog.
func Specs() []Spec {
	out := make([]Spec, len(catalog))
	copy(out, catalog)
	return out
}

var catalog = []Spec{
	// project scaffolding
	{
		ID:        "gitignore",
		Category:  CategoryProject,
		Path:      ".gitignore",
		Template:  "gitignore.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: always,
	},
	{
		ID:        "gitignore-stack-block",
		Category:  CategoryProject,
		Path:      ".gitignore",
		Template:  "gitignore_block.tmpl",
		Policy:    PolicyMergeBlock,
		Block:     "ignore",
		Requires:  []string{"gitignore"},
		AppliesTo: always,
	},
	{
		ID:        "readme",
		Category:  CategoryProject,
		Path:      "README.md",
		Template:  "readme.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: always,
	},
	{
		ID:        "editorconfig",
		Category:  CategoryProject,
		Path:      ".editorconfig",
		Template:  "editorconfig.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: always,
	},
	{
		ID:        "makefile",
		Category:  CategoryProject,
		Path:      "Makefile",
		Template:  "makefile.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: always,
	},

	// test scaffolding
	{
		ID:        "go-smoke-test",
		Category:  CategoryTests,
		Path:      "smoke_test.go",
		Template:  "go_smoke_test.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: stack("go"),
	},
	{
		ID:        "node-test-dir",
		Category:  CategoryTests,
		Path:      "test",
		Dir:       true,
		AppliesTo: stack("node"),
	},
	{
		ID:        "node-smoke-test",
		Category:  CategoryTests,
		Path:      "test/smoke.test.mjs",
		Template:  "node_smoke_test.tmpl",
		Policy:    PolicySkipIfExists,
		Requires:  []string{"node-test-dir"},
		AppliesTo: stack("node"),
	},
	{
		ID:        "python-test-dir",
		Category:  CategoryTests,
		Path:      "tests",
		Dir:       true,
		AppliesTo: stack("python"),
	},
	{
		ID:        "python-smoke-test",
		Category:  CategoryTests,
		Path:      "tests/test_smoke.py",
		Template:  "python_smoke_test.tmpl",
		Policy:    PolicySkipIfExists,
		Requires:  []string{"python-test-dir"},
		AppliesTo: stack("python"),
	},

	// dockerization
	{
		ID:        "dockerfile",
		Category:  CategoryDocker,
		Path:      "Dockerfile",
		Template:  "dockerfile.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: flag("docker"),
	},
	{
		ID:        "dockerignore",
		Category:  CategoryDocker,
		Path:      ".dockerignore",
		Template:  "dockerignore.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: flag("docker"),
	},
	{
		ID:        "compose",
		Category:  CategoryDocker,
		Path:      "docker-compose.yml",
		Template:  "compose.tmpl",
		Policy:    PolicySkipIfExists,
		AppliesTo: flag("compose"),
	},

	// CI wiring
	{
		ID:        "workflows-dir",
		Category:  CategoryCI,
		Path:      ".github/workflows",
		Dir:       true,
		AppliesTo: flag("ci"),
	},
	{
		ID:        "ci-workflow",
		Category:  CategoryCI,
		Path:      ".github/workflows/ci.yml",
		Template:  "ci_workflow.tmpl",
		Policy:    PolicyOverwrite,
		Requires:  []string{"workflows-dir"},
		AppliesTo: flag("ci"),
	},
	{
		ID:        "ci-go-job",
		Category:  CategoryCI,
		Path:      ".github/workflows/ci.yml",
		Template:  "ci_go_job.tmpl",
		Policy:    PolicyMergeBlock,
		Block:     "go-job",
		Requires:  []string{"ci-workflow"},
		AppliesTo: all(flag("ci"), stack("go")),
	},
	{
		ID:        "ci-node-job",
		Category:  CategoryCI,
		Path:      ".github/workflows/ci.yml",
		Template:  "ci_node_job.tmpl",
		Policy:    PolicyMergeBlock,
		Block:     "node-job",
		Requires:  []string{"ci-workflow"},
		AppliesTo: all(flag("ci"), stack("node")),
	},
	{
		ID:        "ci-python-job",
		Category:  CategoryCI,
		Path:      ".github/workflows/ci.yml",
		Template:  "ci_python_job.tmpl",
		Policy:    PolicyMergeBlock,
		Block:     "python-job",
		Requires:  []string{"ci-workflow"},
		AppliesTo: all(flag("ci"), stack("python")),
	},
}

// Predicate combinators. Predicates stay pure so the planner can evaluate
// them repeatedly and in any order.

func always(*resolve.Config) bool { return true }

func stack(id string) func(*resolve.Config) bool {
	return func(c *resolve.Config) bool { return c.HasStack(id) }
}

func flag(name string) func(*resolve.Config) bool {
	return func(c *resolve.Config) bool { return c.Bool(name) }
}

func all(preds ...func(*resolve.Config) bool) func(*resolve.Config) bool {
	return func(c *resolve.Config) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}
