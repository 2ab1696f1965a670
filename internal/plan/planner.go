package plan

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"

	"github.com/stackforge-labs/stackforge/internal/registry"
	"github.com/stackforge-labs/stackforge/internal/resolve"
)

// Node is one resolved write operation.
type Node struct {
	SpecID   string
	Path     string // slash-separated, relative to the workspace root
	Dir      bool
	Policy   registry.MergePolicy
	Block    string // merge-block id, when Policy is merge-block
	Content  []byte // nil for directory nodes
	Requires []string
}

// Plan is the ordered list of resolved write operations. Nodes are in
// topological order; Layers groups node indexes so that each layer only
// depends on earlier layers.
type Plan struct {
	Nodes  []Node
	Layers [][]int
}

// ConflictError reports two specs resolving to the same target path where
// both would create or replace the file.
type ConflictError struct {
	Path  string
	Specs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("path conflict: %s is targeted by specs %s", e.Path, strings.Join(e.Specs, " and "))
}

// TemplateData is the variable set exposed to path and content templates.
type TemplateData struct {
	Project string
	Primary string
	Stacks  []string
	Options map[string]string
}

var templateFuncs = template.FuncMap{
	"has": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
}

// Build produces the generation plan for a configuration. categories narrows
// the catalog to the named categories; empty means all. Build is pure: same
// configuration, same catalog, identical plan.
func Build(cfg *resolve.Config, specs []registry.Spec, categories []string) (*Plan, error) {
	data := newTemplateData(cfg)

	var nodes []Node
	for _, spec := range specs {
		if !categoryIncluded(spec.Category, categories) {
			continue
		}
		if spec.AppliesTo != nil && !spec.AppliesTo(cfg) {
			continue
		}
		node, err := resolveSpec(spec, data)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	// Stable base order before graph work.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].SpecID < nodes[j].SpecID })

	if err := detectConflicts(nodes); err != nil {
		return nil, err
	}
	addDirEdges(nodes)

	ordered, layers, err := order(nodes)
	if err != nil {
		return nil, err
	}
	return &Plan{Nodes: ordered, Layers: layers}, nil
}

func newTemplateData(cfg *resolve.Config) TemplateData {
	opts := make(map[string]string)
	for _, name := range cfg.OptionNames() {
		opts[name] = cfg.Value(name)
	}
	return TemplateData{
		Project: cfg.Value("project-name"),
		Primary: cfg.Primary(),
		Stacks:  cfg.Stacks(),
		Options: opts,
	}
}

func resolveSpec(spec registry.Spec, data TemplateData) (Node, error) {
	target, err := render(spec.ID+":path", spec.Path, data)
	if err != nil {
		return Node{}, err
	}
	node := Node{
		SpecID:   spec.ID,
		Path:     path.Clean(strings.TrimSpace(string(target))),
		Dir:      spec.Dir,
		Policy:   spec.Policy,
		Block:    spec.Block,
		Requires: append([]string(nil), spec.Requires...),
	}
	if spec.Dir {
		return node, nil
	}

	raw, err := registry.Template(spec.Template)
	if err != nil {
		return Node{}, fmt.Errorf("spec %s: %w", spec.ID, err)
	}
	content, err := render(spec.ID+":content", string(raw), data)
	if err != nil {
		return Node{}, err
	}
	node.Content = content
	return node, nil
}

func render(name, text string, data TemplateData) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func categoryIncluded(category string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, c := range filter {
		if c == category {
			return true
		}
	}
	return false
}

// detectConflicts fails when more than one creating spec resolves to the
// same path. Merge-block nodes legitimately share a path with the spec that
// creates the file, so they do not count as creators.
func detectConflicts(nodes []Node) error {
	creators := make(map[string][]string)
	for _, n := range nodes {
		if n.Policy == registry.PolicyMergeBlock {
			continue
		}
		creators[n.Path] = append(creators[n.Path], n.SpecID)
	}

	paths := make([]string, 0, len(creators))
	for p := range creators {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if ids := creators[p]; len(ids) > 1 {
			sort.Strings(ids)
			return &ConflictError{Path: p, Specs: ids}
		}
	}
	return nil
}

// addDirEdges makes every file node depend on the directory node that
// contains it, when such a node is in the plan.
func addDirEdges(nodes []Node) {
	dirs := make(map[string]string) // dir path -> spec id
	for _, n := range nodes {
		if n.Dir {
			dirs[n.Path] = n.SpecID
		}
	}
	for i := range nodes {
		if nodes[i].Dir {
			continue
		}
		parent := path.Dir(nodes[i].Path)
		for parent != "." && parent != "/" {
			if id, ok := dirs[parent]; ok && !containsStr(nodes[i].Requires, id) {
				nodes[i].Requires = append(nodes[i].Requires, id)
			}
			parent = path.Dir(parent)
		}
		sort.Strings(nodes[i].Requires)
	}
}

// order runs a deterministic Kahn topological sort, grouping nodes into
// layers. Edges pointing at specs absent from the plan (filtered out or not
// applicable) are ignored; the write phase handles any fallout node-locally.
func order(nodes []Node) ([]Node, [][]int, error) {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.SpecID] = i
	}

	indegree := make([]int, len(nodes))
	dependents := make(map[int][]int)
	for i, n := range nodes {
		for _, req := range n.Requires {
			j, ok := index[req]
			if !ok {
				continue
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ordered []Node
	var layers [][]int
	placed := 0

	ready := readyIndexes(indegree)
	for len(ready) > 0 {
		layer := make([]int, 0, len(ready))
		var next []int
		for _, i := range ready {
			layer = append(layer, len(ordered))
			ordered = append(ordered, nodes[i])
			placed++
			for _, dep := range dependents[i] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
			indegree[i] = -1
		}
		layers = append(layers, layer)
		sort.Slice(next, func(a, b int) bool { return nodes[next[a]].SpecID < nodes[next[b]].SpecID })
		ready = next
	}

	if placed != len(nodes) {
		var stuck []string
		for i, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, nodes[i].SpecID)
			}
		}
		sort.Strings(stuck)
		return nil, nil, fmt.Errorf("dependency cycle among specs %s", strings.Join(stuck, ", "))
	}
	return ordered, layers, nil
}

// readyIndexes returns zero-indegree nodes in index order; nodes are
// pre-sorted by spec id, so this order is stable.
func readyIndexes(indegree []int) []int {
	var ready []int
	for i, deg := range indegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}
	return ready
}

// String renders the plan for dry-run preview and determinism checks.
func (p *Plan) String() string {
	var b strings.Builder
	for _, n := range p.Nodes {
		kind := string(n.Policy)
		if n.Dir {
			kind = "mkdir"
		}
		fmt.Fprintf(&b, "%-22s %-15s %s (%d bytes)\n", n.SpecID, kind, n.Path, len(n.Content))
	}
	return b.String()
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
