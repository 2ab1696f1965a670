package writer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/stackforge-labs/stackforge/internal/plan"
	"github.com/stackforge-labs/stackforge/internal/platform"
	"github.com/stackforge-labs/stackforge/internal/registry"
)

// DefaultWorkers bounds concurrent writes inside one plan layer.
const DefaultWorkers = 4

// Status classifies the outcome of one planned write.
type Status string

// Write outcomes.
const (
	StatusCreated     Status = "created"
	StatusOverwritten Status = "overwritten"
	StatusSkipped     Status = "skipped"
	StatusMerged      Status = "merged"
	StatusFailed      Status = "failed"
)

// WriteResult is the outcome of one plan node.
type WriteResult struct {
	SpecID string
	Path   string
	Status Status
	Reason string
}

// Report aggregates results in plan order.
type Report struct {
	Results []WriteResult
}

// Execute runs the plan against root. Layers run sequentially; nodes within
// a layer run concurrently across a bounded pool, with writes that share a
// parent directory serialized. The error return is context cancellation
// only; per-node failures are recorded in the report.
func Execute(ctx context.Context, root string, p *plan.Plan, workers int) (*Report, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]WriteResult, len(p.Nodes))
	locks := newParentLocks()

	for _, layer := range p.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, idx := range layer {
			idx := idx
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				node := p.Nodes[idx]
				unlock := locks.lock(filepath.Dir(node.Path))
				results[idx] = executeNode(root, node)
				unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &Report{Results: results}, nil
}

func executeNode(root string, node plan.Node) WriteResult {
	res := WriteResult{SpecID: node.SpecID, Path: node.Path}
	target := filepath.Join(root, filepath.FromSlash(node.Path))

	if node.Dir {
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			res.Status = StatusSkipped
			res.Reason = "directory already exists"
			return res
		}
		if err := os.MkdirAll(target, 0755); err != nil {
			res.Status = StatusFailed
			res.Reason = err.Error()
			return res
		}
		res.Status = StatusCreated
		return res
	}

	// Parent directories not modeled as plan nodes are still needed.
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		res.Status = StatusFailed
		res.Reason = fmt.Sprintf("creating parent directory: %v", err)
		return res
	}

	switch node.Policy {
	case registry.PolicySkipIfExists:
		if _, err := os.Stat(target); err == nil {
			res.Status = StatusSkipped
			res.Reason = "target exists, policy forbids overwrite"
			return res
		}
		if err := platform.WriteFileAtomic(target, node.Content, 0644); err != nil {
			res.Status = StatusFailed
			res.Reason = err.Error()
			return res
		}
		res.Status = StatusCreated
		return res

	case registry.PolicyOverwrite:
		_, statErr := os.Stat(target)
		if err := platform.WriteFileAtomic(target, node.Content, 0644); err != nil {
			res.Status = StatusFailed
			res.Reason = err.Error()
			return res
		}
		if statErr == nil {
			res.Status = StatusOverwritten
		} else {
			res.Status = StatusCreated
		}
		return res

	case registry.PolicyMergeBlock:
		existing, err := os.ReadFile(target)
		if err != nil {
			res.Status = StatusFailed
			res.Reason = fmt.Sprintf("merge-block target unreadable: %v", err)
			return res
		}
		merged, err := mergeBlock(existing, node.Block, node.Content)
		if err != nil {
			res.Status = StatusFailed
			res.Reason = err.Error()
			return res
		}
		if bytes.Equal(existing, merged) {
			res.Status = StatusMerged
			res.Reason = "block already up to date"
			return res
		}
		if err := platform.WriteFileAtomic(target, merged, 0644); err != nil {
			res.Status = StatusFailed
			res.Reason = err.Error()
			return res
		}
		res.Status = StatusMerged
		return res

	default:
		res.Status = StatusFailed
		res.Reason = fmt.Sprintf("unknown merge policy %q", node.Policy)
		return res
	}
}

// parentLocks serializes writes that share a parent directory.
type parentLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newParentLocks() *parentLocks {
	return &parentLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *parentLocks) lock(dir string) (unlock func()) {
	p.mu.Lock()
	l, ok := p.locks[dir]
	if !ok {
		l = &sync.Mutex{}
		p.locks[dir] = l
	}
	p.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Counts returns the number of results per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// FailedCount returns the number of failed nodes.
func (r *Report) FailedCount() int { return r.Counts()[StatusFailed] }

// SkippedCount returns the number of skipped nodes.
func (r *Report) SkippedCount() int { return r.Counts()[StatusSkipped] }

// Fprint writes the generation report in doctor-style check lines.
func (r *Report) Fprint(w io.Writer) {
	fmt.Fprintln(w, "Generation report:")
	for _, res := range r.Results {
		tag := " OK "
		switch res.Status {
		case StatusSkipped:
			tag = "SKIP"
		case StatusFailed:
			tag = "FAIL"
		}
		line := fmt.Sprintf("  [%s] %-11s %s", tag, res.Status, res.Path)
		if res.Reason != "" {
			line += " (" + res.Reason + ")"
		}
		fmt.Fprintln(w, line)
	}
	counts := r.Counts()
	fmt.Fprintf(w, "  %d created, %d overwritten, %d merged, %d skipped, %d failed\n",
		counts[StatusCreated], counts[StatusOverwritten], counts[StatusMerged],
		counts[StatusSkipped], counts[StatusFailed])
}
