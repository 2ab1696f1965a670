package signal

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectFilePresence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/demo\n")

	defs := []ruleset.SignalDef{
		{Name: "go-mod", Kind: ruleset.KindFilePresence, Path: "go.mod", Strength: 1.0},
		{Name: "node-manifest", Kind: ruleset.KindFilePresence, Path: "package.json", Strength: 1.0},
	}

	set, err := Collect(context.Background(), root, nil, defs, 0)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if !set.Has("go-mod") {
		t.Error("go-mod should be observed")
	}
	if set.Has("node-manifest") {
		t.Error("node-manifest should not be observed")
	}

	sig, _ := set.Get("go-mod")
	if sig.Detail != "go.mod" {
		t.Errorf("Detail = %q, want %q", sig.Detail, "go.mod")
	}
	if sig.Strength != 1.0 {
		t.Errorf("Strength = %v, want 1.0", sig.Strength)
	}
}

func TestCollectGlobPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".github/workflows/ci.yml", "name: ci\n")

	defs := []ruleset.SignalDef{
		{Name: "github-workflows", Kind: ruleset.KindFilePresence, Path: ".github/workflows/*.y*ml", Strength: 0.5},
	}

	set, err := Collect(context.Background(), root, nil, defs, 0)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	sig, ok := set.Get("github-workflows")
	if !ok {
		t.Fatal("github-workflows should be observed")
	}
	if sig.Detail != ".github/workflows/ci.yml" {
		t.Errorf("Detail = %q, want root-relative match", sig.Detail)
	}
}

func TestCollectContentMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pyproject.toml", "[tool.poetry]\nname = \"demo\"\n")

	defs := []ruleset.SignalDef{
		{Name: "python-poetry", Kind: ruleset.KindContentMatch, Path: "pyproject.toml", Pattern: `\[tool\.poetry\]`, Strength: 0.6},
		{Name: "python-pdm", Kind: ruleset.KindContentMatch, Path: "pyproject.toml", Pattern: `\[tool\.pdm\]`, Strength: 0.6},
	}

	set, err := Collect(context.Background(), root, nil, defs, 0)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if !set.Has("python-poetry") {
		t.Error("python-poetry should match file content")
	}
	if set.Has("python-pdm") {
		t.Error("python-pdm should not match file content")
	}
}

func TestCollectEnvVar(t *testing.T) {
	env := map[string]string{"VIRTUAL_ENV": "/tmp/venv"}
	defs := []ruleset.SignalDef{
		{Name: "python-venv", Kind: ruleset.KindEnvVar, Env: "VIRTUAL_ENV", Strength: 0.4},
		{Name: "go-env", Kind: ruleset.KindEnvVar, Env: "GOPATH_UNSET_FOR_TEST", Strength: 0.3},
	}

	set, err := Collect(context.Background(), t.TempDir(), env, defs, 0)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if !set.Has("python-venv") {
		t.Error("python-venv should be observed from the env snapshot")
	}
	if set.Has("go-env") {
		t.Error("unset env var should yield no signal")
	}
}

func TestCollectUnreadableLocationYieldsNoSignal(t *testing.T) {
	root := t.TempDir()
	defs := []ruleset.SignalDef{
		{Name: "missing-match", Kind: ruleset.KindContentMatch, Path: "nowhere.txt", Pattern: "x", Strength: 0.5},
	}

	set, err := Collect(context.Background(), root, nil, defs, 0)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set.Names())
	}
}

func TestCollectReturnsSortedSet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module demo\n")
	writeFile(t, root, "Dockerfile", "FROM scratch\n")
	writeFile(t, root, "package.json", "{}\n")

	defs := []ruleset.SignalDef{
		{Name: "node-manifest", Kind: ruleset.KindFilePresence, Path: "package.json", Strength: 1.0},
		{Name: "go-mod", Kind: ruleset.KindFilePresence, Path: "go.mod", Strength: 1.0},
		{Name: "dockerfile", Kind: ruleset.KindFilePresence, Path: "Dockerfile", Strength: 0.5},
	}

	set, err := Collect(context.Background(), root, nil, defs, 2)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	names := set.Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("set not sorted: %v", names)
	}
	if len(names) != 3 {
		t.Errorf("got %d signals, want 3: %v", len(names), names)
	}
}

func TestCollectCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	defs := []ruleset.SignalDef{
		{Name: "go-mod", Kind: ruleset.KindFilePresence, Path: "go.mod", Strength: 1.0},
	}
	if _, err := Collect(ctx, t.TempDir(), nil, defs, 1); err == nil {
		t.Error("expected context cancellation error")
	}
}
