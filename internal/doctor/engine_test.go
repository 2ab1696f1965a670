package doctor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stackforge-labs/stackforge/internal/ruleset"
)

// fakeRunner maps "command args..." to a scripted output. Calls are recorded
// so tests can assert on probe and remedy invocation counts.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]Output
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: make(map[string]Output), errs: make(map[string]error)}
}

func (f *fakeRunner) script(command string, out Output, err error) {
	f.outputs[command] = out
	if err != nil {
		f.errs[command] = err
	}
}

func (f *fakeRunner) Run(ctx context.Context, command string, args ...string) (Output, error) {
	key := strings.Join(append([]string{command}, args...), " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if err, ok := f.errs[key]; ok {
		return f.outputs[key], err
	}
	return f.outputs[key], nil
}

func (f *fakeRunner) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

// allFound resolves every tool; used when presence is not under test.
func allFound(tool string) (string, error) { return "/usr/bin/" + tool, nil }

func notFound(string) (string, error) { return "", errors.New("not found") }

func TestRunClassifiesOutcomes(t *testing.T) {
	rules := []ruleset.ProbeDef{
		{ID: "git-version", Tool: "git", VersionArgs: []string{"--version"}, MinVersion: "2.30.0"},
		{ID: "node-runtime", Tool: "node", VersionArgs: []string{"--version"}, MinVersion: "18.0.0"},
		{ID: "docker-daemon", Tool: "docker", VersionArgs: []string{"--version"}, MinVersion: "24.0.0", OnStale: ruleset.SeverityFail},
	}
	runner := newFakeRunner()
	runner.script("git --version", Output{Stdout: "git version 2.43.0\n"}, nil)
	runner.script("node --version", Output{Stdout: "v16.20.0\n"}, nil)
	runner.script("docker --version", Output{Stdout: "Docker version 20.10.7, build f0df350\n"}, nil)

	engine := New(rules, runner, WithLookup(allFound))
	report, err := engine.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(report.Results) != len(rules) {
		t.Fatalf("got %d results, want one per rule (%d)", len(report.Results), len(rules))
	}
	wantStatus := []ruleset.Severity{ruleset.SeverityPass, ruleset.SeverityWarn, ruleset.SeverityFail}
	for i, want := range wantStatus {
		if report.Results[i].Status != want {
			t.Errorf("%s status = %s, want %s (%s)",
				report.Results[i].RuleID, report.Results[i].Status, want, report.Results[i].Evidence)
		}
		if report.Results[i].Evidence == "" {
			t.Errorf("%s carries no evidence", report.Results[i].RuleID)
		}
	}
}

func TestRunAbsentToolSeverity(t *testing.T) {
	tests := []struct {
		name     string
		onAbsent ruleset.Severity
		want     ruleset.Severity
	}{
		{"default is fail", "", ruleset.SeverityFail},
		{"declared warn", ruleset.SeverityWarn, ruleset.SeverityWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := []ruleset.ProbeDef{{ID: "probe", Tool: "ghost", OnAbsent: tt.onAbsent}}
			engine := New(rules, newFakeRunner(), WithLookup(notFound))

			report, err := engine.Run(context.Background(), false)
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			res := report.Results[0]
			if res.Status != tt.want {
				t.Errorf("status = %s, want %s", res.Status, tt.want)
			}
			if !strings.Contains(res.Evidence, "not found in PATH") {
				t.Errorf("evidence = %q, want PATH miss", res.Evidence)
			}
		})
	}
}

func TestRunPresenceOnlyProbe(t *testing.T) {
	rules := []ruleset.ProbeDef{{ID: "git-present", Tool: "git"}}
	runner := newFakeRunner()

	engine := New(rules, runner, WithLookup(allFound))
	report, err := engine.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Results[0].Status != ruleset.SeverityPass {
		t.Errorf("status = %s, want pass", report.Results[0].Status)
	}
	if len(runner.calls) != 0 {
		t.Errorf("presence-only probe must not run commands, got %v", runner.calls)
	}
}

func TestRunProbeTimeoutClassifiedAsFail(t *testing.T) {
	rules := []ruleset.ProbeDef{{ID: "slow", Tool: "slow", VersionArgs: []string{"--version"}, MinVersion: "1.0.0"}}
	runner := newFakeRunner()
	runner.script("slow --version", Output{ExitCode: -1}, context.DeadlineExceeded)

	engine := New(rules, runner, WithLookup(allFound), WithTimeout(50*time.Millisecond))
	report, err := engine.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("timed-out probe must be classified, not returned as error: %v", err)
	}
	res := report.Results[0]
	if res.Status != ruleset.SeverityFail || !strings.Contains(res.Evidence, "timed out") {
		t.Errorf("result = %s (%s), want fail with timeout evidence", res.Status, res.Evidence)
	}
}

func TestRunUnparseableVersionFails(t *testing.T) {
	rules := []ruleset.ProbeDef{{ID: "odd", Tool: "odd", VersionArgs: []string{"--version"}, MinVersion: "1.0.0"}}
	runner := newFakeRunner()
	runner.script("odd --version", Output{Stdout: "no digits here\n"}, nil)

	engine := New(rules, runner, WithLookup(allFound))
	report, err := engine.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	res := report.Results[0]
	if res.Status != ruleset.SeverityFail || !strings.Contains(res.Evidence, "could not parse") {
		t.Errorf("result = %s (%s), want parse failure", res.Status, res.Evidence)
	}
}

func TestRunCustomVersionPattern(t *testing.T) {
	rules := []ruleset.ProbeDef{{
		ID: "go-toolchain", Tool: "go", VersionArgs: []string{"version"},
		VersionPattern: `go version go(\d+\.\d+(?:\.\d+)?)`, MinVersion: "1.21.0",
	}}
	runner := newFakeRunner()
	runner.script("go version", Output{Stdout: "go version go1.22.4 linux/amd64\n"}, nil)

	engine := New(rules, runner, WithLookup(allFound))
	report, err := engine.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	res := report.Results[0]
	if res.Status != ruleset.SeverityPass {
		t.Errorf("result = %s (%s), want pass", res.Status, res.Evidence)
	}
	if !strings.Contains(res.Evidence, "1.22.4") {
		t.Errorf("evidence = %q, want extracted version", res.Evidence)
	}
}

func TestRunFixRemediatesAndReprobesOnce(t *testing.T) {
	rules := []ruleset.ProbeDef{{
		ID: "docker-daemon", Tool: "docker", VersionArgs: []string{"--version"}, MinVersion: "24.0.0",
		Remedy: &ruleset.RemedyDef{Description: "start docker", Command: "systemctl", Args: []string{"start", "docker"}},
	}}
	runner := newFakeRunner()
	// Stale before the fix; the re-probe sees the same scripted output, so
	// the final status stays non-pass and is annotated.
	runner.script("docker --version", Output{Stdout: "Docker version 20.10.7\n"}, nil)
	runner.script("systemctl start docker", Output{ExitCode: 0}, nil)

	engine := New(rules, runner, WithLookup(allFound))
	report, err := engine.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	res := report.Results[0]
	if !res.Remediated {
		t.Error("result should be marked remediated")
	}
	if !strings.Contains(res.Evidence, "after remediation") {
		t.Errorf("evidence = %q, want post-remediation annotation", res.Evidence)
	}
	if got := runner.callCount("systemctl start docker"); got != 1 {
		t.Errorf("remedy ran %d times, want exactly 1", got)
	}
	if got := runner.callCount("docker --version"); got != 2 {
		t.Errorf("probe ran %d times, want initial evaluation plus one re-probe", got)
	}
}

func TestRunFixSuccessfulRemediationPasses(t *testing.T) {
	rules := []ruleset.ProbeDef{{
		ID: "tool-version", Tool: "tool", VersionArgs: []string{"--version"}, MinVersion: "2.0.0",
		Remedy: &ruleset.RemedyDef{Command: "upgrade-tool"},
	}}
	runner := newFakeRunner()
	runner.script("tool --version", Output{Stdout: "tool 1.0.0\n"}, nil)
	runner.script("upgrade-tool", Output{ExitCode: 0}, nil)

	// The probe is stale until the remedy runs; the flipper swaps the
	// scripted version afterwards so the single re-probe sees the upgrade.
	flipping := &versionFlipper{inner: runner, after: "tool 2.1.0\n", trigger: "upgrade-tool"}
	engine := New(rules, flipping, WithLookup(allFound))

	report, err := engine.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	res := report.Results[0]
	if res.Status != ruleset.SeverityPass || !res.Remediated {
		t.Errorf("result = %s remediated=%v (%s), want pass after fix", res.Status, res.Remediated, res.Evidence)
	}
	if strings.Contains(res.Evidence, "after remediation") {
		t.Errorf("passing result should not carry the failure annotation: %q", res.Evidence)
	}
}

// versionFlipper swaps the probe output once its trigger command has run.
type versionFlipper struct {
	mu      sync.Mutex
	inner   *fakeRunner
	after   string
	trigger string
	fired   bool
}

func (v *versionFlipper) Run(ctx context.Context, command string, args ...string) (Output, error) {
	out, err := v.inner.Run(ctx, command, args...)
	v.mu.Lock()
	defer v.mu.Unlock()
	if command == v.trigger {
		v.fired = true
		return out, err
	}
	if v.fired {
		out.Stdout = v.after
	}
	return out, err
}

func TestRunFixFailedRemedyKeepsPriorStatus(t *testing.T) {
	rules := []ruleset.ProbeDef{{
		ID: "daemon", Tool: "svc", VersionArgs: []string{"--version"}, MinVersion: "2.0.0",
		OnStale: ruleset.SeverityFail,
		Remedy:  &ruleset.RemedyDef{Command: "restart-svc"},
	}}
	runner := newFakeRunner()
	runner.script("svc --version", Output{Stdout: "svc 1.0.0\n"}, nil)
	runner.script("restart-svc", Output{ExitCode: 1}, nil)

	engine := New(rules, runner, WithLookup(allFound))
	report, err := engine.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	res := report.Results[0]
	if res.Status != ruleset.SeverityFail || !res.Remediated {
		t.Errorf("result = %s remediated=%v, want fail with remediation recorded", res.Status, res.Remediated)
	}
	if !strings.Contains(res.Evidence, "remediation failed") {
		t.Errorf("evidence = %q, want remediation failure recorded", res.Evidence)
	}
	if got := runner.callCount("svc --version"); got != 1 {
		t.Errorf("probe ran %d times, want no re-probe after failed remedy", got)
	}
}

func TestRunWithoutFixNeverRemediates(t *testing.T) {
	rules := []ruleset.ProbeDef{{
		ID: "daemon", Tool: "svc", VersionArgs: []string{"--version"}, MinVersion: "2.0.0",
		Remedy: &ruleset.RemedyDef{Command: "restart-svc"},
	}}
	runner := newFakeRunner()
	runner.script("svc --version", Output{Stdout: "svc 1.0.0\n"}, nil)

	engine := New(rules, runner, WithLookup(allFound))
	if _, err := engine.Run(context.Background(), false); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := runner.callCount("restart-svc"); got != 0 {
		t.Errorf("remedy ran %d times without --fix, want 0", got)
	}
}

func TestRunCountInvariant(t *testing.T) {
	var rules []ruleset.ProbeDef
	runner := newFakeRunner()
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("probe-%d", i)
		rules = append(rules, ruleset.ProbeDef{ID: id, Tool: id, VersionArgs: []string{"--version"}, MinVersion: "1.0.0"})
		runner.script(id+" --version", Output{Stdout: fmt.Sprintf("%s %d.0.0\n", id, i)}, nil)
	}

	engine := New(rules, runner, WithLookup(allFound), WithWorkers(3))
	report, err := engine.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.Results) != len(rules) {
		t.Fatalf("got %d results, want %d", len(report.Results), len(rules))
	}
	pass, warn, fail := report.Counts()
	if pass+warn+fail != len(rules) {
		t.Errorf("counts %d+%d+%d do not sum to %d rules", pass, warn, fail, len(rules))
	}
	for i, rule := range rules {
		if report.Results[i].RuleID != rule.ID {
			t.Errorf("result %d = %s, want rule-declared order (%s)", i, report.Results[i].RuleID, rule.ID)
		}
	}
}

func TestReportFprint(t *testing.T) {
	h := &HealthReport{Results: []ProbeResult{
		{RuleID: "git-version", Status: ruleset.SeverityPass, Evidence: "git 2.43.0 at /usr/bin/git"},
		{RuleID: "node-runtime", Status: ruleset.SeverityWarn, Evidence: "node 16.20.0 older than required 18.0.0"},
		{RuleID: "docker-daemon", Status: ruleset.SeverityPass, Evidence: "docker 24.0.2 at /usr/bin/docker", Remediated: true},
	}}

	var buf bytes.Buffer
	h.Fprint(&buf)
	out := buf.String()
	for _, want := range []string{"[ OK ]", "[WARN]", "[fixed]", "2 passed, 1 warnings, 0 failures"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if h.AllPassed() {
		t.Error("AllPassed() should be false with a warning present")
	}
}
