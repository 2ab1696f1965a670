package doctor

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/stackforge-labs/stackforge/internal/platform"
)

// Output captures the result of one external command invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner is the command execution capability handed to the engine. Probes
// use it for version queries; remediation uses it for the authorized fix
// command. The engine never embeds shell or package-manager knowledge —
// only this contract.
type Runner interface {
	Run(ctx context.Context, command string, args ...string) (Output, error)
}

// ExecRunner runs commands via os/exec, resolving the executable through
// platform.LookPath first.
type ExecRunner struct{}

// Run executes the command and captures both streams. A non-zero exit is
// reported through ExitCode, not the error return; the error return is for
// start failures and context expiry.
func (ExecRunner) Run(ctx context.Context, command string, args ...string) (Output, error) {
	path, err := platform.LookPath(command)
	if err != nil {
		return Output{ExitCode: -1}, err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		out.ExitCode = -1
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		return out, runErr
	}
	return out, nil
}
