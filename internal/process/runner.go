// Package process runs external tools (pandoc, drawio) as subprocesses.
package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// ErrToolNotFound indicates the executable could not be located.
var ErrToolNotFound = errors.New("executable not found")

// Runner abstracts command execution to enable testing without real subprocesses.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements Runner using os/exec.
// The child runs in its own process group so cancellation also reaps
// anything it spawned (drawio starts an Electron tree).
type ExecRunner struct{}

// Run executes name with args and returns captured stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", "", errors.Join(ErrToolNotFound, err)
	}

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- tool path comes from config/flags
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return nil
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), stderr.String(), ctxErr
	}
	return stdout.String(), stderr.String(), err
}
