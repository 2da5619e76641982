//go:build !windows

package process_test

// Notes:
// - These tests shell out to /bin/sh, so they are skipped on Windows.
// - KillProcessGroup is exercised through context cancellation rather than
//   called with a raw PID: PID 0 or a real PID would target live processes.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-mdembed/internal/process"
)

// ---------------------------------------------------------------------------
// TestExecRunner_Run - Output capture
// ---------------------------------------------------------------------------

func TestExecRunner_Run(t *testing.T) {
	t.Parallel()

	r := &process.ExecRunner{}
	stdout, stderr, err := r.Run(context.Background(), "sh", "-c", "printf out; printf err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out", stdout)
	assert.Equal(t, "err", stderr)
}

func TestExecRunner_Run_NonZeroExit(t *testing.T) {
	t.Parallel()

	r := &process.ExecRunner{}
	_, stderr, err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, stderr, "boom")
}

func TestExecRunner_Run_MissingTool(t *testing.T) {
	t.Parallel()

	r := &process.ExecRunner{}
	_, _, err := r.Run(context.Background(), "mdembed-definitely-not-a-tool")
	assert.True(t, errors.Is(err, process.ErrToolNotFound), "got %v", err)
}

// ---------------------------------------------------------------------------
// TestExecRunner_Run_Cancel - Context cancellation kills the group
// ---------------------------------------------------------------------------

func TestExecRunner_Run_Cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	r := &process.ExecRunner{}
	_, _, err := r.Run(ctx, "sh", "-c", "sleep 10 & sleep 10")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
