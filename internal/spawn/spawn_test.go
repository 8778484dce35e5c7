// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package spawn

import (
	"context"
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping unix shell test on windows")
	}
}

func TestExecSpawner_Success(t *testing.T) {
	skipOnWindows(t)

	proc, err := ExecSpawner{}.Spawn(context.Background(), []string{"/bin/echo", "hello"}, "")
	require.NoError(t, err)
	assert.Positive(t, proc.PID())

	out, err := io.ReadAll(proc.Stdout())
	require.NoError(t, err)
	assert.Contains(t, string(out), "hello")

	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Zero(t, code)
}

func TestExecSpawner_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	proc, err := ExecSpawner{}.Spawn(context.Background(), []string{"/bin/sh", "-c", "exit 3"}, "")
	require.NoError(t, err)

	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestExecSpawner_WorkingDirectory(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()

	proc, err := ExecSpawner{}.Spawn(context.Background(), []string{"/bin/sh", "-c", "pwd"}, dir)
	require.NoError(t, err)

	out, err := io.ReadAll(proc.Stdout())
	require.NoError(t, err)
	assert.Contains(t, string(out), dir)

	_, err = proc.Wait()
	require.NoError(t, err)
}

func TestExecSpawner_ExecutableNotFound(t *testing.T) {
	_, err := ExecSpawner{}.Spawn(context.Background(), []string{"/not/a/real/executable"}, "")
	require.Error(t, err)
}

func TestExecSpawner_EmptyCommand(t *testing.T) {
	_, err := ExecSpawner{}.Spawn(context.Background(), nil, "")
	require.ErrorIs(t, err, ErrEmptyCommand)
}

func TestExecSpawner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecSpawner{}.Spawn(ctx, []string{"/bin/echo"}, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecProcess_Terminate(t *testing.T) {
	skipOnWindows(t)

	proc, err := ExecSpawner{}.Spawn(context.Background(), []string{"/bin/sleep", "30"}, "")
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, proc.Terminate())
	}()

	code, err := proc.Wait()
	require.NoError(t, err)
	assert.NotZero(t, code, "terminated process must not report success")

	// Terminating an exited process is tolerated.
	assert.NoError(t, proc.Terminate())
}
