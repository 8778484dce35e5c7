// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package bgproc

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "bgproc.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func TestRegisterAndList(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Register(ctx, 1001, "git clone a", "repo-a", "sess-1"))
	require.NoError(t, store.Register(ctx, 1002, "git clone b", "repo-b", "sess-1"))
	require.NoError(t, store.Register(ctx, 1003, "git clone c", "repo-c", "sess-2"))

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1001, all[0].PID, "entries come back oldest first")
	assert.Equal(t, "git clone a", all[0].Command)
	assert.Equal(t, "repo-a", all[0].Description)
	assert.False(t, all[0].RegisteredAt.IsZero())

	one, err := store.List(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, one, 2)

	none, err := store.List(ctx, "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRegister_ManyForSameSession(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i := range 20 {
		require.NoError(t, store.Register(ctx, 2000+i, "sleep 100", "repeat", "sess"))
	}

	entries, err := store.List(ctx, "sess")
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bgproc.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Register(ctx, 42, "git clone x", "repo-x", "sess"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	defer reopened.Close() //nolint:errcheck

	entries, err := reopened.List(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 42, entries[0].PID)
}

func TestKillAll_ExitedProcessCountsAsKilled(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	// A pid that is extremely unlikely to exist.
	require.NoError(t, store.Register(ctx, 1<<21, "gone", "gone", "sess"))

	entries, err := store.List(ctx, "sess")
	require.NoError(t, err)

	require.NoError(t, store.KillAll(ctx, entries))

	remaining, err := store.List(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestKillAll_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Register(ctx, 1<<21, "gone", "gone", "sess"))

	first, err := store.List(ctx, "sess")
	require.NoError(t, err)
	require.NoError(t, store.KillAll(ctx, first))

	second, err := store.List(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, second, "second pass observes no remaining entries")
	require.NoError(t, store.KillAll(ctx, second))
}

func TestKillAll_TerminatesLiveProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping signal test on windows")
	}

	ctx := context.Background()
	store := openTestStore(t)

	cmd := exec.Command("/bin/sleep", "60")
	require.NoError(t, cmd.Start())

	require.NoError(t, store.Register(ctx, cmd.Process.Pid, "sleep 60", "sleeper", "sess"))

	entries, err := store.List(ctx, "sess")
	require.NoError(t, err)
	require.NoError(t, store.KillAll(ctx, entries))

	err = cmd.Wait()
	require.Error(t, err, "process should have been terminated")

	remaining, err := store.List(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
