// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDir_EnvOverride(t *testing.T) {
	stubs := gostub.New()
	defer stubs.Reset()

	stubs.SetEnv(EnvDataDir, "/custom/data")

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/data", dir)
}

func TestDataDir_DefaultsUnderUserConfigDir(t *testing.T) {
	stubs := gostub.New()
	defer stubs.Reset()

	stubs.UnsetEnv(EnvDataDir)
	stubs.SetEnv("XDG_CONFIG_HOME", "/home/test/.config")

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/test/.config/letmecook", dir)
}

func TestInit_OpensStoresAndClose(t *testing.T) {
	stubs := gostub.New()
	defer stubs.Reset()

	dataDir := t.TempDir()
	stubs.SetEnv(EnvDataDir, dataDir)

	ctx, err := Init(context.Background())
	require.NoError(t, err)

	state, err := From(ctx)
	require.NoError(t, err)
	assert.Equal(t, dataDir, state.DataDir)
	assert.NotNil(t, state.Sessions)
	assert.NotNil(t, state.Registry)

	assert.FileExists(t, filepath.Join(dataDir, "bgproc.db"))

	require.NoError(t, Close(ctx))
}

func TestFrom_MissingState(t *testing.T) {
	_, err := From(context.Background())
	require.ErrorIs(t, err, ErrNoState)

	assert.NoError(t, Close(context.Background()), "close without state is a no-op")
}
