// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate carries the CLI-scoped application state through the
// command context: the data directory, the session manifest store and the
// background process registry. Subcommands retrieve it with From instead of
// reaching for globals.
package cmdstate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustydotwtf/letmecook/internal/bgproc"
	"github.com/rustydotwtf/letmecook/internal/session"
	"github.com/spf13/afero"
)

// EnvDataDir overrides the default data directory location.
const EnvDataDir = "LETMECOOK_DATA_DIR"

// ErrNoState is returned when the context carries no application state.
var ErrNoState = errors.New("command state not initialized")

type ctxKey struct{}

// State is the application state shared by all subcommands.
type State struct {
	DataDir  string
	Sessions *session.Store
	Registry *bgproc.Store
}

// With returns a context carrying the given state.
func With(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From retrieves the state installed by With.
func From(ctx context.Context) (*State, error) {
	s, ok := ctx.Value(ctxKey{}).(*State)
	if !ok || s == nil {
		return nil, ErrNoState
	}

	return s, nil
}

// DataDir resolves the data directory: the EnvDataDir override when set,
// otherwise a letmecook directory under the user config dir.
func DataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}

	return filepath.Join(base, "letmecook"), nil
}

// Init resolves the data directory, opens the stores and returns a context
// carrying the resulting state. Callers must Close when done.
func Init(ctx context.Context) (context.Context, error) {
	dir, err := DataDir()
	if err != nil {
		return ctx, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ctx, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	registry, err := bgproc.Open(filepath.Join(dir, "bgproc.db"))
	if err != nil {
		return ctx, err
	}

	s := &State{
		DataDir:  dir,
		Sessions: session.NewStore(afero.NewOsFs(), filepath.Join(dir, "sessions")),
		Registry: registry,
	}

	return With(ctx, s), nil
}

// Close releases the state's resources, if any state is present.
func Close(ctx context.Context) error {
	s, err := From(ctx)
	if err != nil {
		return nil
	}

	return s.Registry.Close()
}
