// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_DefaultWhenContextEmpty(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
}

func TestLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(&buf, nil))
	ctx := New(context.Background(), logger)

	assert.Same(t, logger, Logger(ctx))
}

func TestNew_NilLoggerFallsBack(t *testing.T) {
	ctx := New(context.Background(), nil)
	assert.Same(t, DefaultLogger, Logger(ctx))
}

func TestPrettyHandler_WritesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("cloning repository", "repo", "example", "attempt", 2)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "cloning repository")
	assert.Contains(t, out, "repo")
	assert.Contains(t, out, "example")
	assert.Contains(t, out, "INFO")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger = logger.With("session", "demo").WithGroup("task")
	logger.Info("started", "label", "repo-a")

	out := buf.String()
	assert.Contains(t, out, "session")
	assert.Contains(t, out, "task.label")
}
