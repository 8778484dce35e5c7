// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package interactive

import (
	"context"
	"errors"

	"github.com/rustydotwtf/letmecook/internal/ctxlog"
	"github.com/rustydotwtf/letmecook/internal/keywatch"
	"github.com/rustydotwtf/letmecook/internal/spawn"
)

var (
	// ErrNilSpawner is returned when the orchestrator has no process spawner.
	ErrNilSpawner = errors.New("spawner must not be nil")
	// ErrInvalidOutputLines is returned when output is enabled with a
	// non-positive window size.
	ErrInvalidOutputLines = errors.New("output lines must be positive when output is shown")
	// ErrNoSessionName is returned when backgrounding is enabled without a
	// session to attach detached processes to.
	ErrNoSessionName = errors.New("backgrounding requires a session name")
)

// Options is the per-batch configuration bundle.
type Options struct {
	ShowOutput      bool   // Stream the bounded output window to the display.
	OutputLines     int    // Trailing lines to surface per task.
	AllowAbort      bool   // Enable the abort hotkey.
	AllowSkip       bool   // Enable the skip hotkey (only meaningful with >1 task).
	AllowBackground bool   // Enable the background hotkey.
	SessionName     string // Session that owns any backgrounded process.
	Keys            keywatch.Config
}

// Orchestrator runs task batches. The zero value is not usable; populate
// Spawner at minimum. Keys, Display and Registry are optional collaborators.
type Orchestrator struct {
	Spawner  spawn.Spawner   // Starts processes.
	Keys     keywatch.Source // Key-press events; nil disables all controls.
	Display  Display         // Rendering target; nil discards updates.
	Registry Registrar       // Ledger for backgrounded processes.
}

// RunBatch executes tasks in order and returns one result per task, index-
// aligned with the input. Task-level failures never surface as an error;
// the returned error is reserved for malformed options.
//
// Once any task is aborted the batch is sticky-cancelled: remaining tasks
// are recorded as aborted without ever spawning a process.
func (o *Orchestrator) RunBatch(ctx context.Context, tasks []Task, opts Options) (Results, error) {
	if o.Spawner == nil {
		return nil, ErrNilSpawner
	}

	if opts.ShowOutput && opts.OutputLines <= 0 {
		return nil, ErrInvalidOutputLines
	}

	if opts.AllowBackground && opts.SessionName == "" {
		return nil, ErrNoSessionName
	}

	if opts.OutputLines <= 0 {
		opts.OutputLines = 1
	}

	logger := ctxlog.Logger(ctx)

	display := o.Display
	if display == nil {
		display = NullDisplay{}
	}

	keys := opts.Keys
	keys.AllowAbort = opts.AllowAbort
	keys.AllowSkip = opts.AllowSkip && len(tasks) > 1
	keys.AllowBackground = opts.AllowBackground

	state := &runState{
		spawner:  o.Spawner,
		arbiter:  keywatch.NewArbiter(keys),
		display:  display,
		registry: o.Registry,
		opts:     opts,
	}

	if o.Keys != nil {
		// Scoped subscription: released on every exit path so no key
		// handler leaks across screens.
		defer state.arbiter.Attach(o.Keys)()
	}

	results := make(Results, 0, len(tasks))
	abortAll := false

	for i, task := range tasks {
		if ctx.Err() != nil {
			abortAll = true
		}

		if abortAll {
			// Never spawned, still reported: the result list stays 1:1
			// with the task list so callers can correlate by index.
			results = append(results, TaskResult{Task: task, Outcome: OutcomeAborted})
			display.Render(Update{Index: i, Label: task.Label, Status: StatusAborted})

			continue
		}

		logger.Debug("running task", "index", i, "label", task.Label)

		res := state.runTask(ctx, i, task)
		if res.Outcome == OutcomeAborted {
			abortAll = true
		}

		results = append(results, res)
	}

	display.Render(Update{Index: NoCurrentTask})

	return results, nil
}
