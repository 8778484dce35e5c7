// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package interactive

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rustydotwtf/letmecook/internal/ctxlog"
	"github.com/rustydotwtf/letmecook/internal/keywatch"
	"github.com/rustydotwtf/letmecook/internal/linebuffer"
	"github.com/rustydotwtf/letmecook/internal/spawn"
)

// Registrar records processes that were backgrounded and therefore outlive
// the batch. Registration failures are logged, never fatal: the process is
// genuinely running either way.
type Registrar interface {
	Register(ctx context.Context, pid int, command, description, session string) error
}

// runState is the per-invocation execution state. One is created per
// RunBatch call; nothing here is shared between batches.
type runState struct {
	spawner  spawn.Spawner
	arbiter  *keywatch.Arbiter
	display  Display
	registry Registrar
	opts     Options
}

// runTask takes one task from Pending through Running to exactly one final
// outcome. It never returns an error: spawn failures and non-zero exits are
// encoded in the result.
func (s *runState) runTask(ctx context.Context, idx int, task Task) TaskResult {
	logger := ctxlog.Logger(ctx).With("task", task.Label)

	res := TaskResult{Task: task}

	buf := s.newBuffer(idx, task)

	// Fresh intent slot and a fresh one-shot background release for this
	// iteration. The terminator is installed once the process exists.
	release := s.arbiter.BeginTask(nil)

	s.display.Render(Update{Index: idx, Label: task.Label, Status: StatusRunning})

	proc, err := s.spawner.Spawn(ctx, task.Command, task.Dir)
	if err != nil {
		logger.Debug("spawn failed", "error", err)

		res.Outcome = OutcomeError
		res.ExitCode = 1
		res.ErrMessage = err.Error()

		s.display.Render(Update{Index: idx, Label: task.Label, Status: StatusError})

		return res
	}

	logger.Debug("process started", "pid", proc.PID())

	s.arbiter.SetTerminator(func() {
		_ = proc.Terminate()
	})
	defer s.arbiter.SetTerminator(nil)

	// Readers poll this before every read so that a background release lets
	// go of the streams without requiring the process to exit.
	shouldStop := func() bool {
		select {
		case <-release:
			return true
		default:
			return false
		}
	}

	streamsDone := make(chan struct{})

	go func() {
		var wg sync.WaitGroup

		wg.Add(2)

		go func() {
			defer wg.Done()

			buf.Consume(proc.Stdout(), shouldStop)
		}()
		go func() {
			defer wg.Done()

			buf.Consume(proc.Stderr(), shouldStop)
		}()

		wg.Wait()
		close(streamsDone)
	}()

	select {
	case <-release:
		return s.background(ctx, idx, task, proc, buf)

	case <-streamsDone:
		// Background wins if it was requested at all, even when both
		// settle together. Detaching is the more deliberate user action.
		select {
		case <-release:
			return s.background(ctx, idx, task, proc, buf)
		default:
		}
	}

	exitCode, waitErr := proc.Wait()

	logger.Debug("process finished", "exitCode", exitCode, "error", waitErr)

	res.ExitCode = exitCode
	res.OutputTail = buf.Window()

	// Termination requests race against natural completion, so user intent
	// takes priority over whatever exit code won that race.
	switch intent := s.arbiter.Intent(); {
	case intent == keywatch.IntentAbort:
		res.Outcome = OutcomeAborted

	case intent == keywatch.IntentSkip:
		res.Outcome = OutcomeSkipped

	case waitErr == nil && exitCode == 0:
		res.Outcome = OutcomeCompleted

	default:
		res.Outcome = OutcomeError
		res.ErrMessage = strings.TrimSpace(buf.FullOutput())

		if res.ErrMessage == "" && waitErr != nil {
			res.ErrMessage = waitErr.Error()
		}

		if res.ErrMessage == "" {
			res.ErrMessage = fmt.Sprintf("command exited with code %d", exitCode)
		}
	}

	s.display.Render(Update{Index: idx, Label: task.Label, Status: statusOf(res.Outcome), Window: res.OutputTail})

	return res
}

// background hands the still-running process over to the registry and
// reports the task as detached. The exit code is never collected.
func (s *runState) background(ctx context.Context, idx int, task Task, proc spawn.Process, buf *linebuffer.Reader) TaskResult {
	logger := ctxlog.Logger(ctx).With("task", task.Label)

	res := TaskResult{
		Task:       task,
		Outcome:    OutcomeBackgrounded,
		ExitCode:   0,
		OutputTail: buf.Window(),
	}

	if s.registry != nil {
		err := s.registry.Register(ctx, proc.PID(), task.CommandString(), task.Label, s.opts.SessionName)
		if err != nil {
			// Durability is best effort; the user is not blocked on it.
			logger.Warn("failed to record background process", "pid", proc.PID(), "error", err)
		} else {
			logger.Info("process backgrounded", "pid", proc.PID())
		}
	}

	s.display.Render(Update{Index: idx, Label: task.Label, Status: StatusBackgrounded, Window: res.OutputTail})

	return res
}

func (s *runState) newBuffer(idx int, task Task) *linebuffer.Reader {
	if !s.opts.ShowOutput {
		return linebuffer.New(s.opts.OutputLines)
	}

	var opt linebuffer.Option = linebuffer.WithWindowFunc(func(window []string) {
		s.display.Render(Update{Index: idx, Label: task.Label, Status: StatusRunning, Window: window})
	})

	return linebuffer.New(s.opts.OutputLines, opt)
}
