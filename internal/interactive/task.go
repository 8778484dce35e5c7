// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package interactive

import "strings"

// Task is an immutable description of one unit of work.
type Task struct {
	Label   string   // Human-readable name, correlates the task back to its domain object.
	Command []string // Executable plus arguments. Command[0] is invoked literally, no shell.
	Dir     string   // Optional working directory.
}

// CommandString returns the command joined by spaces, as recorded for
// backgrounded processes.
func (t Task) CommandString() string {
	return strings.Join(t.Command, " ")
}

// Outcome classifies how a task ended.
type Outcome int

const (
	// OutcomeCompleted means the process exited with a success code.
	OutcomeCompleted Outcome = iota
	// OutcomeError means the process failed to spawn or exited non-zero.
	OutcomeError
	// OutcomeAborted means the user cancelled the batch; the task's process
	// was terminated, or never spawned at all.
	OutcomeAborted
	// OutcomeSkipped means the user ended this task and moved to the next.
	OutcomeSkipped
	// OutcomeBackgrounded means the process was detached and left running.
	OutcomeBackgrounded
)

// String implements the Stringer interface for Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeError:
		return "error"
	case OutcomeAborted:
		return "aborted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeBackgrounded:
		return "backgrounded"
	default:
		return "unknown"
	}
}

// TaskResult is the outcome of one scheduled task. Exactly one is produced
// per input task, immutable once returned.
type TaskResult struct {
	Task       Task
	Outcome    Outcome
	ExitCode   int
	OutputTail []string // Bounded trailing output window, most recent last.
	ErrMessage string   // Populated for OutcomeError.
}

// Results is the ordered list of per-task results for one batch, index-
// aligned with the input task list.
type Results []TaskResult

// Failed returns the results with an error outcome.
func (r Results) Failed() Results {
	var out Results

	for _, res := range r {
		if res.Outcome == OutcomeError {
			out = append(out, res)
		}
	}

	return out
}

// Backgrounded returns the results whose processes were left running.
func (r Results) Backgrounded() Results {
	var out Results

	for _, res := range r {
		if res.Outcome == OutcomeBackgrounded {
			out = append(out, res)
		}
	}

	return out
}
