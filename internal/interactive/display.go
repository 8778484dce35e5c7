// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package interactive

import (
	"context"
	"sync"
)

// Status is the display-facing state of a task. It adds the transient
// pending/running states on top of the final outcomes.
type Status int

const (
	// StatusPending means the task has not started yet.
	StatusPending Status = iota
	// StatusRunning means the task's process is executing.
	StatusRunning
	// StatusCompleted mirrors OutcomeCompleted.
	StatusCompleted
	// StatusError mirrors OutcomeError.
	StatusError
	// StatusAborted mirrors OutcomeAborted.
	StatusAborted
	// StatusSkipped mirrors OutcomeSkipped.
	StatusSkipped
	// StatusBackgrounded mirrors OutcomeBackgrounded.
	StatusBackgrounded
)

// String implements the Stringer interface for Status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	case StatusAborted:
		return "aborted"
	case StatusSkipped:
		return "skipped"
	case StatusBackgrounded:
		return "backgrounded"
	default:
		return "unknown"
	}
}

func statusOf(o Outcome) Status {
	switch o {
	case OutcomeCompleted:
		return StatusCompleted
	case OutcomeError:
		return StatusError
	case OutcomeAborted:
		return StatusAborted
	case OutcomeSkipped:
		return StatusSkipped
	case OutcomeBackgrounded:
		return StatusBackgrounded
	default:
		return StatusPending
	}
}

// Update is one refresh of the display: which task, its state and the
// current bounded output window. Index is NoCurrentTask when the batch has
// finished and no command is current.
type Update struct {
	Index  int
	Label  string
	Status Status
	Window []string
}

// NoCurrentTask is the Update index used to clear the "current command"
// indicator once the batch loop has ended.
const NoCurrentTask = -1

// Display is a rendering target for batch progress. Implementations must not
// feed anything back into the batch runner and should return quickly.
type Display interface {
	Render(u Update)
}

// NullDisplay discards all updates.
type NullDisplay struct{}

// Render implements Display by doing nothing.
func (NullDisplay) Render(Update) {}

// ChannelDisplay forwards updates over a buffered channel in a non-blocking
// manner, dropping updates when the receiver is not keeping up. Display
// refreshes are advisory; the final state of every task travels in the
// batch results, never through here.
type ChannelDisplay struct {
	ch     chan Update
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewChannelDisplay creates a ChannelDisplay with the given buffer size.
func NewChannelDisplay(ctx context.Context, bufferSize int) *ChannelDisplay {
	dctx, cancel := context.WithCancel(ctx)

	return &ChannelDisplay{
		ch:     make(chan Update, bufferSize),
		ctx:    dctx,
		cancel: cancel,
	}
}

// Render implements Display. It never blocks: if the channel is full or the
// display is closed the update is dropped.
func (d *ChannelDisplay) Render(u Update) {
	select {
	case <-d.ctx.Done():
		return
	default:
	}

	select {
	case d.ch <- u:
	case <-d.ctx.Done():
	default:
	}
}

// Updates returns the receive side of the display channel.
func (d *ChannelDisplay) Updates() <-chan Update {
	return d.ch
}

// Close stops the display. Further Render calls are dropped.
func (d *ChannelDisplay) Close() {
	d.once.Do(func() {
		d.cancel()
		close(d.ch)
	})
}
