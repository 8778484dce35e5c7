// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rustydotwtf/letmecook/internal/interactive"
	"golang.org/x/term"
)

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// UI owns a bubbletea program for one batch run. It implements
// interactive.Display by forwarding updates into the program's message loop.
type UI struct {
	model   *Model
	program *tea.Program
	mu      sync.Mutex
}

// NewUI creates a UI for the given batch.
func NewUI(title string, tasks []interactive.Task, help string) *UI {
	model := NewModel(title, tasks, help)

	return &UI{
		model:   model,
		program: tea.NewProgram(model),
	}
}

// Model returns the underlying model, whose Keys method is the key event
// source to hand to the batch runner.
func (u *UI) Model() *Model {
	return u.model
}

// Render implements interactive.Display.
func (u *UI) Render(up interactive.Update) {
	u.program.Send(displayMsg{update: up})
}

// Run starts the terminal UI and executes the batch concurrently. It returns
// once both the batch and the UI have finished; the final task list stays on
// the terminal.
func (u *UI) Run(ctx context.Context, batch func(context.Context) (interactive.Results, error)) (interactive.Results, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	type outcome struct {
		results interactive.Results
		err     error
	}

	resultCh := make(chan outcome, 1)

	go func() {
		results, err := batch(ctx)
		resultCh <- outcome{results: results, err: err}
		u.program.Send(doneMsg{results: results})
	}()

	if _, err := u.program.Run(); err != nil {
		// The batch goroutine owns the processes; wait for it even if the
		// terminal broke.
		out := <-resultCh

		if out.err != nil {
			return out.results, out.err
		}

		return out.results, fmt.Errorf("running terminal ui: %w", err)
	}

	out := <-resultCh

	return out.results, out.err
}

// WriterDisplay is the plain-text fallback for non-interactive terminals. It
// prints one line per status transition and stays silent for output window
// refreshes, which only make sense on a live screen.
type WriterDisplay struct {
	mu   sync.Mutex
	w    io.Writer
	last map[int]interactive.Status
}

// NewWriterDisplay creates a WriterDisplay writing to w.
func NewWriterDisplay(w io.Writer) *WriterDisplay {
	return &WriterDisplay{
		w:    w,
		last: make(map[int]interactive.Status),
	}
}

// Render implements interactive.Display.
func (d *WriterDisplay) Render(u interactive.Update) {
	if u.Index == interactive.NoCurrentTask {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last[u.Index] == u.Status {
		return
	}

	d.last[u.Index] = u.Status

	fmt.Fprintf(d.w, "[%s] %s\n", u.Status, u.Label)
}
