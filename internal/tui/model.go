// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui renders interactive batch progress as a live task list. The
// model doubles as the key event source for the batch runner: every key
// press received by the bubbletea program is fanned out to keywatch
// subscribers, so hotkey interpretation stays out of the view layer.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rustydotwtf/letmecook/internal/interactive"
	"github.com/rustydotwtf/letmecook/internal/keywatch"
)

// displayMsg wraps one batch progress update for the tea framework.
type displayMsg struct {
	update interactive.Update
}

// doneMsg indicates that the batch has finished.
type doneMsg struct {
	results interactive.Results
}

// taskView is the display state of one task in the list.
type taskView struct {
	label  string
	status interactive.Status
}

// Styles contains the styling for the task list.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Muted   lipgloss.Style
	Output  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// keyFanout distributes key events to keywatch subscribers.
type keyFanout struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(keywatch.KeyEvent)
}

func newKeyFanout() *keyFanout {
	return &keyFanout{subs: make(map[int]func(keywatch.KeyEvent))}
}

// Subscribe implements keywatch.Source.
func (f *keyFanout) Subscribe(fn func(keywatch.KeyEvent)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		delete(f.subs, id)
	}
}

func (f *keyFanout) dispatch(ev keywatch.KeyEvent) {
	f.mu.Lock()
	fns := make([]func(keywatch.KeyEvent), 0, len(f.subs))

	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Model is the bubbletea model for an interactive batch run.
type Model struct {
	title   string
	tasks   []taskView
	current int
	window  []string
	done    bool
	results interactive.Results
	spin    spinner.Model
	styles  *Styles
	keys    *keyFanout
	help    string
}

// NewModel creates a model for the given batch. The help line describes the
// hotkeys the batch actually allows; pass an empty string to omit it.
func NewModel(title string, tasks []interactive.Task, help string) *Model {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{label: t.Label, status: interactive.StatusPending})
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		title:   title,
		tasks:   views,
		current: interactive.NoCurrentTask,
		spin:    sp,
		styles:  NewStyles(),
		keys:    newKeyFanout(),
		help:    help,
	}
}

// Keys returns the key event source backed by this model.
func (m *Model) Keys() keywatch.Source {
	return m.keys
}

// Init implements bubbletea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update implements bubbletea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.keys.dispatch(keyEventOf(msg))

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd

	case displayMsg:
		m.apply(msg.update)

		return m, nil

	case doneMsg:
		m.done = true
		m.results = msg.results
		m.current = interactive.NoCurrentTask
		m.window = nil

		return m, tea.Quit
	}

	return m, nil
}

// keyEventOf translates a bubbletea key press into a keywatch event.
func keyEventOf(msg tea.KeyMsg) keywatch.KeyEvent {
	name := msg.String()
	ctrl := strings.HasPrefix(name, "ctrl+")

	if ctrl {
		name = strings.TrimPrefix(name, "ctrl+")
	}

	return keywatch.KeyEvent{Name: name, Ctrl: ctrl}
}

func (m *Model) apply(u interactive.Update) {
	if u.Index == interactive.NoCurrentTask {
		m.current = interactive.NoCurrentTask
		m.window = nil

		return
	}

	if u.Index < 0 || u.Index >= len(m.tasks) {
		return
	}

	m.tasks[u.Index].status = u.Status

	if u.Status == interactive.StatusRunning {
		m.current = u.Index
		m.window = u.Window
	} else if m.current == u.Index {
		m.current = interactive.NoCurrentTask
		m.window = nil
	}
}

// View implements bubbletea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")

	for i, t := range m.tasks {
		b.WriteString("  ")
		b.WriteString(m.renderTask(t))
		b.WriteString("\n")

		if i == m.current {
			for _, line := range m.window {
				b.WriteString("      ")
				b.WriteString(m.styles.Output.Render(line))
				b.WriteString("\n")
			}
		}
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(m.renderSummary())
		b.WriteString("\n")
	} else if m.help != "" {
		b.WriteString(m.styles.Help.Render(m.help))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderTask(t taskView) string {
	switch t.status {
	case interactive.StatusPending:
		return fmt.Sprintf("%s %s", m.styles.Muted.Render("•"), m.styles.Pending.Render(t.label))
	case interactive.StatusRunning:
		return fmt.Sprintf("%s %s", m.spin.View(), m.styles.Running.Render(t.label))
	case interactive.StatusCompleted:
		return fmt.Sprintf("%s %s", m.styles.Success.Render("✓"), t.label)
	case interactive.StatusError:
		return fmt.Sprintf("%s %s", m.styles.Failed.Render("✗"), m.styles.Failed.Render(t.label))
	case interactive.StatusAborted:
		return fmt.Sprintf("%s %s", m.styles.Failed.Render("■"), m.styles.Muted.Render(t.label+" (aborted)"))
	case interactive.StatusSkipped:
		return fmt.Sprintf("%s %s", m.styles.Muted.Render("↷"), m.styles.Muted.Render(t.label+" (skipped)"))
	case interactive.StatusBackgrounded:
		return fmt.Sprintf("%s %s", m.styles.Running.Render("⇣"), m.styles.Muted.Render(t.label+" (background)"))
	default:
		return t.label
	}
}

func (m *Model) renderSummary() string {
	failed := len(m.results.Failed())
	if failed > 0 {
		return m.styles.Failed.Render(fmt.Sprintf("%d task(s) failed", failed))
	}

	if bg := len(m.results.Backgrounded()); bg > 0 {
		return m.styles.Running.Render(fmt.Sprintf("done, %d task(s) still running in the background", bg))
	}

	return m.styles.Success.Render("all tasks completed")
}
