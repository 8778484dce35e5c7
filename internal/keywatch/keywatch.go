// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package keywatch maps raw key presses onto the control intents understood
// by the interactive batch runner: abort the whole batch, skip the current
// task, or background the currently running process. It holds a single-slot
// "latest intent" that the runner polls; a later key press overwrites an
// earlier unconsumed one.
package keywatch

import "sync"

// Intent is the most recent unconsumed user control signal.
type Intent int

const (
	// IntentNone means no control signal is pending.
	IntentNone Intent = iota
	// IntentAbort cancels the current task and everything after it.
	IntentAbort
	// IntentSkip ends only the current task.
	IntentSkip
	// IntentBackground detaches the running process and moves on.
	IntentBackground
)

// String implements the Stringer interface for Intent.
func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentAbort:
		return "abort"
	case IntentSkip:
		return "skip"
	case IntentBackground:
		return "background"
	default:
		return "unknown"
	}
}

// KeyEvent is a raw key press record from the event source.
type KeyEvent struct {
	Name string // key name, e.g. "q" or "c"
	Ctrl bool   // true if the control modifier was held
}

// Source is an event stream of key presses. Subscribe registers a handler and
// returns a cancel function that removes it; the arbiter subscribes exactly
// once per batch.
type Source interface {
	Subscribe(fn func(KeyEvent)) (cancel func())
}

// Default hotkeys. Configurable per batch via Config.
const (
	DefaultAbortKey      = "q"
	DefaultSkipKey       = "s"
	DefaultBackgroundKey = "b"
)

// Config enables and binds the per-batch hotkeys. Zero-value key fields fall
// back to the defaults.
type Config struct {
	AllowAbort      bool
	AllowSkip       bool
	AllowBackground bool
	AbortKey        string
	SkipKey         string
	BackgroundKey   string
}

func (c Config) abortKey() string {
	if c.AbortKey == "" {
		return DefaultAbortKey
	}

	return c.AbortKey
}

func (c Config) skipKey() string {
	if c.SkipKey == "" {
		return DefaultSkipKey
	}

	return c.SkipKey
}

func (c Config) backgroundKey() string {
	if c.BackgroundKey == "" {
		return DefaultBackgroundKey
	}

	return c.BackgroundKey
}

// Arbiter turns key events into control intents. It never blocks in the key
// handler: abort and skip forward a termination request to the current
// process, background fires a one-shot release channel that the task runner
// is selecting on.
type Arbiter struct {
	cfg Config

	mu        sync.Mutex
	intent    Intent
	terminate func()
	release   chan struct{}
	released  bool
	cancel    func()
}

// NewArbiter creates an Arbiter with the given hotkey configuration.
func NewArbiter(cfg Config) *Arbiter {
	return &Arbiter{
		cfg:     cfg,
		release: make(chan struct{}),
	}
}

// Attach subscribes the arbiter to the key event source. Call Detach (or the
// returned cancel function) when the batch finishes; both are idempotent.
func (a *Arbiter) Attach(src Source) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancel = src.Subscribe(a.HandleKey)

	return a.Detach
}

// Detach removes the key subscription, if any.
func (a *Arbiter) Detach() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// BeginTask resets the pending intent for a fresh task iteration, installs
// the terminator for the task's process and arms a new one-shot background
// release channel, which is returned for the runner to select on.
//
// The terminator may be nil until the process has been spawned; see
// SetTerminator.
func (a *Arbiter) BeginTask(terminate func()) <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.intent = IntentNone
	a.terminate = terminate
	a.release = make(chan struct{})
	a.released = false

	return a.release
}

// SetTerminator installs or clears the termination request handler for the
// currently running process. If an abort or skip arrived in the window
// between BeginTask and the process becoming available, the termination
// request is delivered immediately rather than lost.
func (a *Arbiter) SetTerminator(terminate func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.terminate = terminate

	if terminate != nil && (a.intent == IntentAbort || a.intent == IntentSkip) {
		terminate()
	}
}

// Intent returns the latest pending intent without consuming it.
func (a *Arbiter) Intent() Intent {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.intent
}

// HandleKey processes one key event. Unrecognized keys are ignored.
// Ctrl+C is always treated as abort when aborting is enabled.
func (a *Arbiter) HandleKey(ev KeyEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.cfg.AllowAbort && (ev.Name == a.cfg.abortKey() || (ev.Ctrl && ev.Name == "c")):
		a.intent = IntentAbort

		if a.terminate != nil {
			a.terminate()
		}

	case a.cfg.AllowSkip && ev.Name == a.cfg.skipKey() && !ev.Ctrl:
		a.intent = IntentSkip

		if a.terminate != nil {
			a.terminate()
		}

	case a.cfg.AllowBackground && ev.Name == a.cfg.backgroundKey() && !ev.Ctrl:
		a.intent = IntentBackground

		if !a.released {
			a.released = true
			close(a.release)
		}
	}
}
