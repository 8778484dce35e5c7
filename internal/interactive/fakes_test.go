// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package interactive

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rustydotwtf/letmecook/internal/keywatch"
	"github.com/rustydotwtf/letmecook/internal/spawn"
)

// fakeProc is a scripted process. Its streams are pipes that stay open until
// the test (or Terminate) finishes it, which lets tests hold a task in the
// Running state for as long as they need.
type fakeProc struct {
	pid             int
	exitCode        int
	ignoreTerminate bool // simulate a SIGTERM that loses the race

	stdoutR, stderrR *io.PipeReader
	stdoutW, stderrW *io.PipeWriter

	exitOnce   sync.Once
	exited     chan struct{}
	terminated atomic.Bool
}

func newFakeProc(pid, exitCode int) *fakeProc {
	p := &fakeProc{pid: pid, exitCode: exitCode, exited: make(chan struct{})}
	p.stdoutR, p.stdoutW = io.Pipe()
	p.stderrR, p.stderrW = io.Pipe()

	return p
}

func (p *fakeProc) PID() int          { return p.pid }
func (p *fakeProc) Stdout() io.Reader { return p.stdoutR }
func (p *fakeProc) Stderr() io.Reader { return p.stderrR }

func (p *fakeProc) Terminate() error {
	if p.ignoreTerminate {
		return nil
	}

	p.terminated.Store(true)
	p.finish()

	return nil
}

func (p *fakeProc) Wait() (int, error) {
	<-p.exited

	if p.terminated.Load() {
		return -1, nil
	}

	return p.exitCode, nil
}

// finish closes the output streams and lets Wait return. Idempotent.
func (p *fakeProc) finish() {
	p.exitOnce.Do(func() {
		_ = p.stdoutW.Close()
		_ = p.stderrW.Close()
		close(p.exited)
	})
}

// run emits the given stdout/stderr text and exits.
func (p *fakeProc) run(stdout, stderr string) {
	go func() {
		if stdout != "" {
			_, _ = p.stdoutW.Write([]byte(stdout))
		}

		if stderr != "" {
			_, _ = p.stderrW.Write([]byte(stderr))
		}

		p.finish()
	}()
}

// stepFunc produces the scripted result of one spawn call.
type stepFunc = func() (spawn.Process, error)

// scriptedSpawner hands out one scripted result per spawn call, in order.
type scriptedSpawner struct {
	mu    sync.Mutex
	steps []stepFunc
	calls int
}

func (s *scriptedSpawner) Spawn(_ context.Context, _ []string, _ string) (spawn.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls >= len(s.steps) {
		return nil, errors.New("unexpected spawn call")
	}

	step := s.steps[s.calls]
	s.calls++

	return step()
}

func (s *scriptedSpawner) spawnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

// completing returns a spawn step for a process that prints and exits.
func completing(pid, exitCode int, stdout, stderr string) func() (spawn.Process, error) {
	return func() (spawn.Process, error) {
		p := newFakeProc(pid, exitCode)
		p.run(stdout, stderr)

		return p, nil
	}
}

// hanging returns a spawn step for a process that stays running until
// terminated or finished by the test. The process is also sent on started so
// the test knows the task has entered the Running state.
func hanging(pid int, started chan<- *fakeProc) func() (spawn.Process, error) {
	return func() (spawn.Process, error) {
		p := newFakeProc(pid, 0)
		started <- p

		return p, nil
	}
}

// fakeKeys is a test-controlled key event source.
type fakeKeys struct {
	mu      sync.Mutex
	handler func(keywatch.KeyEvent)
}

func (f *fakeKeys) Subscribe(fn func(keywatch.KeyEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handler = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.handler = nil
	}
}

func (f *fakeKeys) press(name string) {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()

	if fn != nil {
		fn(keywatch.KeyEvent{Name: name})
	}
}

// recordingRegistry captures Register calls.
type recordingRegistry struct {
	mu      sync.Mutex
	entries []registeredEntry
	err     error
}

type registeredEntry struct {
	pid         int
	command     string
	description string
	session     string
}

func (r *recordingRegistry) Register(_ context.Context, pid int, command, description, session string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}

	r.entries = append(r.entries, registeredEntry{pid: pid, command: command, description: description, session: session})

	return nil
}

func (r *recordingRegistry) all() []registeredEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]registeredEntry, len(r.entries))
	copy(out, r.entries)

	return out
}

// recordingDisplay captures every update it is asked to render.
type recordingDisplay struct {
	mu      sync.Mutex
	updates []Update
}

func (d *recordingDisplay) Render(u Update) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.updates = append(d.updates, u)
}

func (d *recordingDisplay) all() []Update {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Update, len(d.updates))
	copy(out, d.updates)

	return out
}
