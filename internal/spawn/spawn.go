// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package spawn starts external processes with piped output streams. The
// interactive batch runner only depends on the interfaces defined here, so
// tests can substitute scripted processes.
package spawn

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

var (
	// ErrEmptyCommand is returned when a task has no executable.
	ErrEmptyCommand = errors.New("command must have at least one element")
)

// Process is a handle to a running child process.
type Process interface {
	// PID returns the operating system process id.
	PID() int
	// Stdout is the process's standard output stream.
	Stdout() io.Reader
	// Stderr is the process's standard error stream.
	Stderr() io.Reader
	// Terminate requests graceful termination (SIGTERM). A process that has
	// already exited is not an error.
	Terminate() error
	// Wait blocks until the process exits and returns its exit code.
	Wait() (int, error)
}

// Spawner starts a process for the given argv in the given working directory.
// argv[0] is the literal executable to invoke; no shell is involved.
type Spawner interface {
	Spawn(ctx context.Context, argv []string, dir string) (Process, error)
}

// ExecSpawner is the os/exec backed Spawner used outside of tests.
type ExecSpawner struct{}

var _ Spawner = ExecSpawner{}

// Spawn implements Spawner. Stdout and stderr are piped; stdin is not
// connected so a child that prompts will read EOF rather than hang.
func (ExecSpawner) Spawn(ctx context.Context, argv []string, dir string) (Process, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Deliberately not exec.CommandContext: context cancellation must not
	// kill a process that the user has chosen to background.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Stdout() io.Reader {
	return p.stdout
}

func (p *execProcess) Stderr() io.Reader {
	return p.stderr
}

func (p *execProcess) Terminate() error {
	err := p.cmd.Process.Signal(syscall.SIGTERM)
	if err == nil || errors.Is(err, os.ErrProcessDone) {
		return nil
	}

	return err
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, err
}
