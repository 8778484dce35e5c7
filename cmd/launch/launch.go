// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package launch implements the launch subcommand: prepare a session's
// workspace by cloning its repositories and installing dependencies, then
// start the configured agent inside it.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rustydotwtf/letmecook/cmd/cmdstate"
	"github.com/rustydotwtf/letmecook/internal/ctxlog"
	"github.com/rustydotwtf/letmecook/internal/interactive"
	"github.com/rustydotwtf/letmecook/internal/session"
	"github.com/rustydotwtf/letmecook/internal/spawn"
	"github.com/rustydotwtf/letmecook/internal/tui"
	"github.com/rustydotwtf/letmecook/internal/workspace"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	sessionArg      = "session"
	agentFlag       = "agent"
	workspaceFlag   = "workspace"
	repoFlag        = "repo"
	outputLinesFlag = "output-lines"
	noAgentFlag     = "no-agent"
)

// ErrBadRepoSpec is returned when a --repo value is not name=url.
var ErrBadRepoSpec = errors.New("repo must be specified as name=url")

// LaunchCmd prepares a workspace and starts the agent in it.
var LaunchCmd = &cli.Command{
	Name:        "launch",
	Usage:       "letmecook launch my-session --repo api=https://example.com/api.git",
	Description: "Clone the session's repositories, install dependencies and start the agent.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      sessionArg,
			UsageText: "SESSION",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  agentFlag,
			Usage: "Agent command to start once the workspace is ready",
			Value: "claude",
		},
		&cli.StringFlag{
			Name:  workspaceFlag,
			Usage: "Workspace directory, defaults to ./<session> (new sessions only)",
		},
		&cli.StringSliceFlag{
			Name:  repoFlag,
			Usage: "Repository to clone as name=url, repeatable (new sessions only)",
		},
		&cli.IntFlag{
			Name:  outputLinesFlag,
			Usage: "Trailing command output lines to show per task",
			Value: 5,
		},
		&cli.BoolFlag{
			Name:  noAgentFlag,
			Usage: "Prepare the workspace but do not start the agent",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg(sessionArg)
	if name == "" {
		return cli.Exit("Please provide a session name", 1)
	}

	state, err := cmdstate.From(ctx)
	if err != nil {
		return err
	}

	sess, err := loadOrCreate(cmd, state, name)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if prior, lerr := state.Registry.List(ctx, sess.Name); lerr == nil && len(prior) > 0 {
		fmt.Fprintf(cmd.ErrWriter,
			"warning: %d background process(es) from an earlier launch of %q may still be running, see `letmecook ps --session %s`\n",
			len(prior), sess.Name, sess.Name)
	}

	outputLines := int(cmd.Int(outputLinesFlag))

	cloneResults, err := runBatch(ctx, state, "cloning repositories", workspace.CloneTasks(sess), interactive.Options{
		ShowOutput:      true,
		OutputLines:     outputLines,
		AllowAbort:      true,
		AllowSkip:       true,
		AllowBackground: true,
		SessionName:     sess.Name,
	})
	if err != nil {
		return err
	}

	osFs := afero.NewOsFs()
	if err := workspace.CleanupFailedClones(osFs, sess, cloneResults); err != nil {
		ctxlog.Warn(ctx, "failed to clean up cancelled clones", "error", err)
	}

	if aborted(cloneResults) {
		return cli.Exit("launch aborted", 1)
	}

	installTasks, err := workspace.InstallTasks(osFs, sess)
	if err != nil {
		return err
	}

	installResults, err := runBatch(ctx, state, "installing dependencies", installTasks, interactive.Options{
		ShowOutput:  true,
		OutputLines: outputLines,
		AllowAbort:  true,
		AllowSkip:   true,
	})
	if err != nil {
		return err
	}

	if aborted(installResults) {
		return cli.Exit("launch aborted", 1)
	}

	reportFailures(cmd, cloneResults, installResults)

	if bg := len(cloneResults.Backgrounded()); bg > 0 {
		fmt.Fprintf(cmd.Writer, "%d clone(s) still running in the background, check `letmecook ps`\n", bg)
	}

	if cmd.Bool(noAgentFlag) {
		return nil
	}

	return startAgent(ctx, sess)
}

// loadOrCreate loads the named session, or creates and saves it when --repo
// flags describe a new one.
func loadOrCreate(cmd *cli.Command, state *cmdstate.State, name string) (*session.Session, error) {
	sess, err := state.Sessions.Load(name)

	switch {
	case err == nil:
		if len(cmd.StringSlice(repoFlag)) > 0 {
			return nil, fmt.Errorf("session %q already exists, its repositories come from the saved manifest", name)
		}

		return sess, nil

	case errors.Is(err, session.ErrNotFound):
		repos, perr := parseRepos(cmd.StringSlice(repoFlag))
		if perr != nil {
			return nil, perr
		}

		if len(repos) == 0 {
			return nil, fmt.Errorf("session %q does not exist, pass --repo name=url to create it", name)
		}

		dir := cmd.String(workspaceFlag)
		if dir == "" {
			wd, werr := os.Getwd()
			if werr != nil {
				return nil, werr
			}

			dir = filepath.Join(wd, name)
		}

		sess = session.New(name, cmd.String(agentFlag), dir, repos)
		if err := state.Sessions.Save(sess); err != nil {
			return nil, err
		}

		return sess, nil

	default:
		return nil, err
	}
}

func parseRepos(specs []string) ([]session.RepoRef, error) {
	repos := make([]session.RepoRef, 0, len(specs))

	for _, spec := range specs {
		name, url, ok := strings.Cut(spec, "=")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadRepoSpec, spec)
		}

		repos = append(repos, session.RepoRef{Name: name, URL: url})
	}

	return repos, nil
}

// runBatch executes the tasks through the orchestrator, on the terminal UI
// when stdout is a TTY and on the plain writer display otherwise.
func runBatch(ctx context.Context, state *cmdstate.State, title string, tasks []interactive.Task, opts interactive.Options) (interactive.Results, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	orch := &interactive.Orchestrator{
		Spawner:  spawn.ExecSpawner{},
		Registry: state.Registry,
	}

	if !tui.IsTTY(os.Stdout) {
		orch.Display = tui.NewWriterDisplay(os.Stdout)

		return orch.RunBatch(ctx, tasks, opts)
	}

	ui := tui.NewUI(title, tasks, helpLine(opts, len(tasks)))
	orch.Display = ui
	orch.Keys = ui.Model().Keys()

	return ui.Run(ctx, func(ctx context.Context) (interactive.Results, error) {
		return orch.RunBatch(ctx, tasks, opts)
	})
}

func helpLine(opts interactive.Options, taskCount int) string {
	var parts []string

	if opts.AllowAbort {
		parts = append(parts, "q to abort")
	}

	if opts.AllowSkip && taskCount > 1 {
		parts = append(parts, "s to skip")
	}

	if opts.AllowBackground {
		parts = append(parts, "b to background")
	}

	if len(parts) == 0 {
		return ""
	}

	return "press " + strings.Join(parts, ", ")
}

func aborted(results interactive.Results) bool {
	for _, res := range results {
		if res.Outcome == interactive.OutcomeAborted {
			return true
		}
	}

	return false
}

func reportFailures(cmd *cli.Command, batches ...interactive.Results) {
	for _, results := range batches {
		for _, res := range results.Failed() {
			fmt.Fprintf(cmd.ErrWriter, "%s failed: %s\n", res.Task.Label, res.ErrMessage)
		}
	}
}

// startAgent replaces the orchestrated batches with the interactive agent
// process, wired straight to the user's terminal.
func startAgent(ctx context.Context, sess *session.Session) error {
	argv := strings.Fields(sess.Agent)
	if len(argv) == 0 {
		return cli.Exit("session has no agent command", 1)
	}

	ctxlog.Info(ctx, "starting agent", "agent", sess.Agent, "workspace", sess.Workspace)

	agent := exec.CommandContext(ctx, argv[0], argv[1:]...)
	agent.Dir = sess.Workspace
	agent.Stdin = os.Stdin
	agent.Stdout = os.Stdout
	agent.Stderr = os.Stderr

	if err := agent.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return cli.Exit("", exitErr.ExitCode())
		}

		return fmt.Errorf("starting agent %q: %w", sess.Agent, err)
	}

	return nil
}
