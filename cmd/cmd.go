// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"context"
	"os"

	"github.com/rustydotwtf/letmecook"
	"github.com/rustydotwtf/letmecook/cmd/cmdstate"
	"github.com/rustydotwtf/letmecook/cmd/launch"
	"github.com/rustydotwtf/letmecook/cmd/ps"
	"github.com/rustydotwtf/letmecook/cmd/sessions"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		launch.LaunchCmd,
		sessions.SessionsCmd,
		ps.PsCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "letmecook",
	Version:   letmecook.Version,
	Description: `Letmecook is a workspace manager for AI coding agents. It keeps named
sessions that describe which repositories a workspace needs, prepares the
workspace by cloning and installing them with live progress and interactive
controls (abort, skip, send to background), and then starts the agent inside
it. Clones sent to the background are tracked across restarts and can be
inspected or terminated with the ps subcommand.`,
	Usage:     "letmecook launch my-session",
	Copyright: "Copyright (c) rustydotwtf 2026. All rights reserved.",
	Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
		return cmdstate.Init(ctx)
	},
	After: func(ctx context.Context, _ *cli.Command) error {
		return cmdstate.Close(ctx)
	},
	EnableShellCompletion: true,
}
