// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sessions implements the sessions subcommand for listing and
// deleting saved session manifests.
package sessions

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/rustydotwtf/letmecook/cmd/cmdstate"
	"github.com/rustydotwtf/letmecook/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	nameArg   = "name"
	forceFlag = "force"
)

// SessionsCmd manages saved session manifests.
var SessionsCmd = &cli.Command{
	Name:        "sessions",
	Usage:       "letmecook sessions list",
	Description: "List and delete saved sessions.",
	Commands: []*cli.Command{
		{
			Name:        "list",
			Description: "List all saved sessions.",
			Action:      listAction,
		},
		{
			Name:        "delete",
			Description: "Delete a saved session. Refuses while the session still has background processes unless --force is given.",
			Arguments: []cli.Argument{
				&cli.StringArg{
					Name:      nameArg,
					UsageText: "SESSION",
					Config: cli.StringConfig{
						TrimSpace: true,
					},
				},
			},
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  forceFlag,
					Usage: "Terminate the session's background processes and delete anyway",
				},
			},
			Action: deleteAction,
		},
	},
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	state, err := cmdstate.From(ctx)
	if err != nil {
		return err
	}

	sessions, err := state.Sessions.List()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.Writer, "no sessions")

		return nil
	}

	w := tabwriter.NewWriter(cmd.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAGENT\tREPOS\tWORKSPACE\tCREATED")

	for _, sess := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			sess.Name, sess.Agent, len(sess.Repos), sess.Workspace,
			sess.CreatedAt.Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func deleteAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg(nameArg)
	if name == "" {
		return cli.Exit("Please provide a session name", 1)
	}

	state, err := cmdstate.From(ctx)
	if err != nil {
		return err
	}

	entries, err := state.Registry.List(ctx, name)
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		if !cmd.Bool(forceFlag) {
			return cli.Exit(fmt.Sprintf(
				"session %q still has %d background process(es), terminate them with `letmecook ps --kill` or pass --force",
				name, len(entries)), 1)
		}

		ctxlog.Info(ctx, "terminating background processes before delete", "session", name, "count", len(entries))

		if err := state.Registry.KillAll(ctx, entries); err != nil {
			return fmt.Errorf("terminating background processes for %q: %w", name, err)
		}
	}

	if err := state.Sessions.Delete(name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Writer, "deleted session %q\n", name)

	return nil
}
