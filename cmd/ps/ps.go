// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ps implements the ps subcommand for inspecting and terminating
// background processes recorded in the ledger.
package ps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/TylerBrock/colorjson"
	"github.com/peterh/liner"
	"github.com/rustydotwtf/letmecook/cmd/cmdstate"
	"github.com/rustydotwtf/letmecook/internal/bgproc"
	"github.com/urfave/cli/v3"
)

const (
	jsonFlag    = "json"
	killFlag    = "kill"
	sessionFlag = "session"
)

// PsCmd lists and terminates background processes.
var PsCmd = &cli.Command{
	Name:        "ps",
	Usage:       "letmecook ps [--session NAME] [--json | --kill]",
	Description: "Show processes that were backgrounded during a launch and are believed to still be running.",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  jsonFlag,
			Usage: "Print the ledger as colored JSON",
		},
		&cli.BoolFlag{
			Name:  killFlag,
			Usage: "Terminate the listed processes after confirmation",
		},
		&cli.StringFlag{
			Name:  sessionFlag,
			Usage: "Only show processes belonging to this session",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	state, err := cmdstate.From(ctx)
	if err != nil {
		return err
	}

	entries, err := state.Registry.List(ctx, cmd.String(sessionFlag))
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.Writer, "no background processes")

		return nil
	}

	if cmd.Bool(jsonFlag) {
		return writeJSON(cmd, entries)
	}

	if err := writeTable(cmd, entries); err != nil {
		return err
	}

	if !cmd.Bool(killFlag) {
		return nil
	}

	ok, err := confirmKill(len(entries))
	if err != nil {
		return err
	}

	if !ok {
		fmt.Fprintln(cmd.Writer, "aborted")

		return nil
	}

	if err := state.Registry.KillAll(ctx, entries); err != nil {
		return fmt.Errorf("terminating background processes: %w", err)
	}

	fmt.Fprintf(cmd.Writer, "terminated %d process(es)\n", len(entries))

	return nil
}

func writeTable(cmd *cli.Command, entries []bgproc.Entry) error {
	w := tabwriter.NewWriter(cmd.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PID\tSESSION\tDESCRIPTION\tCOMMAND\tREGISTERED")

	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			e.PID, e.Session, e.Description, e.Command,
			e.RegisteredAt.Local().Format("2006-01-02 15:04:05"))
	}

	return w.Flush()
}

// writeJSON renders the ledger as colored JSON. The entries take a round
// trip through encoding/json because the formatter colors generic values,
// not structs.
func writeJSON(cmd *cli.Command, entries []bgproc.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}

	f := colorjson.NewFormatter()
	f.Indent = 2

	out, err := f.Marshal(generic)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Writer, string(out))

	return nil
}

func confirmKill(count int) (bool, error) {
	prompt := liner.NewLiner()
	defer prompt.Close() //nolint:errcheck

	prompt.SetCtrlCAborts(true)

	answer, err := prompt.Prompt(fmt.Sprintf("terminate %d process(es)? [y/N] ", count))
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return false, nil
		}

		return false, err
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes", nil
}
