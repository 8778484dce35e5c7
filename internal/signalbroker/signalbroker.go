// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS termination signals. The first signal
// of a given type is left for the interactive layer to handle gracefully
// (the batch runner turns it into an abort); a second signal of the same
// type cancels the root context and tears the process down.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustydotwtf/letmecook/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a channel receiving the given signals, defaulting to the
// usual termination set.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "subscribing to signals", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Watch monitors sigCh and cancels the context on the second signal of any
// one type. It returns when the channel is closed or the context is
// cancelled.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "received repeat signal, shutting down", "signal", sig.String())
			signal.Stop(sigCh)
			cancel()

			return
		}

		seen[sig] = struct{}{}

		ctxlog.Info(ctx, "received signal", "signal", sig.String())
	}
}
