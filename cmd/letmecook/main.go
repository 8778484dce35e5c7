// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the letmecook command-line application.
package main

import (
	"context"
	"os"

	"github.com/rustydotwtf/letmecook/cmd"
	"github.com/rustydotwtf/letmecook/internal/ctxlog"
	"github.com/rustydotwtf/letmecook/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	if err := cmd.RootCmd.Run(ctx, os.Args); err != nil {
		ctxlog.Logger(ctx).Error("command failed", "error", err)
		os.Exit(1)
	}
}
