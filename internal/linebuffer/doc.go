// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package linebuffer consumes the output streams of a child process line by
// line while keeping a bounded trailing window of the most recent lines. The
// window is what gets painted next to a running task in the UI; the full
// accumulated output is kept for error-message extraction after the process
// exits. Consumption can be ended cooperatively via a stop predicate so that
// a backgrounded process is not held hostage by a blocked read.
package linebuffer
