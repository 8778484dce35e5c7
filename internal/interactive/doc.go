// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

// Package interactive runs an ordered batch of external commands while a
// human stays in control: at any point the user can abort the whole batch,
// skip the current task, or background the running process and keep going.
// Live output is streamed to a display sink as a bounded trailing window,
// and any process that was backgrounded is recorded in a durable registry
// so it can be found and terminated later, even after a restart.
//
// Tasks run strictly sequentially. Every scheduled task produces exactly one
// result, in input order, including tasks that were never spawned because an
// earlier abort made the batch sticky-cancelled.
package interactive
