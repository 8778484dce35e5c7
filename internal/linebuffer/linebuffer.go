// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package linebuffer

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

const readChunkSize = 4096

// Reader splits one or more byte streams into lines and maintains a sliding
// window of the most recent non-empty trimmed lines.
//
// A single Reader may consume several streams concurrently (e.g. a process's
// stdout and stderr); completed lines are merged into the shared window in
// arrival order. Line-splitting state is local to each Consume call, so a
// partial line on one stream never bleeds into another.
type Reader struct {
	maxLines int
	onLine   func(line string)
	onWindow func(window []string)

	mu     sync.Mutex
	window []string
	full   bytes.Buffer
}

// Option configures a Reader.
type Option func(*Reader)

// WithLineFunc sets a callback invoked once per complete line.
func WithLineFunc(fn func(line string)) Option {
	return func(r *Reader) {
		r.onLine = fn
	}
}

// WithWindowFunc sets a callback invoked with a copy of the window after each
// appended line.
func WithWindowFunc(fn func(window []string)) Option {
	return func(r *Reader) {
		r.onWindow = fn
	}
}

// New creates a Reader keeping at most maxLines lines in its window.
// A maxLines of zero or less disables the window entirely.
func New(maxLines int, opts ...Option) *Reader {
	r := &Reader{maxLines: maxLines}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Consume reads src until end of stream or until shouldStop reports true.
// The predicate is polled before every read so that a caller can release the
// stream without waiting for the producing process to exit. It returns true
// if consumption was interrupted by the predicate rather than reaching the
// natural end of the stream.
//
// Read errors are treated as end of stream: the child may have been
// terminated mid-write, which is not this reader's problem to report.
func (r *Reader) Consume(src io.Reader, shouldStop func() bool) bool {
	buf := make([]byte, readChunkSize)

	var partial strings.Builder

	for {
		if shouldStop != nil && shouldStop() {
			return true
		}

		n, err := src.Read(buf)
		if n > 0 {
			r.ingest(buf[:n], &partial)
		}

		if err != nil {
			// A trailing line with no newline terminator still counts.
			if partial.Len() > 0 {
				r.mu.Lock()
				r.emitLine(partial.String())
				r.mu.Unlock()
			}

			return false
		}
	}
}

// ingest appends a chunk to the full output and emits any lines it completes.
// Line boundaries are any run of CR or LF characters, so CRLF counts once and
// blank lines are never emitted.
func (r *Reader) ingest(data []byte, partial *strings.Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.full.Write(data)

	for _, c := range data {
		if c == '\r' || c == '\n' {
			if partial.Len() > 0 {
				r.emitLine(partial.String())
				partial.Reset()
			}

			continue
		}

		partial.WriteByte(c)
	}
}

// emitLine must be called with the lock held.
func (r *Reader) emitLine(line string) {
	if r.onLine != nil {
		r.onLine(line)
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || r.maxLines <= 0 {
		return
	}

	r.window = append(r.window, trimmed)
	if len(r.window) > r.maxLines {
		// FIFO eviction, oldest first.
		r.window = r.window[1:]
	}

	if r.onWindow != nil {
		r.onWindow(r.snapshotLocked())
	}
}

func (r *Reader) snapshotLocked() []string {
	out := make([]string, len(r.window))
	copy(out, r.window)

	return out
}

// Window returns a copy of the current trailing window, most recent last.
func (r *Reader) Window() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

// FullOutput returns everything read so far, untrimmed.
func (r *Reader) FullOutput() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.full.String()
}
