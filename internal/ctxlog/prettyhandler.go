// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrMarshalAttribute is returned when an attribute cannot be marshaled.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrWrite is returned when the log line cannot be written.
	ErrWrite = errors.New("error when writing log output")
)

var (
	timeStyle  = lipgloss.NewStyle().Faint(true)
	msgStyle   = lipgloss.NewStyle().Bold(true)
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// PrettyHandler is a slog handler that writes human-oriented, colourised
// log lines: a short timestamp, a coloured level, the message, then any
// attributes as indented JSON.
type PrettyHandler struct {
	opts  slog.HandlerOptions
	attrs []slog.Attr
	group string
	w     io.Writer
	mu    *sync.Mutex
	json  *colorjson.Formatter
}

// NewPrettyHandler creates a PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	formatter := colorjson.NewFormatter()
	formatter.Indent = 2

	return &PrettyHandler{
		opts: *opts,
		w:    w,
		mu:   &sync.Mutex{},
		json: formatter,
	}
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

// WithAttrs implements slog.Handler. Attribute keys are qualified with the
// group path current at the time they are added.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h

	pre := append([]slog.Attr{}, h.attrs...)

	for _, a := range attrs {
		a.Key = h.qualify(a.Key)
		pre = append(pre, a)
	}

	clone.attrs = pre

	return &clone
}

// WithGroup implements slog.Handler.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	clone := *h

	if clone.group == "" {
		clone.group = name
	} else {
		clone.group += "." + name
	}

	return &clone
}

// Handle implements slog.Handler.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))

	for _, a := range h.attrs {
		addAttr(attrs, a.Key, a.Value)
	}

	r.Attrs(func(a slog.Attr) bool {
		addAttr(attrs, h.qualify(a.Key), a.Value)

		return true
	})

	var attrText string

	if len(attrs) > 0 {
		b, err := h.json.Marshal(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}

		attrText = string(b)
	}

	out := strings.Builder{}
	out.WriteString(timeStyle.Render(r.Time.Format(TimeFormat)))
	out.WriteString(" ")
	out.WriteString(levelStyle(r.Level).Render(r.Level.String() + ":"))
	out.WriteString(" ")
	out.WriteString(msgStyle.Render(r.Message))

	if attrText != "" {
		out.WriteString(" ")
		out.WriteString(attrText)
	}

	out.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.w, out.String()); err != nil {
		return errors.Join(ErrWrite, err)
	}

	return nil
}

func (h *PrettyHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}

	return h.group + "." + key
}

func addAttr(attrs map[string]any, key string, value slog.Value) {
	v := value.Resolve()
	switch v.Kind() {
	case slog.KindAny:
		// Round-trip through JSON so colorjson gets plain maps and slices.
		b, err := json.Marshal(v.Any())
		if err != nil {
			attrs[key] = v.String()
			return
		}

		var plain any
		if err := json.Unmarshal(b, &plain); err != nil {
			attrs[key] = v.String()
			return
		}

		attrs[key] = plain
	default:
		attrs[key] = v.String()
	}
}

func levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level <= slog.LevelDebug:
		return debugStyle
	case level <= slog.LevelInfo:
		return infoStyle
	case level < slog.LevelError:
		return warnStyle
	default:
		return errorStyle
	}
}
