// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package console styles diagnostic output. Styling is a pure function of
// a Style value; nothing is configured process-wide.
package console

import (
	"bytes"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Style selects how diagnostic lines are rendered.
type Style struct {
	Color bool
}

func (s Style) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if s.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// Warn renders a warning.
func (s Style) Warn(text string) string { return s.paint(text, color.FgYellow) }

// Fail renders an error or failed item.
func (s Style) Fail(text string) string { return s.paint(text, color.FgRed, color.Bold) }

// Progress renders a progress line.
func (s Style) Progress(text string) string { return s.paint(text, color.FgCyan) }

// Summary renders a summary line.
func (s Style) Summary(text string) string { return s.paint(text, color.Bold) }

// Line styles one output line according to its leading keyword.
func (s Style) Line(line string) string {
	switch {
	case strings.HasPrefix(line, "warning:"):
		return s.Warn(line)
	case strings.HasPrefix(line, "failed:"), strings.HasPrefix(line, "error:"):
		return s.Fail(line)
	case strings.HasPrefix(line, "downloading:"):
		return s.Progress(line)
	case strings.HasPrefix(line, "Batch summary:"):
		return s.Summary(line)
	default:
		return line
	}
}

// Writer styles each line written through it. Writes are expected to end
// on line boundaries, as fmt.Fprintf calls with a trailing newline do.
type Writer struct {
	w     io.Writer
	style Style
}

// NewWriter returns a Writer that styles lines onto w.
func NewWriter(w io.Writer, style Style) *Writer {
	return &Writer{w: w, style: style}
}

func (cw *Writer) Write(p []byte) (int, error) {
	lines := bytes.SplitAfter(p, []byte("\n"))
	var b strings.Builder
	for _, l := range lines {
		if len(l) == 0 {
			continue
		}
		text := strings.TrimSuffix(string(l), "\n")
		b.WriteString(cw.style.Line(text))
		if len(text) < len(l) {
			b.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(cw.w, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}
