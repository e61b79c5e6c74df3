package log

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Warner prints non-fatal issues on the report stream.
type Warner struct {
	out     io.Writer
	enabled bool
	style   *color.Color
}

// NewWarner creates a Warner writing to out.
// Warnings are suppressed when the verbosity does not print reports.
func NewWarner(out io.Writer, verbosity Verbosity) *Warner {
	return &Warner{
		out:     out,
		enabled: verbosity.Reports(),
		style:   color.New(color.FgYellow),
	}
}

// Warnf formats, prints and returns a warning message.
// The message is returned even when printing is suppressed so callers can
// record it in the report.
func (w *Warner) Warnf(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if w == nil || !w.enabled || w.out == nil {
		return msg
	}
	_, _ = w.style.Fprintf(w.out, "  Warning: %s\n", msg) //nolint:errcheck // Best effort output
	return msg
}
