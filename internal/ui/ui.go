// Package ui writes human-facing status lines (warnings, summaries) to
// stderr, colored according to the configured mode.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	// ColorAuto colors output when the writer is a color-capable terminal.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables all colored output.
	ColorNever
)

// ParseColorMode parses auto, always or never. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (expected auto, always, or never)", s)
	}
}

type contextKey struct{}

// UI prints status messages. Data never goes through it.
type UI struct {
	out   *termenv.Output
	color ColorMode
	quiet bool
}

// New creates a UI writing to w (os.Stderr when nil).
// NO_COLOR in the environment forces ColorNever.
func New(w io.Writer, mode ColorMode) *UI {
	if w == nil {
		w = os.Stderr
	}
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}

	var profile termenv.Profile
	switch mode {
	case ColorNever:
		profile = termenv.Ascii
	case ColorAlways:
		profile = termenv.ANSI256
	default:
		profile = termenv.NewOutput(w).EnvColorProfile()
	}

	return &UI{
		out:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		color: mode,
	}
}

// SetQuiet suppresses Info and Success lines. Warnings and errors still print.
func (u *UI) SetQuiet(quiet bool) {
	u.quiet = quiet
}

// Colored reports whether output carries ANSI color.
func (u *UI) Colored() bool {
	return u.out.Profile != termenv.Ascii
}

// WithUI returns a new context with the UI instance attached.
func WithUI(ctx context.Context, ui *UI) context.Context {
	return context.WithValue(ctx, contextKey{}, ui)
}

// FromContext returns the UI stored in ctx, or an auto-colored stderr UI.
func FromContext(ctx context.Context) *UI {
	if ui, ok := ctx.Value(contextKey{}).(*UI); ok {
		return ui
	}
	return New(os.Stderr, ColorAuto)
}

// Success prints a green line.
func (u *UI) Success(format string, args ...any) {
	if u.quiet {
		return
	}
	u.line("✓ ", termenv.ANSIGreen, format, args...)
}

// Warning prints a yellow line.
func (u *UI) Warning(format string, args ...any) {
	u.line("⚠ ", termenv.ANSIYellow, format, args...)
}

// Error prints a red line.
func (u *UI) Error(format string, args ...any) {
	u.line("✗ ", termenv.ANSIRed, format, args...)
}

// Info prints a blue line.
func (u *UI) Info(format string, args ...any) {
	if u.quiet {
		return
	}
	u.line("ℹ ", termenv.ANSIBlue, format, args...)
}

// Writer returns the underlying writer.
func (u *UI) Writer() io.Writer {
	return u.out
}

func (u *UI) line(prefix string, color termenv.ANSIColor, format string, args ...any) {
	msg := prefix + fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(msg).Foreground(color))
}
