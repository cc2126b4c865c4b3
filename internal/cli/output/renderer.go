// Package output renders query results and status lines for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how result rows are written.
type Mode string

// Output modes.
const (
	ModeTable    Mode = "table"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
	ModeMarkdown Mode = "md"
)

// Color settings accepted by NewRenderer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Renderer writes formatted output to a pair of writers.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	color  bool
	styles Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode, color string) *Renderer {
	return NewRendererWithTTY(out, errOut, IsTerminal(out), mode, color)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode, color string) *Renderer {
	if mode == "" {
		mode = ModeTable
	}
	enabled := useColor(color, isTTY)

	lr := lipgloss.NewRenderer(out)
	switch {
	case !enabled:
		lr.SetColorProfile(termenv.Ascii)
	case color == ColorAlways:
		lr.SetColorProfile(termenv.ANSI256)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		color:  enabled,
		styles: NewStyles(lr),
	}
}

func useColor(setting string, isTTY bool) bool {
	switch setting {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTTY && os.Getenv("NO_COLOR") == ""
	}
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Out returns the primary writer.
func (r *Renderer) Out() io.Writer { return r.out }

// ErrOut returns the diagnostic writer.
func (r *Renderer) ErrOut() io.Writer { return r.errOut }

// Mode returns the configured output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// ColorEnabled reports whether styles emit escape sequences.
func (r *Renderer) ColorEnabled() bool { return r.color }

// Styles returns the renderer's style set.
func (r *Renderer) Styles() Styles { return r.styles }

// Println writes a plain line to the primary writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the primary writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Success writes a success line.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("✓ "+msg))
}

// Warning writes a warning line.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Error writes an error line to the diagnostic writer.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+msg))
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	return WriteJSON(r.out, v)
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
