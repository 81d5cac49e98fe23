// Package term provides colors, icons and styled output shared by the logger
// and the CLI commands.
package term

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Reload  = "↻"
)

// Profile returns the color profile for w's environment. NO_COLOR forces Ascii.
func Profile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// NewOutput creates a termenv.Output using Profile.
func NewOutput(w io.Writer) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(Profile()), termenv.WithTTY(true))
}

// Printer writes styled result lines for CLI commands.
type Printer struct {
	w      io.Writer
	ok     lipgloss.Style
	fail   lipgloss.Style
	label  lipgloss.Style
	accent lipgloss.Style
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(Profile())
	return &Printer{
		w:      w,
		ok:     r.NewStyle().Foreground(Green),
		fail:   r.NewStyle().Foreground(Red),
		label:  r.NewStyle().Foreground(Slate),
		accent: r.NewStyle().Foreground(Iris).Bold(true),
	}
}

// Success prints a check-marked line.
func (p *Printer) Success(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, p.ok.Render(Check)+" "+fmt.Sprintf(format, args...))
}

// Failure prints a cross-marked line.
func (p *Printer) Failure(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, p.fail.Render(Cross)+" "+fmt.Sprintf(format, args...))
}

// Mapping prints "name → value" with name highlighted.
func (p *Printer) Mapping(name, value string) {
	_, _ = fmt.Fprintln(p.w, p.accent.Render(name)+" "+p.label.Render(Arrow)+" "+value)
}

// Reloaded prints a reload marker line.
func (p *Printer) Reloaded(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, p.accent.Render(Reload)+" "+fmt.Sprintf(format, args...))
}
