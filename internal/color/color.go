// Package color styles terminal output. Every helper returns its input
// unchanged when Enabled is false, so callers never need to guard.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Enabled is true when styled output is wanted. Call Init once at program
// start to detect it.
var Enabled bool

// Init enables styling unless NO_COLOR is set, TERM=dumb, or stdout is
// not a terminal.
func Init() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return
	}
	stat, err := os.Stdout.Stat()
	if err != nil {
		return
	}
	Enabled = stat.Mode()&os.ModeCharDevice != 0
}

var (
	bold   = lipgloss.NewStyle().Bold(true)
	dim    = lipgloss.NewStyle().Faint(true)
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func render(st lipgloss.Style, s string) string {
	if !Enabled || s == "" {
		return s
	}
	return st.Render(s)
}

func Bold(s string) string      { return render(bold, s) }
func Dim(s string) string       { return render(dim, s) }
func Red(s string) string       { return render(red, s) }
func Green(s string) string     { return render(green, s) }
func Yellow(s string) string    { return render(yellow, s) }
func Cyan(s string) string      { return render(cyan, s) }
func BoldRed(s string) string   { return render(red.Bold(true), s) }
func BoldGreen(s string) string { return render(green.Bold(true), s) }

// Outcome styles a run outcome: green when completed, yellow when
// interrupted, red when failed.
func Outcome(outcome, s string) string {
	switch outcome {
	case "completed":
		return Green(s)
	case "interrupted":
		return Yellow(s)
	case "failed":
		return BoldRed(s)
	default:
		return s
	}
}
