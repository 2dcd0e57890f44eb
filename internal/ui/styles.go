// Package ui holds the console decoration used by the installer: colored
// status glyphs and markdown rendering. Every helper is a pure string
// function; callers decide where the output goes.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Semantic colors.
var (
	Success     = lipgloss.Color("#8BC34A") // lime green
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
	Destructive = lipgloss.Color("#e53935")
	Muted       = lipgloss.Color("#7a8699")
)

var (
	greenStyle  = lipgloss.NewStyle().Foreground(Success)
	yellowStyle = lipgloss.NewStyle().Foreground(Warning)
	cyanStyle   = lipgloss.NewStyle().Foreground(Info)
	redStyle    = lipgloss.NewStyle().Foreground(Destructive)
	dimStyle    = lipgloss.NewStyle().Foreground(Muted).Faint(true)
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

func Green(s string) string  { return greenStyle.Render(s) }
func Yellow(s string) string { return yellowStyle.Render(s) }
func Cyan(s string) string   { return cyanStyle.Render(s) }
func Red(s string) string    { return redStyle.Render(s) }
func Dim(s string) string    { return dimStyle.Render(s) }
func Bold(s string) string   { return boldStyle.Render(s) }

// Check formats a completed step, with an optional dimmed note such as
// "(merged)".
func Check(item, note string) string {
	line := "  " + Green("✓") + " " + item
	if note != "" {
		line += " " + Dim(note)
	}
	return line
}

// Warn formats a non-fatal problem line.
func Warn(msg string) string {
	return "  " + Yellow("⚠") + " " + msg
}

// Banner formats a heading line.
func Banner(title string) string {
	return Bold(Cyan(title))
}
