// Package ui handles styling of live lines.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary = lipgloss.Color("4")   // Blue
	ColorSuccess = lipgloss.Color("2")   // Green
	ColorWarning = lipgloss.Color("3")   // Yellow
	ColorDanger  = lipgloss.Color("1")   // Red
	ColorMuted   = lipgloss.Color("245") // Light gray
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	NameStyle = lipgloss.NewStyle().
			Bold(true)

	RunningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	DoneStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	FailedStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Symbols
const (
	SymbolDone    = "✓"
	SymbolFailed  = "✗"
	SymbolPending = "·"
)
