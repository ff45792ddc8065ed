// Package ui provides the styled pieces callers put on live lines.
//
// It contains Lipgloss style definitions and status symbols, spinner frames
// and progress bars from Bubbles. Everything here returns plain strings;
// nothing writes to the terminal.
package ui
