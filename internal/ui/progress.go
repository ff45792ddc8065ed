package ui

import (
	"github.com/charmbracelet/bubbles/progress"
)

// ProgressBar renders fixed-width progress bars as plain strings.
type ProgressBar struct {
	model progress.Model
}

// NewProgressBar creates a bar that is width characters wide, percentage
// included.
func NewProgressBar(width int) ProgressBar {
	return ProgressBar{
		model: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(width),
		),
	}
}

// View renders the bar at percent, a value between 0 and 1.
func (p ProgressBar) View(percent float64) string {
	return p.model.ViewAs(percent)
}

// Width returns the bar width.
func (p ProgressBar) Width() int {
	return p.model.Width
}
