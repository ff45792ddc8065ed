package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner returns the spinner for a config name, defaulting to Dot.
func Spinner(name string) spinner.Spinner {
	switch name {
	case "line":
		return spinner.Line
	case "minidot":
		return spinner.MiniDot
	case "points":
		return spinner.Points
	case "meter":
		return spinner.Meter
	default:
		return spinner.Dot
	}
}

// SpinnerFrame returns the frame of s to show after elapsed time.
func SpinnerFrame(s spinner.Spinner, elapsed time.Duration) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if s.FPS <= 0 || elapsed < 0 {
		return s.Frames[0]
	}
	return s.Frames[int(elapsed/s.FPS)%len(s.Frames)]
}
