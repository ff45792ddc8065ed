package term

import (
	"os"

	xterm "golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return xterm.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal behind f, or fallback
// when f is not a terminal.
func Width(f *os.File, fallback int) int {
	w, _, err := xterm.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
