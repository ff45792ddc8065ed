package term

import "strconv"

// Escape sequences written by the renderer. Only these are assumed to be
// supported by the terminal.
const (
	CarriageReturn = "\r"

	// EraseBelow erases from the cursor to the end of the screen.
	EraseBelow = "\x1b[0J"

	// EraseLine erases the whole current line.
	EraseLine = "\x1b[2K"
)

// CursorUp returns the sequence moving the cursor up n lines, or "" if n <= 0.
func CursorUp(n int) string {
	if n <= 0 {
		return ""
	}
	return "\x1b[" + strconv.Itoa(n) + "A"
}
