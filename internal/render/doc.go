// Package render draws a live block of status lines at the bottom of a
// terminal.
//
// Callers create a Line per unit of work, set its text from any goroutine,
// and complete it when done. A single worker goroutine owns every line and
// the output stream: all calls are posted to it as messages, and it repaints
// at most once per frame interval, only when something changed. Completed
// lines can be printed once more as permanent scrollback above the live
// block.
//
// The main type is Renderer. Calls made after Shutdown has begun are ignored.
package render
