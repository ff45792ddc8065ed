// Package term holds the terminal-facing primitives shared by the renderer
// and the CLI.
//
// It contains the exact ANSI escape sequences the renderer emits, the locks
// that serialize writers sharing one output stream (in-process and, through
// flock, across processes), a writer that transcodes UTF-8 to the locale's
// charset, and tty detection.
package term
