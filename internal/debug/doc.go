// Package debug provides debug logging for liveline.
//
// When enabled via the --debug flag or log.debug_file, it writes structured
// records about renderer frames, worker failures and job lifecycles to a
// file, never to the terminal the renderer is drawing on.
package debug
