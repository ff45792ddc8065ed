// Package column formats text into fixed-width columns for terminal lines.
//
// Width is measured in grapheme clusters of the visible text, so escape
// sequences never count and multi-codepoint characters are never split.
// Style sequences at the very start and end of the text are kept around the
// adjusted content. Sequences in the interior survive only when the text
// needs no truncation; truncating drops them. Callers that need colored
// columns should style the whole cell, not parts of it.
//
// Invalid UTF-8 bytes have no width. Like interior sequences they are kept
// when the text fits and dropped when it is truncated, so sanitize input
// that may not be UTF-8 before formatting it.
package column
