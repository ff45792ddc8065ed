package column

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"
)

// ErrInvalidWidth is returned for negative, zero-maximum or inverted widths.
var ErrInvalidWidth = errors.New("invalid column width")

// Column is one cell of a row.
type Column struct {
	Text string
	Min  int
	Max  int

	// TruncateRight drops the right side of overlong text, keeping the
	// start. When false the start is dropped and the end is kept.
	TruncateRight bool
}

// Format truncates or pads text to between minWidth and maxWidth visible
// characters. Overlong text keeps its leftmost maxWidth characters when
// truncateRight is set and its rightmost ones otherwise. Short text is
// padded with spaces on the right, inside any trailing style sequences.
func Format(text string, minWidth, maxWidth int, truncateRight bool) (string, error) {
	if err := checkWidths(minWidth, maxWidth); err != nil {
		return "", err
	}

	lead, body, trail := splitStyle(text)
	visible := ansi.Strip(body)
	n := uniseg.GraphemeClusterCount(visible)

	switch {
	case n > maxWidth:
		if truncateRight {
			body = keepLeft(visible, maxWidth)
		} else {
			body = keepRight(visible, n, maxWidth)
		}
	case n < minWidth:
		body += strings.Repeat(" ", minWidth-n)
	}

	return lead + body + trail, nil
}

// Fit formats text to exactly width visible characters.
func Fit(text string, width int, truncateRight bool) (string, error) {
	return Format(text, width, width, truncateRight)
}

// Row formats each column and joins them with sep.
func Row(sep string, cols ...Column) (string, error) {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cell, err := Format(c.Text, c.Min, c.Max, c.TruncateRight)
		if err != nil {
			return "", fmt.Errorf("column %d: %w", i, err)
		}
		cells[i] = cell
	}
	return strings.Join(cells, sep), nil
}

// Width returns the number of user-perceived characters in text,
// ignoring escape sequences.
func Width(text string) int {
	return uniseg.GraphemeClusterCount(ansi.Strip(text))
}

func checkWidths(minWidth, maxWidth int) error {
	switch {
	case minWidth < 0:
		return fmt.Errorf("%w: min %d is negative", ErrInvalidWidth, minWidth)
	case maxWidth < 1:
		return fmt.Errorf("%w: max %d is not positive", ErrInvalidWidth, maxWidth)
	case minWidth > maxWidth:
		return fmt.Errorf("%w: min %d exceeds max %d", ErrInvalidWidth, minWidth, maxWidth)
	}
	return nil
}

// splitStyle separates the escape sequences at the start and the end of s
// from the content between them.
func splitStyle(s string) (lead, body, trail string) {
	var state byte
	i := 0
	for i < len(s) {
		seq, _, n, next := ansi.DecodeSequence(s[i:], state, nil)
		if n == 0 || !isEscape(seq) {
			break
		}
		state = next
		i += n
	}
	lead, rest := s[:i], s[i:]

	// Start of the final run of escape sequences, if any.
	runStart := -1
	for pos := 0; pos < len(rest); {
		seq, _, n, next := ansi.DecodeSequence(rest[pos:], state, nil)
		if n == 0 {
			break
		}
		if isEscape(seq) {
			if runStart < 0 {
				runStart = pos
			}
		} else {
			runStart = -1
		}
		state = next
		pos += n
	}
	if runStart < 0 {
		return lead, rest, ""
	}
	return lead, rest[:runStart], rest[runStart:]
}

func isEscape(seq string) bool {
	return len(seq) > 0 && seq[0] == ansi.ESC
}

func keepLeft(s string, count int) string {
	end := 0
	state := -1
	rest := s
	for i := 0; i < count && rest != ""; i++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		end += len(cluster)
	}
	return s[:end]
}

func keepRight(s string, total, count int) string {
	skip := total - count
	start := 0
	state := -1
	rest := s
	for i := 0; i < skip && rest != ""; i++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		start += len(cluster)
	}
	return s[start:]
}
