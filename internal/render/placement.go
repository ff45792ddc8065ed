package render

import (
	"fmt"
	"strings"
)

// Placement selects the block a line is drawn in. Top lines are drawn
// first, then Natural lines, then Bottom lines, each in creation order.
type Placement int

const (
	Natural Placement = iota
	Top
	Bottom
)

// String returns the config name of the placement.
func (p Placement) String() string {
	switch p {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "natural"
	}
}

// ParsePlacement parses "top", "natural" or "bottom". Empty means Natural.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "natural":
		return Natural, nil
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	}
	return Natural, fmt.Errorf("unknown placement %q (expected top, natural, or bottom)", s)
}

func (p Placement) valid() bool {
	return p == Natural || p == Top || p == Bottom
}
