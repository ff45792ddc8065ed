package render

import "sync"

// Line is a caller's handle to one live line. It is safe for concurrent
// use. Handles are compared by identity; two lines with equal text are
// still different lines.
type Line struct {
	r         *Renderer
	placement Placement

	mu        sync.Mutex
	text      string
	completed bool
}

// Text returns the text most recently set on the line.
func (l *Line) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// Placement returns the block the line is drawn in.
func (l *Line) Placement() Placement {
	return l.placement
}

// SetText replaces the line's text. It never blocks on rendering; the
// latest text set before a frame is the one drawn.
func (l *Line) SetText(text string) {
	if l.r == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.completed {
		return
	}
	if l.r.mbox.post(updateMsg{line: l, text: text}) {
		l.text = text
	}
}

// Complete removes the line from the live block. With finalPrint its last
// text is printed once above the block as permanent output; without it the
// line disappears. Only the first call has an effect.
func (l *Line) Complete(finalPrint bool) {
	if l.r == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.completed {
		return
	}
	if l.r.mbox.post(completeMsg{line: l, finalPrint: finalPrint}) {
		l.completed = true
	}
}
