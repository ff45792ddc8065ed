package render

import (
	"bytes"

	"github.com/henri123lemoine/liveline/internal/term"
)

// record is the worker's copy of a line.
type record struct {
	line       *Line
	text       string
	placement  Placement
	completed  bool
	finalPrint bool
}

// paint writes one frame to buf and returns the number of live lines in it.
//
// The frame first erases the prevCount lines of the previous live block,
// then prints lines completed with a final print (they scroll away and are
// never touched again), then the live lines in Top, Natural, Bottom order.
func paint(buf *bytes.Buffer, records []*record, prevCount int) int {
	buf.WriteString(term.CursorUp(prevCount))
	buf.WriteString(term.CarriageReturn)
	buf.WriteString(term.EraseBelow)

	for _, rec := range records {
		if rec.completed && rec.finalPrint {
			buf.WriteString(rec.text)
			buf.WriteByte('\n')
		}
	}

	count := 0
	for _, p := range []Placement{Top, Natural, Bottom} {
		for _, rec := range records {
			if rec.completed || rec.placement != p {
				continue
			}
			buf.WriteString(term.EraseLine)
			buf.WriteString(rec.text)
			buf.WriteByte('\n')
			count++
		}
	}
	return count
}

// screen is the worker-owned state of the live block.
type screen struct {
	records   []*record
	byLine    map[*Line]*record
	prevCount int
	dirty     bool
}

func newScreen() *screen {
	return &screen{byLine: make(map[*Line]*record)}
}

func (s *screen) add(l *Line) {
	if _, ok := s.byLine[l]; ok {
		return
	}
	rec := &record{line: l, placement: l.placement}
	s.records = append(s.records, rec)
	s.byLine[l] = rec
	s.dirty = true
}

func (s *screen) update(l *Line, text string) {
	rec, ok := s.byLine[l]
	if !ok || rec.completed {
		return
	}
	rec.text = text
	s.dirty = true
}

func (s *screen) complete(l *Line, finalPrint bool) {
	rec, ok := s.byLine[l]
	if !ok || rec.completed {
		return
	}
	rec.completed = true
	rec.finalPrint = finalPrint
	s.dirty = true
}

// repaint paints a frame into buf and drops completed records.
func (s *screen) repaint(buf *bytes.Buffer) {
	s.prevCount = paint(buf, s.records, s.prevCount)

	live := s.records[:0]
	for _, rec := range s.records {
		if rec.completed {
			delete(s.byLine, rec.line)
			continue
		}
		live = append(live, rec)
	}
	for i := len(live); i < len(s.records); i++ {
		s.records[i] = nil
	}
	s.records = live
	s.dirty = false
}
