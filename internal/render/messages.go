package render

// Messages posted to the worker. They are never mutated after posting.

type message interface{}

// addMsg is sent when a line is created.
type addMsg struct {
	line *Line
}

// updateMsg is sent when a line's text is set.
type updateMsg struct {
	line *Line
	text string
}

// completeMsg is sent when a line is completed.
type completeMsg struct {
	line       *Line
	finalPrint bool
}

// tickMsg is sent once per frame interval.
type tickMsg struct{}

// shutdownMsg is the last message a worker ever receives.
type shutdownMsg struct{}
