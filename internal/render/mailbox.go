package render

import "sync"

// mailbox is an unbounded FIFO with a single consumer. Posting never
// waits for the consumer.
type mailbox struct {
	mu     sync.Mutex
	queue  []message
	closed bool
	wake   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

// post enqueues msg. It reports false if the mailbox is closed.
func (m *mailbox) post(msg message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return true
}

// close enqueues last, if non-nil, and rejects every later post.
// It reports false if the mailbox was already closed.
func (m *mailbox) close(last message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.closed = true
	if last != nil {
		m.queue = append(m.queue, last)
	}
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return true
}

// take blocks until at least one message is queued and returns all of
// them in posting order.
func (m *mailbox) take() []message {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			batch := m.queue
			m.queue = nil
			m.mu.Unlock()
			return batch
		}
		m.mu.Unlock()
		<-m.wake
	}
}
