package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/henri123lemoine/liveline/internal/debug"
	"github.com/henri123lemoine/liveline/internal/term"
)

// DefaultInterval is the default time between frames (20 frames a second).
const DefaultInterval = 50 * time.Millisecond

// ErrInvalidInterval is returned by New for a non-positive frame interval.
var ErrInvalidInterval = errors.New("invalid frame interval")

// Renderer owns a live block of lines on an output stream.
type Renderer struct {
	out  *term.CharsetWriter
	lock sync.Locker
	log  *debug.Logger

	mbox      *mailbox
	ticker    Ticker
	stopTicks chan struct{}
	done      chan struct{}

	errMu sync.Mutex
	err   error

	shutdownOnce sync.Once
	shutdownErr  error

	// Owned by the worker goroutine.
	screen *screen
	buf    bytes.Buffer
	frames int
}

type options struct {
	interval  time.Duration
	lock      sync.Locker
	newTicker func(time.Duration) Ticker
	charset   string
	detect    bool
	log       *debug.Logger
}

// Option configures a Renderer.
type Option func(*options)

// WithInterval sets the frame interval.
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithLocker sets the lock held while a frame is written. Share it with
// any other code writing to the same stream. Defaults to term.StdoutLock.
func WithLocker(l sync.Locker) Option {
	return func(o *options) { o.lock = l }
}

// WithTicker replaces the clock that drives frames.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(o *options) { o.newTicker = newTicker }
}

// WithCharset sets the output charset. Without it the charset is taken
// from the locale environment, falling back to UTF-8.
func WithCharset(charset string) Option {
	return func(o *options) {
		o.charset = charset
		o.detect = false
	}
}

// WithLogger sets the debug logger. Defaults to debug.Default().
func WithLogger(l *debug.Logger) Option {
	return func(o *options) { o.log = l }
}

// New starts a renderer writing frames to w.
func New(w io.Writer, opts ...Option) (*Renderer, error) {
	o := options{
		interval:  DefaultInterval,
		lock:      term.StdoutLock,
		newTicker: newTimeTicker,
		detect:    true,
		log:       debug.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.interval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, o.interval)
	}
	if w == nil {
		return nil, errors.New("render: nil writer")
	}
	if o.lock == nil {
		o.lock = term.StdoutLock
	}
	if o.detect {
		o.charset = term.LocaleCharset()
	}

	r := &Renderer{
		out:       term.NewCharsetWriter(w, o.charset),
		lock:      o.lock,
		log:       o.log.With("component", "render"),
		mbox:      newMailbox(),
		ticker:    o.newTicker(o.interval),
		stopTicks: make(chan struct{}),
		done:      make(chan struct{}),
		screen:    newScreen(),
	}
	r.log.Log("renderer started", "interval", o.interval, "charset", r.out.Charset())

	go r.forwardTicks()
	go r.run()
	return r, nil
}

// CreateLine adds an empty line to the live block. It never fails: after
// Shutdown has begun it returns a handle that ignores every call.
// Unknown placements are treated as Natural.
func (r *Renderer) CreateLine(p Placement) *Line {
	if !p.valid() {
		p = Natural
	}
	l := &Line{r: r, placement: p}
	if !r.mbox.post(addMsg{line: l}) {
		l.r = nil
	}
	return l
}

// Print writes text once above the live block as permanent output.
func (r *Renderer) Print(text string) {
	l := r.CreateLine(Natural)
	l.SetText(text)
	l.Complete(true)
}

// Err returns the error that stopped the worker, if any.
func (r *Renderer) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Done is closed when the worker has stopped, after Shutdown or a failed
// write.
func (r *Renderer) Done() <-chan struct{} {
	return r.done
}

// Shutdown stops frame ticks, waits for every call made before it to be
// applied, paints a final frame and releases the output. It returns the
// worker's error, if any. Later calls return the same result.
func (r *Renderer) Shutdown() error {
	r.shutdownOnce.Do(func() {
		r.ticker.Stop()
		close(r.stopTicks)

		r.mbox.close(shutdownMsg{})
		<-r.done

		r.lock.Lock()
		closeErr := r.out.Close()
		r.lock.Unlock()

		r.shutdownErr = r.Err()
		if r.shutdownErr == nil && closeErr != nil {
			r.shutdownErr = fmt.Errorf("render: flush output: %w", closeErr)
		}
		r.log.Log("renderer stopped", "frames", r.frames, "err", r.shutdownErr)
	})
	return r.shutdownErr
}

func (r *Renderer) forwardTicks() {
	for {
		select {
		case <-r.ticker.C():
			if !r.mbox.post(tickMsg{}) {
				return
			}
		case <-r.stopTicks:
			return
		}
	}
}

// run is the worker loop. It is the only code touching r.screen and the
// output stream.
func (r *Renderer) run() {
	defer close(r.done)

	for {
		for _, msg := range r.mbox.take() {
			if stop := r.handle(msg); stop {
				return
			}
		}
	}
}

func (r *Renderer) handle(msg message) (stop bool) {
	switch m := msg.(type) {
	case addMsg:
		r.screen.add(m.line)
	case updateMsg:
		r.screen.update(m.line, m.text)
	case completeMsg:
		r.screen.complete(m.line, m.finalPrint)
	case tickMsg:
		if r.screen.dirty {
			return r.flush() != nil
		}
	case shutdownMsg:
		if r.screen.dirty {
			_ = r.flush()
		}
		return true
	}
	return false
}

// flush paints a frame and writes it in a single call under the shared
// lock. A failed write stops the worker for good.
func (r *Renderer) flush() error {
	r.buf.Reset()
	r.screen.repaint(&r.buf)

	r.lock.Lock()
	n, err := r.out.Write(r.buf.Bytes())
	r.lock.Unlock()

	if err == nil && n < r.buf.Len() {
		err = io.ErrShortWrite
	}
	if err != nil {
		r.fail(fmt.Errorf("render: write frame: %w", err))
		return err
	}

	r.frames++
	return nil
}

func (r *Renderer) fail(err error) {
	r.errMu.Lock()
	r.err = err
	r.errMu.Unlock()

	r.mbox.close(nil)
	r.log.Error("renderer stopped on output failure", err)
}
