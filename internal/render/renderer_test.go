package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// manualTicker delivers a tick each time tick is called.
type manualTicker struct {
	c chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{c: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.c }
func (m *manualTicker) Stop()               {}
func (m *manualTicker) tick()               { m.c <- time.Now() }

// frameRecorder records each Write as one frame.
type frameRecorder struct {
	mu     sync.Mutex
	frames []string
	err    error
}

func (f *frameRecorder) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.frames = append(f.frames, string(p))
	return len(p), nil
}

func (f *frameRecorder) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.frames...)
}

func (f *frameRecorder) waitFrames(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if frames := f.snapshot(); len(frames) >= n {
			return frames
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, got %d", n, len(f.snapshot()))
	return nil
}

func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *frameRecorder, *manualTicker) {
	t.Helper()
	out := &frameRecorder{}
	ticker := newManualTicker()
	opts = append([]Option{
		WithTicker(func(time.Duration) Ticker { return ticker }),
		WithLocker(&sync.Mutex{}),
		WithCharset(""),
	}, opts...)

	r, err := New(out, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, out, ticker
}

func TestNewRejectsInvalidInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		_, err := New(&frameRecorder{}, WithInterval(d))
		if !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("New(interval=%v) error = %v, want ErrInvalidInterval", d, err)
		}
	}
}

func TestProgressLineCompletesToScrollback(t *testing.T) {
	r, out, ticker := newTestRenderer(t)

	l := r.CreateLine(Natural)
	l.SetText("50%")
	l.SetText("100%")
	l.Complete(true)

	if frames := out.snapshot(); len(frames) != 0 {
		t.Fatalf("output before first tick: %q", frames)
	}

	ticker.tick()
	frames := out.waitFrames(t, 1)

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	expected := "\r\x1b[0J100%\n"
	if frames[0] != expected {
		t.Errorf("frame = %q, want %q", frames[0], expected)
	}
	if got := out.snapshot(); len(got) != 1 {
		t.Errorf("frames after shutdown = %d, want 1 (nothing left to paint)", len(got))
	}
	if r.screen.prevCount != 0 {
		t.Errorf("prevCount = %d, want 0", r.screen.prevCount)
	}
	if len(r.screen.records) != 0 {
		t.Errorf("records = %d, want 0", len(r.screen.records))
	}
	if l.Text() != "100%" {
		t.Errorf("Text() = %q, want %q", l.Text(), "100%")
	}
}

func TestTickWithoutChangesPaintsNothing(t *testing.T) {
	r, out, ticker := newTestRenderer(t)
	defer r.Shutdown()

	l := r.CreateLine(Natural)
	l.SetText("steady")
	ticker.tick()
	out.waitFrames(t, 1)

	ticker.tick()
	ticker.tick()
	l.SetText("moved")
	ticker.tick()
	frames := out.waitFrames(t, 2)

	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	expected := "\x1b[1A\r\x1b[0J\x1b[2Kmoved\n"
	if frames[1] != expected {
		t.Errorf("second frame = %q, want %q", frames[1], expected)
	}
}

func TestFinalPrintAppearsOnce(t *testing.T) {
	r, out, ticker := newTestRenderer(t)
	defer r.Shutdown()

	a := r.CreateLine(Natural)
	a.SetText("alpha")
	ticker.tick()
	out.waitFrames(t, 1)

	a.Complete(true)
	ticker.tick()
	out.waitFrames(t, 2)

	b := r.CreateLine(Natural)
	b.SetText("beta")
	ticker.tick()
	frames := out.waitFrames(t, 3)

	if frames[1] != "\x1b[1A\r\x1b[0Jalpha\n" {
		t.Errorf("completion frame = %q", frames[1])
	}
	if strings.Contains(frames[2], "alpha") {
		t.Errorf("completed line redrawn: %q", frames[2])
	}
}

func TestSilentCompletionNeverPrinted(t *testing.T) {
	r, out, ticker := newTestRenderer(t)

	hidden := r.CreateLine(Natural)
	hidden.SetText("hidden")
	hidden.Complete(false)

	shown := r.CreateLine(Natural)
	shown.SetText("shown")
	ticker.tick()
	out.waitFrames(t, 1)

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	for _, frame := range out.snapshot() {
		if strings.Contains(frame, "hidden") {
			t.Errorf("silently completed line printed: %q", frame)
		}
	}
}

func TestShutdownDrainsQueuedCalls(t *testing.T) {
	r, out, _ := newTestRenderer(t)

	bottom := r.CreateLine(Bottom)
	natural := r.CreateLine(Natural)
	top := r.CreateLine(Top)
	bottom.SetText("summary")
	natural.SetText("working")
	top.SetText("header")
	r.Print("started")

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	frames := out.snapshot()
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want exactly one final frame", len(frames))
	}
	expected := "\r\x1b[0Jstarted\n\x1b[2Kheader\n\x1b[2Kworking\n\x1b[2Ksummary\n"
	if frames[0] != expected {
		t.Errorf("final frame = %q, want %q", frames[0], expected)
	}
}

func TestCallsAfterShutdownAreIgnored(t *testing.T) {
	r, out, _ := newTestRenderer(t)

	l := r.CreateLine(Natural)
	l.SetText("before")

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	before := out.snapshot()

	l.SetText("after")
	l.Complete(true)
	late := r.CreateLine(Top)
	late.SetText("late")
	late.Complete(true)
	r.Print("late print")

	if err := r.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}

	if l.Text() != "before" {
		t.Errorf("Text() after shutdown = %q, want %q", l.Text(), "before")
	}
	if late.Text() != "" {
		t.Errorf("late handle Text() = %q, want empty", late.Text())
	}
	if after := out.snapshot(); len(after) != len(before) {
		t.Errorf("output changed after shutdown: %q", after[len(before):])
	}
}

func TestConcurrentProducers(t *testing.T) {
	r, out, ticker := newTestRenderer(t)

	stopTicks := make(chan struct{})
	ticksDone := make(chan struct{})
	go func() {
		defer close(ticksDone)
		for {
			select {
			case <-stopTicks:
				return
			default:
				ticker.tick()
			}
		}
	}()

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := r.CreateLine(Placement(i % 3))
			for step := 0; step < 50; step++ {
				l.SetText(fmt.Sprintf("worker-%d step %d", i, step))
			}
			l.SetText(fmt.Sprintf("worker-%d done", i))
			l.Complete(true)
		}(i)
	}
	wg.Wait()

	close(stopTicks)
	<-ticksDone

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	all := strings.Join(out.snapshot(), "")
	for i := 0; i < workers; i++ {
		final := fmt.Sprintf("worker-%d done\n", i)
		// Scrollback lines follow the erase or another scrollback line;
		// live lines always follow an erase-line sequence.
		if n := strings.Count(all, "\x1b[0J"+final) + strings.Count(all, "\n"+final); n != 1 {
			t.Errorf("%q printed to scrollback %d times, want 1", strings.TrimSpace(final), n)
		}
	}
	if r.screen.prevCount != 0 || len(r.screen.records) != 0 {
		t.Errorf("live block not empty after all lines completed: prevCount=%d records=%d",
			r.screen.prevCount, len(r.screen.records))
	}
}

func TestWriteFailureStopsRenderer(t *testing.T) {
	r, out, ticker := newTestRenderer(t)
	broken := errors.New("broken pipe")
	out.err = broken

	l := r.CreateLine(Natural)
	l.SetText("x")
	ticker.tick()

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("renderer did not stop after write failure")
	}

	if !errors.Is(r.Err(), broken) {
		t.Errorf("Err() = %v, want %v", r.Err(), broken)
	}

	// Calls after the failure are ignored.
	l.SetText("y")
	r.CreateLine(Top).SetText("z")

	if err := r.Shutdown(); !errors.Is(err, broken) {
		t.Errorf("Shutdown() = %v, want %v", err, broken)
	}
}

// heldLocker records whether it is held.
type heldLocker struct {
	mu   sync.Mutex
	held bool
}

func (h *heldLocker) Lock()   { h.mu.Lock(); h.held = true }
func (h *heldLocker) Unlock() { h.held = false; h.mu.Unlock() }

type lockCheckingWriter struct {
	lock   *heldLocker
	writes int
	bad    int
}

func (w *lockCheckingWriter) Write(p []byte) (int, error) {
	w.writes++
	if !w.lock.held {
		w.bad++
	}
	return len(p), nil
}

func TestFrameWrittenUnderSharedLock(t *testing.T) {
	lock := &heldLocker{}
	w := &lockCheckingWriter{lock: lock}

	r, err := New(w, WithLocker(lock), WithCharset(""), WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		l := r.CreateLine(Natural)
		l.SetText(fmt.Sprintf("line %d", i))
		time.Sleep(2 * time.Millisecond)
		l.Complete(i%2 == 0)
	}
	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if w.writes == 0 {
		t.Fatal("no frames written")
	}
	if w.bad != 0 {
		t.Errorf("%d of %d writes happened without the shared lock", w.bad, w.writes)
	}
}

func TestCharsetTranscoding(t *testing.T) {
	r, out, _ := newTestRenderer(t, WithCharset("ISO-8859-1"))

	r.Print("caf\u00e9")
	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	all := strings.Join(out.snapshot(), "")
	if !strings.Contains(all, "caf\xe9\n") {
		t.Errorf("output not transcoded to latin-1: %q", all)
	}
}

func TestTranscodedFrameIsSingleWrite(t *testing.T) {
	r, out, ticker := newTestRenderer(t, WithCharset("ISO-8859-1"))

	text := strings.Repeat("\u00e9", 60)
	for range 100 {
		r.CreateLine(Natural).SetText(text)
	}
	ticker.tick()
	out.waitFrames(t, 1)

	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	frames := out.snapshot()
	if len(frames) != 1 {
		t.Fatalf("writes for one frame = %d, want 1", len(frames))
	}
	if len(frames[0]) <= 4096 {
		t.Fatalf("frame is %d bytes; want one larger than 4096", len(frames[0]))
	}
	if got := strings.Count(frames[0], "\xe9"); got != 6000 {
		t.Errorf("latin-1 characters in frame = %d, want 6000", got)
	}
}

func TestUnknownPlacementIsNatural(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	defer r.Shutdown()

	if p := r.CreateLine(Placement(42)).Placement(); p != Natural {
		t.Errorf("Placement() = %v, want natural", p)
	}
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		in       string
		expected Placement
		wantErr  bool
	}{
		{"", Natural, false},
		{"natural", Natural, false},
		{"TOP", Top, false},
		{" bottom ", Bottom, false},
		{"middle", Natural, true},
	}

	for _, tt := range tests {
		got, err := ParsePlacement(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlacement(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParsePlacement(%q) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}
