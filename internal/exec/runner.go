package exec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	osExec "os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"golang.org/x/sync/errgroup"

	"github.com/henri123lemoine/liveline/internal/column"
	"github.com/henri123lemoine/liveline/internal/debug"
	"github.com/henri123lemoine/liveline/internal/render"
	"github.com/henri123lemoine/liveline/internal/ui"
)

// LineCreator hands out live lines. *render.Renderer implements it.
type LineCreator interface {
	CreateLine(p render.Placement) *render.Line
}

// Layout sets the column widths of job lines.
type Layout struct {
	NameWidth     int
	StatusWidth   int
	Separator     string
	TruncateRight bool
}

// Result describes a finished job.
type Result struct {
	Job      Job
	ExitCode int
	Err      error
	Elapsed  time.Duration

	// LastLine is the last non-blank line the command printed.
	LastLine string
}

// Failed reports whether the job did not succeed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Runner runs jobs concurrently, each on its own line.
type Runner struct {
	lines       LineCreator
	layout      Layout
	spinner     spinner.Spinner
	symbolWidth int
	concurrency int
	log         *debug.Logger
}

// NewRunner creates a Runner. A concurrency of zero or less means no limit.
func NewRunner(lines LineCreator, layout Layout, sp spinner.Spinner, concurrency int, log *debug.Logger) (*Runner, error) {
	symbolWidth := 1
	for _, f := range sp.Frames {
		if w := column.Width(f); w > symbolWidth {
			symbolWidth = w
		}
	}

	r := &Runner{
		lines:       lines,
		layout:      layout,
		spinner:     sp,
		symbolWidth: symbolWidth,
		concurrency: concurrency,
		log:         log.With("component", "exec"),
	}

	// Surface bad widths now rather than on every line.
	if _, err := r.row("", "", ""); err != nil {
		return nil, err
	}
	return r, nil
}

// RunAll runs jobs and returns their results in job order. A header line
// is kept at the top and a progress summary at the bottom while they run.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) []Result {
	defer r.log.Timed(fmt.Sprintf("running %d jobs", len(jobs)))()

	start := time.Now()
	results := make([]Result, len(jobs))

	header := r.lines.CreateLine(render.Top)
	header.SetText(ui.HeaderStyle.Render(fmt.Sprintf("Running %d jobs", len(jobs))))
	summary := r.lines.CreateLine(render.Bottom)
	summary.SetText(ui.MutedStyle.Render(fmt.Sprintf("0/%d done", len(jobs))))

	lines := make([]*render.Line, len(jobs))
	for i, job := range jobs {
		lines[i] = r.lines.CreateLine(job.Placement)
		lines[i].SetText(r.text(ui.MutedStyle.Render(ui.SymbolPending), job.Name, ui.MutedStyle.Render("queued")))
	}

	var (
		mu       sync.Mutex
		finished int
		g        errgroup.Group
	)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = r.Run(ctx, job, lines[i])

			mu.Lock()
			finished++
			summary.SetText(ui.MutedStyle.Render(fmt.Sprintf("%d/%d done", finished, len(jobs))))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}

	header.Complete(false)
	text := fmt.Sprintf("%d jobs: %d passed, %d failed in %s",
		len(jobs), len(jobs)-failed, failed, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		summary.SetText(ui.FailedStyle.Render(text))
	} else {
		summary.SetText(ui.DoneStyle.Render(text))
	}
	summary.Complete(true)

	return results
}

// Run runs one job, reporting on line, and completes the line with the
// outcome.
func (r *Runner) Run(ctx context.Context, job Job, line *render.Line) Result {
	log := r.log.With("job", job.Name)
	log.Log("job started", "command", job.Command)

	start := time.Now()
	res := Result{Job: job}

	cmd := osExec.CommandContext(ctx, "sh", "-c", job.Expand())
	cmd.Dir = job.Dir
	// Children of a cancelled shell may keep the output pipe open.
	cmd.WaitDelay = time.Second

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		res.Err = err
		res.ExitCode = -1
		res.Elapsed = time.Since(start)
		line.SetText(r.failedText(res))
		line.Complete(true)
		log.Error("job failed to start", err)
		return res
	}

	output := make(chan string)
	go scanLines(pr, output)

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	frames := time.NewTicker(r.frameInterval())
	defer frames.Stop()

	line.SetText(r.runningText(job, "", 0))

	var exited bool
	for output != nil || !exited {
		select {
		case s, ok := <-output:
			if !ok {
				output = nil
				continue
			}
			if strings.TrimSpace(s) != "" {
				res.LastLine = s
				line.SetText(r.runningText(job, res.LastLine, time.Since(start)))
			}
		case <-frames.C:
			line.SetText(r.runningText(job, res.LastLine, time.Since(start)))
		case err := <-waitErr:
			res.Err = err
			exited = true
			waitErr = nil
		}
	}
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		res.ExitCode = -1
		var exitErr *osExec.ExitError
		if errors.As(res.Err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
		line.SetText(r.failedText(res))
		log.Log("job failed", "exit_code", res.ExitCode, "elapsed", res.Elapsed)
	} else {
		line.SetText(r.doneText(res))
		log.Log("job finished", "elapsed", res.Elapsed)
	}
	line.Complete(true)

	return res
}

// scanLines sends each line read from rd and closes out at EOF.
func scanLines(rd io.Reader, out chan<- string) {
	defer close(out)

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out <- cleanLine(scanner.Text())
	}
	// Keep the pipe drained so the command never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, rd)
}

// cleanLine keeps what a terminal would show for s: the text after the
// last carriage return, with tabs expanded.
func cleanLine(s string) string {
	s = strings.TrimRight(s, "\r")
	if i := strings.LastIndexByte(s, '\r'); i >= 0 {
		s = s[i+1:]
	}
	return strings.ReplaceAll(s, "\t", "    ")
}

func (r *Runner) frameInterval() time.Duration {
	if r.spinner.FPS > 0 {
		return r.spinner.FPS
	}
	return 100 * time.Millisecond
}

func (r *Runner) runningText(job Job, last string, elapsed time.Duration) string {
	frame := ui.RunningStyle.Render(ui.SpinnerFrame(r.spinner, elapsed))
	if last == "" {
		last = ui.MutedStyle.Render("running")
	}
	return r.text(frame, job.Name, last)
}

func (r *Runner) doneText(res Result) string {
	status := ui.MutedStyle.Render(res.Elapsed.Round(time.Millisecond).String())
	return r.text(ui.DoneStyle.Render(ui.SymbolDone), res.Job.Name, status)
}

func (r *Runner) failedText(res Result) string {
	status := res.Err.Error()
	if res.LastLine != "" {
		status += ": " + res.LastLine
	}
	return r.text(ui.FailedStyle.Render(ui.SymbolFailed), res.Job.Name, ui.FailedStyle.Render(status))
}

func (r *Runner) text(symbol, name, status string) string {
	s, err := r.row(symbol, name, status)
	if err != nil {
		return name + " " + status
	}
	return s
}

func (r *Runner) row(symbol, name, status string) (string, error) {
	return column.Row(r.layout.Separator,
		column.Column{Text: symbol, Min: r.symbolWidth, Max: r.symbolWidth, TruncateRight: true},
		column.Column{Text: ui.NameStyle.Render(name), Min: r.layout.NameWidth, Max: r.layout.NameWidth, TruncateRight: r.layout.TruncateRight},
		column.Column{Text: status, Min: 0, Max: r.layout.StatusWidth, TruncateRight: r.layout.TruncateRight},
	)
}
