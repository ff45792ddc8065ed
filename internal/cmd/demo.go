package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/henri123lemoine/liveline/internal/column"
	"github.com/henri123lemoine/liveline/internal/config"
	"github.com/henri123lemoine/liveline/internal/render"
	"github.com/henri123lemoine/liveline/internal/ui"
)

var (
	demoFiles    int
	demoDuration time.Duration
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show simulated downloads with progress bars",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().IntVarP(&demoFiles, "files", "n", 5, "number of simulated downloads")
	demoCmd.Flags().DurationVarP(&demoDuration, "duration", "d", 3*time.Second, "rough time per download")
	rootCmd.AddCommand(demoCmd)
}

// download is one simulated transfer.
type download struct {
	name  string
	size  int64
	speed float64 // bytes per second
}

func runDemo(cmd *cobra.Command, args []string) error {
	if demoFiles < 1 {
		return fmt.Errorf("--files must be at least 1, got %d", demoFiles)
	}
	if demoDuration <= 0 {
		return fmt.Errorf("--duration must be positive, got %v", demoDuration)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r, stop, err := startRenderer(out, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	l := newDemoLayout(cfg, outputWidth(out, 80))
	downloads := newDownloads(demoFiles, demoDuration)
	runDownloads(ctx, r, l, downloads)

	return stop()
}

func newDownloads(n int, duration time.Duration) []download {
	downloads := make([]download, n)
	for i := range downloads {
		size := int64(rand.IntN(190)+10) << 20
		// Spread finishing times between half and one and a half durations.
		secs := duration.Seconds() * (0.5 + rand.Float64())
		downloads[i] = download{
			name:  fmt.Sprintf("archive-%02d.tar.gz", i+1),
			size:  size,
			speed: float64(size) / secs,
		}
	}
	return downloads
}

// demoLayout holds the column widths of a download line.
type demoLayout struct {
	sep       string
	nameWidth int
	sizeWidth int
	bar       ui.ProgressBar
}

func newDemoLayout(cfg *config.Config, termWidth int) demoLayout {
	const sizeWidth = len("000.0/000.0 MB")

	sep := cfg.Columns.Separator
	nameWidth := min(cfg.Columns.NameWidth, 20)
	barWidth := termWidth - 2 - nameWidth - sizeWidth - 3*column.Width(sep)
	barWidth = max(10, min(barWidth, 60))

	return demoLayout{
		sep:       sep,
		nameWidth: nameWidth,
		sizeWidth: sizeWidth,
		bar:       ui.NewProgressBar(barWidth),
	}
}

func (l demoLayout) line(symbol, name, bar, size string) string {
	s, err := column.Row(l.sep,
		column.Column{Text: symbol, Min: 1, Max: 1, TruncateRight: true},
		column.Column{Text: ui.NameStyle.Render(name), Min: l.nameWidth, Max: l.nameWidth, TruncateRight: false},
		column.Column{Text: bar, Min: l.bar.Width(), Max: l.bar.Width(), TruncateRight: true},
		column.Column{Text: size, Min: l.sizeWidth, Max: l.sizeWidth, TruncateRight: true},
	)
	if err != nil {
		return name
	}
	return s
}

func runDownloads(ctx context.Context, r *render.Renderer, l demoLayout, downloads []download) {
	start := time.Now()

	var total int64
	for _, d := range downloads {
		total += d.size
	}

	header := r.CreateLine(render.Top)
	header.SetText(ui.HeaderStyle.Render(fmt.Sprintf("Downloading %d files", len(downloads))))
	summary := r.CreateLine(render.Bottom)

	var (
		mu          sync.Mutex
		received    int64
		finished    int
		interrupted bool
	)
	updateSummary := func() {
		summary.SetText(l.line(" ", "total", l.bar.View(float64(received)/float64(total)),
			fmt.Sprintf("%d/%d files", finished, len(downloads))))
	}
	updateSummary()

	var wg sync.WaitGroup
	for _, d := range downloads {
		line := r.CreateLine(render.Natural)
		wg.Add(1)
		go func() {
			defer wg.Done()

			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()

			var got int64
			last := time.Now()
			for got < d.size {
				select {
				case <-ctx.Done():
					line.SetText(l.line(ui.FailedStyle.Render(ui.SymbolFailed), d.name,
						l.bar.View(float64(got)/float64(d.size)), ui.FailedStyle.Render("cancelled")))
					line.Complete(true)
					mu.Lock()
					interrupted = true
					mu.Unlock()
					return
				case now := <-ticker.C:
					// Jitter the rate so bars move unevenly.
					step := int64(d.speed * now.Sub(last).Seconds() * (0.5 + rand.Float64()))
					last = now
					step = min(step, d.size-got)
					got += step

					line.SetText(l.line(ui.RunningStyle.Render("↓"), d.name,
						l.bar.View(float64(got)/float64(d.size)), formatProgress(got, d.size)))

					mu.Lock()
					received += step
					updateSummary()
					mu.Unlock()
				}
			}

			line.SetText(l.line(ui.DoneStyle.Render(ui.SymbolDone), d.name,
				l.bar.View(1), ui.MutedStyle.Render(formatSize(d.size))))
			line.Complete(true)

			mu.Lock()
			finished++
			updateSummary()
			mu.Unlock()
		}()
	}
	wg.Wait()

	header.Complete(false)
	text := fmt.Sprintf("Downloaded %d files (%s) in %s",
		finished, formatSize(received), time.Since(start).Round(10*time.Millisecond))
	if interrupted {
		summary.SetText(ui.FailedStyle.Render(text + ", interrupted"))
	} else {
		summary.SetText(ui.DoneStyle.Render(text))
	}
	summary.Complete(true)
}

func formatProgress(got, size int64) string {
	return fmt.Sprintf("%.1f/%.1f MB", mib(got), mib(size))
}

func formatSize(n int64) string {
	return fmt.Sprintf("%.1f MB", mib(n))
}

func mib(n int64) float64 {
	return float64(n) / (1 << 20)
}
