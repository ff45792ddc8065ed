package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/henri123lemoine/liveline/internal/config"
	"github.com/henri123lemoine/liveline/internal/debug"
	"github.com/henri123lemoine/liveline/internal/exec"
	"github.com/henri123lemoine/liveline/internal/ui"
)

var errJobsFailed = errors.New("some jobs failed")

var runCmd = &cobra.Command{
	Use:   "run [pattern]",
	Short: "Run configured jobs with live status lines",
	Long: `Run the jobs from the config file concurrently, each on its own live
line. With a pattern, only jobs whose name or command fuzzy-match it run.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(cfg.Jobs) == 0 {
		return fmt.Errorf("no jobs configured; add [[jobs]] to the config file")
	}

	pattern := strings.Join(args, " ")
	selected, exact := cfg.Jobs, false
	// An exact name wins over fuzzy matches.
	if job := cfg.GetJobByName(pattern); pattern != "" && job != nil {
		selected, exact = []config.JobConfig{*job}, true
	}

	jobs, err := exec.JobsFromConfig(selected)
	if err != nil {
		return err
	}
	if !exact {
		jobs = exec.Select(jobs, pattern)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs match %q", pattern)
	}

	r, stop, err := startRenderer(cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}

	if pattern != "" {
		r.Print(ui.MutedStyle.Render(fmt.Sprintf("%d of %d jobs match %q", len(jobs), len(cfg.Jobs), pattern)))
	}

	runner, err := exec.NewRunner(r, layoutFromConfig(cfg), ui.Spinner(cfg.Runner.Spinner), cfg.Runner.Concurrency, debug.Default())
	if err != nil {
		_ = stop()
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	results := runner.RunAll(ctx, jobs)
	if err := stop(); err != nil {
		return err
	}

	for _, res := range results {
		if res.Failed() {
			return errJobsFailed
		}
	}
	return nil
}

func layoutFromConfig(cfg *config.Config) exec.Layout {
	return exec.Layout{
		NameWidth:     cfg.Columns.NameWidth,
		StatusWidth:   cfg.Columns.StatusWidth,
		Separator:     cfg.Columns.Separator,
		TruncateRight: cfg.TruncateRight(),
	}
}
