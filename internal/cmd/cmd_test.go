package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/henri123lemoine/liveline/internal/config"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(t *testing.T, root *cobra.Command, args ...string) (output string, err error) {
	t.Helper()

	configPath, debugFile = "", ""
	t.Cleanup(func() { configPath, debugFile = "", "" })

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "liveline" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "liveline")
	}

	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range []string{"run", "demo", "init"} {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liveline", "config.toml")

	out, err := executeCommand(t, rootCmd, "init", "--config", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output %q should mention %s", out, path)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Render.IntervalMS != config.DefaultConfig().Render.IntervalMS {
		t.Errorf("IntervalMS = %d, want default", cfg.Render.IntervalMS)
	}

	if _, err := executeCommand(t, rootCmd, "init", "--config", path); err == nil {
		t.Error("second init should refuse to overwrite the config")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[render]
interval_ms = 10
charset = "UTF-8"
lock_file = "`+filepath.Join(dir, "out.lock")+`"

[columns]
name_width = 8
status_width = 30

[[jobs]]
name = "hello"
command = "echo hi"

[[jobs]]
name = "fails"
command = "echo boom; exit 2"
`)

	out, err := executeCommand(t, rootCmd, "run", "--config", path)
	if !errors.Is(err, errJobsFailed) {
		t.Fatalf("run error = %v, want errJobsFailed", err)
	}

	plain := ansi.Strip(out)
	for _, want := range []string{"hello", "exit status 2: boom", "2 jobs: 1 passed, 1 failed"} {
		if !strings.Contains(plain, want) {
			t.Errorf("output missing %q:\n%s", want, plain)
		}
	}
}

func TestRunPattern(t *testing.T) {
	path := writeConfig(t, `
[render]
charset = "UTF-8"

[[jobs]]
name = "alpha"
command = "true"

[[jobs]]
name = "beta"
command = "exit 1"
`)

	out, err := executeCommand(t, rootCmd, "run", "--config", path, "alpha")
	if err != nil {
		t.Fatalf("run alpha failed: %v", err)
	}
	if plain := ansi.Strip(out); strings.Contains(plain, "beta") {
		t.Errorf("beta should not run:\n%s", plain)
	}

	_, err = executeCommand(t, rootCmd, "run", "--config", path, "zzz")
	if err == nil || !strings.Contains(err.Error(), "no jobs match") {
		t.Errorf("run zzz error = %v, want no jobs match", err)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := writeConfig(t, `
[render]
interval_ms = 0
`)

	_, err := executeCommand(t, rootCmd, "run", "--config", path)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("run error = %v, want ErrInvalidConfig", err)
	}
}

func TestDemo(t *testing.T) {
	path := writeConfig(t, `
[render]
interval_ms = 10
charset = "UTF-8"
`)

	out, err := executeCommand(t, rootCmd, "demo", "--config", path, "--files", "2", "--duration", "100ms")
	if err != nil {
		t.Fatalf("demo failed: %v", err)
	}

	plain := ansi.Strip(out)
	for _, want := range []string{"archive-01.tar.gz", "archive-02.tar.gz", "Downloaded 2 files"} {
		if !strings.Contains(plain, want) {
			t.Errorf("output missing %q:\n%s", want, plain)
		}
	}
}

func TestDemoLayoutFitsTerminal(t *testing.T) {
	cfg := config.DefaultConfig()
	l := newDemoLayout(cfg, 80)

	got := ansi.StringWidth(l.line("x", "file", l.bar.View(0.5), "1.0/2.0 MB"))
	if got > 80 {
		t.Errorf("line width = %d, want at most 80", got)
	}
}

func TestOutputWidth(t *testing.T) {
	if got := outputWidth(new(bytes.Buffer), 72); got != 72 {
		t.Errorf("outputWidth(buffer) = %d, want fallback 72", got)
	}

	// A regular file is not a terminal, so it falls back too.
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if got := outputWidth(f, 64); got != 64 {
		t.Errorf("outputWidth(file) = %d, want fallback 64", got)
	}
}
