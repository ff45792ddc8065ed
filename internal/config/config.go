// Package config handles liveline configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents liveline configuration.
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Columns ColumnsConfig `toml:"columns"`
	Runner  RunnerConfig  `toml:"runner"`
	Log     LogConfig     `toml:"log"`
	Jobs    []JobConfig   `toml:"jobs"`
}

// RenderConfig contains settings for the live line renderer.
type RenderConfig struct {
	// Milliseconds between frames
	IntervalMS int `toml:"interval_ms"`

	// Output charset; empty means detect from the locale
	Charset string `toml:"charset"`

	// Lock file shared by liveline processes drawing on the same terminal.
	// Empty disables cross-process locking.
	LockFile string `toml:"lock_file"`
}

// ColumnsConfig contains settings for formatting job lines.
type ColumnsConfig struct {
	// Width of the job name column
	NameWidth int `toml:"name_width"`

	// Width of the status column
	StatusWidth int `toml:"status_width"`

	// Which side of overlong text to drop: "right" or "left"
	Truncate string `toml:"truncate"`

	// Separator between columns
	Separator string `toml:"separator"`
}

// RunnerConfig contains settings for running jobs.
type RunnerConfig struct {
	// Maximum number of jobs running at once (0 = unlimited)
	Concurrency int `toml:"concurrency"`

	// Spinner style: "dot", "line", "minidot", "points", or "meter"
	Spinner string `toml:"spinner"`
}

// LogConfig contains debug logging settings.
type LogConfig struct {
	// File to write debug logs to (empty = disabled)
	DebugFile string `toml:"debug_file"`
}

// JobConfig defines a command to run on its own line.
type JobConfig struct {
	// Unique name shown in the first column
	Name string `toml:"name"`

	// Shell command, run with sh -c
	Command string `toml:"command"`

	// Working directory (empty = current directory)
	Dir string `toml:"dir"`

	// Where the line is drawn: "top", "natural", or "bottom"
	Placement string `toml:"placement"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			IntervalMS: 50,
			Charset:    "",
			LockFile:   "",
		},
		Columns: ColumnsConfig{
			NameWidth:   20,
			StatusWidth: 48,
			Truncate:    "right",
			Separator:   "  ",
		},
		Runner: RunnerConfig{
			Concurrency: 4,
			Spinner:     "dot",
		},
		Log: LogConfig{
			DebugFile: "",
		},
		Jobs: []JobConfig{},
	}
}

// Interval returns the frame interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Render.IntervalMS) * time.Millisecond
}

// TruncateRight reports whether overlong text keeps its start.
func (c *Config) TruncateRight() bool {
	return c.Columns.Truncate != "left"
}

// GetJobByName returns the job with the given name, or nil if not found.
func (c *Config) GetJobByName(name string) *JobConfig {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i]
		}
	}
	return nil
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/liveline/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "liveline", "config.toml")
	}
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".config", "liveline", "config.toml")
	}
	// Fallback to os.UserConfigDir() for Windows
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "liveline", "config.toml")
	}
	return filepath.Join(configDir, "liveline", "config.toml")
}

// Load loads configuration from the config file.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// go-toml/v2 only overwrites fields present in the file, so unset
	// fields keep their defaults.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves configuration to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// CreateDefaultConfigFile writes a commented default config file to path.
// It refuses to overwrite an existing file.
func CreateDefaultConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(generateDefaultConfigContent()), 0644)
}

// generateDefaultConfigContent generates a commented config file.
func generateDefaultConfigContent() string {
	var b strings.Builder
	cfg := DefaultConfig()

	b.WriteString("# liveline configuration\n\n")

	b.WriteString("[render]\n")
	b.WriteString("# Milliseconds between frames\n")
	fmt.Fprintf(&b, "interval_ms = %d\n", cfg.Render.IntervalMS)
	b.WriteString("# Output charset (empty = detect from LC_ALL, LC_CTYPE or LANG)\n")
	fmt.Fprintf(&b, "charset = %q\n", cfg.Render.Charset)
	b.WriteString("# Lock file shared by liveline processes on the same terminal\n")
	b.WriteString("# lock_file = \"/tmp/liveline.lock\"\n\n")

	b.WriteString("[columns]\n")
	b.WriteString("# Width of the job name column\n")
	fmt.Fprintf(&b, "name_width = %d\n", cfg.Columns.NameWidth)
	b.WriteString("# Width of the status column\n")
	fmt.Fprintf(&b, "status_width = %d\n", cfg.Columns.StatusWidth)
	b.WriteString("# Side of overlong text to drop: \"right\" or \"left\"\n")
	fmt.Fprintf(&b, "truncate = %q\n", cfg.Columns.Truncate)
	b.WriteString("# Separator between columns\n")
	fmt.Fprintf(&b, "separator = %q\n\n", cfg.Columns.Separator)

	b.WriteString("[runner]\n")
	b.WriteString("# Maximum number of jobs running at once (0 = unlimited)\n")
	fmt.Fprintf(&b, "concurrency = %d\n", cfg.Runner.Concurrency)
	b.WriteString("# Spinner style: \"dot\", \"line\", \"minidot\", \"points\", or \"meter\"\n")
	fmt.Fprintf(&b, "spinner = %q\n\n", cfg.Runner.Spinner)

	b.WriteString("[log]\n")
	b.WriteString("# File to write debug logs to\n")
	b.WriteString("# debug_file = \"/tmp/liveline-debug.log\"\n")

	b.WriteString("\n# Jobs run by `liveline run`\n")
	b.WriteString("# [[jobs]]\n")
	b.WriteString("# name = \"build\"\n")
	b.WriteString("# command = \"go build ./...\"\n")
	b.WriteString("# placement = \"natural\"\n")
	b.WriteString("#\n")
	b.WriteString("# [[jobs]]\n")
	b.WriteString("# name = \"test\"\n")
	b.WriteString("# command = \"go test ./...\"\n")

	return b.String()
}

// Validate validates the configuration and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Columns.Truncate != "" &&
		c.Columns.Truncate != "right" &&
		c.Columns.Truncate != "left" {
		warnings = append(warnings, fmt.Sprintf("Invalid value for columns.truncate: %s (expected right or left)", c.Columns.Truncate))
	}

	if c.Runner.Spinner != "" && !isSpinnerName(c.Runner.Spinner) {
		warnings = append(warnings, fmt.Sprintf("Invalid value for runner.spinner: %s (expected dot, line, minidot, points, or meter)", c.Runner.Spinner))
	}

	if c.Runner.Concurrency < 0 {
		warnings = append(warnings, fmt.Sprintf("runner.concurrency is negative (%d); treating as unlimited", c.Runner.Concurrency))
	}

	jobNames := make(map[string]bool)
	for i, job := range c.Jobs {
		if job.Name == "" {
			warnings = append(warnings, fmt.Sprintf("Job %d has empty name", i))
		}
		if jobNames[job.Name] {
			warnings = append(warnings, fmt.Sprintf("Duplicate job name: %s", job.Name))
		}
		jobNames[job.Name] = true

		if strings.TrimSpace(job.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("Job %s has empty command", job.Name))
		}

		switch strings.ToLower(job.Placement) {
		case "", "top", "natural", "bottom":
		default:
			warnings = append(warnings, fmt.Sprintf("Job %s: invalid placement '%s' (expected top, natural, or bottom)", job.Name, job.Placement))
		}
	}

	return warnings
}

// ErrInvalidConfig is wrapped by every error returned from Check.
var ErrInvalidConfig = errors.New("invalid configuration")

// Check returns an error for values that cannot be used at all. Unlike
// Validate it never lets a bad value through.
func (c *Config) Check() error {
	switch {
	case c.Render.IntervalMS <= 0:
		return fmt.Errorf("%w: render.interval_ms must be positive, got %d", ErrInvalidConfig, c.Render.IntervalMS)
	case c.Columns.NameWidth <= 0:
		return fmt.Errorf("%w: columns.name_width must be positive, got %d", ErrInvalidConfig, c.Columns.NameWidth)
	case c.Columns.StatusWidth <= 0:
		return fmt.Errorf("%w: columns.status_width must be positive, got %d", ErrInvalidConfig, c.Columns.StatusWidth)
	}
	return nil
}

func isSpinnerName(name string) bool {
	switch name {
	case "dot", "line", "minidot", "points", "meter":
		return true
	}
	return false
}
