// Package cmd implements the liveline command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/henri123lemoine/liveline/internal/config"
	"github.com/henri123lemoine/liveline/internal/debug"
)

var (
	configPath string
	debugFile  string
)

var rootCmd = &cobra.Command{
	Use:   "liveline",
	Short: "Live status lines for concurrent commands",
	Long: `liveline runs commands concurrently and keeps one live status line
per command at the bottom of the terminal. Finished commands are printed
once above the live block, so scrollback stays intact.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is $HOME/.config/liveline/config.toml)")
	rootCmd.PersistentFlags().StringVar(&debugFile, "debug", "", "write debug logs to this file")
}

// loadConfig reads the config file, prints validation warnings, and turns
// on debug logging when asked to.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.ConfigPath()
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Validate() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}

	logPath := debugFile
	if logPath == "" {
		logPath = cfg.Log.DebugFile
	}
	if logPath != "" {
		if err := debug.Enable(logPath); err != nil {
			return nil, fmt.Errorf("failed to open debug log: %w", err)
		}
	}

	return cfg, nil
}
