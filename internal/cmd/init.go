package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/henri123lemoine/liveline/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.ConfigPath()
	}

	if err := config.CreateDefaultConfigFile(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return nil
}
