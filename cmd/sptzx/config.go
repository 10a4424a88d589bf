package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sptzx/config"
)

// readConfig loads the configuration for cmd and stores it in the
// command's context for the subcommand to pick up.
func readConfig(cmd *cobra.Command) error {
	files, _ := cmd.Flags().GetStringSlice("config")

	cfg, err := config.Load(files, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}
