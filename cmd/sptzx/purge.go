package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sptzx/config"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove every object from the storage medium",
	Long: `Remove every object the relay may have left in its storage medium.

Only run this while no relay is serving from the same medium: any object it
still holds a link for will disappear. The in-memory medium has nothing to
purge.`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	medium, closeMedium, err := openMedium(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s medium: %w", cfg.Storage.Medium, err)
	}
	defer closeMedium()

	n, err := purgeMedium(ctx, medium)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d object(s) from %s medium\n", n, cfg.Storage.Medium)
	return nil
}
