package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "sptzx",
	Short:   "Ephemeral object relay with signed, expiring links",
	Long: `sptzx accepts an upload, keeps it in volatile storage for a short
lifetime and hands back signed links that stop working once it expires.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := readConfig(cmd); err != nil {
			return err
		}
		setupLogging(cmd.Context())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path(s), later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("medium", "", "storage medium: memory, filesystem, sqlite, postgres, redis (env: SPTZX_STORAGE_MEDIUM)")
	rootCmd.PersistentFlags().String("storage-path", "", "filesystem medium directory (env: SPTZX_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("dsn", "", "sqlite or postgres connection string (env: SPTZX_STORAGE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: SPTZX_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
