package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sagarc03/sptzx/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "sptzx-cli",
	Version: version,
	Short:   "Client for sptzx relays",
	Long: `sptzx-cli - Client for sptzx ephemeral file relays

Upload files to a relay and share the signed links it returns. Links stop
working once the relay's lifetime has passed, and the content is removed
shortly after.

The relay is chosen, in order of precedence, by:
  --endpoint / SPTZX_ENDPOINT
  --profile / SPTZX_PROFILE from the config file
  the default profile from the config file
  http://localhost:3000`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.sptzx/config.yaml, env: SPTZX_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: SPTZX_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "relay URL (env: SPTZX_ENDPOINT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	// 1. Load the selected profile from the config file
	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}
	explicit := cfgFile != "" || clientcli.ConfigPathFromEnv() != "" || name != ""

	if configPath := getConfigPath(); configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			profile, profileErr := file.GetProfile(name)
			if profileErr == nil {
				configs = append(configs, clientcli.ConfigFromProfile(profile))
			} else if name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles) {
				return nil, profileErr
			}
		case explicit:
			// Only error if the user asked for a config file or profile
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	// 2. Load from environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &clientcli.Config{Endpoint: endpoint})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient(opts ...clientcli.Option) (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg, opts...)
}

// exitError is returned when we want to exit with a specific code
// but the output has already been written.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
