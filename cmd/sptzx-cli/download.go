package main

import (
	"io"
	"os"

	"github.com/sagarc03/sptzx/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <link> [local-path]",
	Short: "Download the file behind a signed link",
	Long: `Download the file behind a signed link.

The link may be absolute or a "/file/<id>?..." path, which is resolved
against the configured relay. Without a local path the filename sent by
the relay is used. An existing directory receives the file under that name.

Expired or tampered links fail with an error naming the reason.

Examples:
  sptzx-cli download 'http://localhost:3000/file/0a1b...?exp=1760000000&sig=...'
  sptzx-cli download '<link>' ./downloads/
  sptzx-cli download --stdout '<link>' | jq .`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	// Determine local path
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		Link:      args[0],
		LocalPath: localPath,
	})
	if err != nil {
		return err
	}

	// If stdout, write content to stdout
	if reader != nil {
		defer func() { _ = reader.Close() }()
		written, err := io.Copy(os.Stdout, reader)
		if err != nil {
			return err
		}
		result.Size = written
		// Don't print metadata when writing to stdout (unless JSON mode)
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
