package main

import (
	"os"
	"time"

	"github.com/sagarc03/sptzx/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadName        string
	uploadContentType string
	uploadTimeout     time.Duration
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files and print their signed links",
	Long: `Upload one or more files to the relay.

Each upload prints a view link, which browsers may render inline, and a
download link, which always saves the file. Use "-" to read from stdin.

Examples:
  sptzx-cli upload ./report.pdf
  sptzx-cli upload -q ./a.png ./b.png
  tar cz ./dir | sptzx-cli upload --name dir.tar.gz -
  sptzx-cli upload --content-type application/json ./data`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "filename sent to the relay (single file only)")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
	uploadCmd.Flags().DurationVar(&uploadTimeout, "timeout", clientcli.DefaultTimeout, "timeout per upload")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient(clientcli.WithTimeout(uploadTimeout))
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPaths:  args,
		Name:        uploadName,
		ContentType: uploadContentType,
	})
	if err != nil {
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
