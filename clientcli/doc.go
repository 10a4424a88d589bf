// Package clientcli provides a client library for sptzx relays.
//
// It uploads files and receives signed view and download links, and it
// fetches the content behind such links. Profiles in a YAML config file
// name the relays a user talks to.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:3000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPaths: []string{"./report.pdf"},
//	})
//
// Each result carries the view and download links, valid until ExpiresAt.
// Anyone holding a link can fetch the content:
//
//	result, _, err := client.Download(ctx, clientcli.DownloadOptions{
//		Link: results[0].Download,
//	})
//
// Rejected links surface as *APIError values; use errors.Is with
// ErrLinkExpired, ErrInvalidSignature or ErrNotFound to tell them apart.
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
