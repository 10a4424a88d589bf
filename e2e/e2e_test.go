package e2e_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/sptzx/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Relay_Memory(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:   getOpenPort(t),
		Medium: "memory",
	})
	defer cleanup()

	runRelayTests(t, baseURL)
}

func TestE2E_Relay_Filesystem(t *testing.T) {
	storageDir := filepath.Join(t.TempDir(), "objects")

	baseURL, cleanup := startServer(t, ServerConfig{
		Port:        getOpenPort(t),
		Medium:      "filesystem",
		StoragePath: storageDir,
	})
	defer cleanup()

	runRelayTests(t, baseURL)
}

func TestE2E_Relay_SQLite(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:   getOpenPort(t),
		Medium: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "relay.db"),
	})
	defer cleanup()

	runRelayTests(t, baseURL)
}

func TestE2E_Relay_Postgres(t *testing.T) {
	dsn := getSharedPostgresDatabase(t)

	baseURL, cleanup := startServer(t, ServerConfig{
		Port:   getOpenPort(t),
		Medium: "postgres",
		DSN:    dsn,
	})
	defer cleanup()

	runRelayTests(t, baseURL)
}

func newE2EClient(t *testing.T, baseURL string) *clientcli.Client {
	t.Helper()
	client, err := clientcli.New(&clientcli.Config{Endpoint: baseURL}, clientcli.WithTimeout(10*time.Second))
	require.NoError(t, err)
	return client
}

func uploadFile(t *testing.T, client *clientcli.Client, name, content string) clientcli.UploadResult {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	results, err := client.Upload(context.Background(), clientcli.UploadOptions{LocalPaths: []string{path}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	return results[0]
}

func runRelayTests(t *testing.T, baseURL string) {
	t.Helper()

	client := newE2EClient(t, baseURL)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	uploaded := uploadFile(t, client, "notes.txt", "hello from e2e")
	assert.Equal(t, "notes.txt", uploaded.Name)
	assert.Equal(t, int64(14), uploaded.Size)
	assert.Equal(t, int64(300), uploaded.TTL)
	assert.True(t, strings.HasPrefix(uploaded.View, baseURL+"/file/"+uploaded.ID+"?"))

	t.Run("view link renders media inline", func(t *testing.T) {
		gif := uploadFile(t, client, "pixel.gif", "GIF89a\x01\x00\x01\x00")

		resp, err := http.Get(gif.View)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
		assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("view link of text is an attachment", func(t *testing.T) {
		resp, err := http.Get(uploaded.View)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "hello from e2e", string(body))
		assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"))
	})

	t.Run("download link saves file", func(t *testing.T) {
		dir := t.TempDir()
		result, _, err := client.Download(ctx, clientcli.DownloadOptions{Link: uploaded.Download, LocalPath: dir})
		require.NoError(t, err)

		data, err := os.ReadFile(result.LocalPath)
		require.NoError(t, err)
		assert.Equal(t, "hello from e2e", string(data))
		assert.Equal(t, filepath.Join(dir, "notes.txt"), result.LocalPath)
	})

	t.Run("range request", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, uploaded.Download, http.NoBody)
		require.NoError(t, err)
		req.Header.Set("Range", "bytes=0-4")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
		assert.Equal(t, "hello", string(body))
	})

	t.Run("tampered signature is rejected", func(t *testing.T) {
		u, err := url.Parse(uploaded.View)
		require.NoError(t, err)
		q := u.Query()
		q.Set("sig", strings.Repeat("f", 64))
		u.RawQuery = q.Encode()

		_, _, err = client.Download(ctx, clientcli.DownloadOptions{Link: u.String(), LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrInvalidSignature)
	})

	t.Run("extended expiry is rejected", func(t *testing.T) {
		u, err := url.Parse(uploaded.View)
		require.NoError(t, err)
		q := u.Query()
		q.Set("exp", "9999999999")
		u.RawQuery = q.Encode()

		_, _, err = client.Download(ctx, clientcli.DownloadOptions{Link: u.String(), LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrInvalidSignature)
	})

	t.Run("links of another object do not transfer", func(t *testing.T) {
		other := uploadFile(t, client, "other.txt", "other")
		u, err := url.Parse(uploaded.View)
		require.NoError(t, err)
		u.Path = "/file/" + other.ID

		_, _, err = client.Download(ctx, clientcli.DownloadOptions{Link: u.String(), LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrInvalidSignature)
	})
}

func TestE2E_Expiry(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:          getOpenPort(t),
		Medium:        "sqlite",
		DSN:           filepath.Join(t.TempDir(), "relay.db"),
		Lifetime:      2,
		SweepInterval: 1,
	})
	defer cleanup()

	client := newE2EClient(t, baseURL)
	uploaded := uploadFile(t, client, "brief.txt", "short lived")
	assert.Equal(t, int64(2), uploaded.TTL)

	_, body, err := client.Download(context.Background(), clientcli.DownloadOptions{Link: uploaded.View, LocalPath: "-"})
	require.NoError(t, err)
	_ = body.Close()

	// Wait past the lifetime and at least one sweep.
	time.Sleep(4 * time.Second)

	_, _, err = client.Download(context.Background(), clientcli.DownloadOptions{Link: uploaded.View, LocalPath: "-"})
	assert.ErrorIs(t, err, clientcli.ErrLinkExpired)
}

func TestE2E_PayloadTooLarge(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:           getOpenPort(t),
		Medium:         "memory",
		MaxPayloadSize: 16,
	})
	defer cleanup()

	client := newE2EClient(t, baseURL)

	path := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 17)), 0o600))

	results, err := client.Upload(context.Background(), clientcli.UploadOptions{LocalPaths: []string{path}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, clientcli.ErrPayloadTooLarge)

	// Exactly at the limit is accepted.
	uploaded := uploadFile(t, client, "fits.bin", strings.Repeat("x", 16))
	assert.Equal(t, int64(16), uploaded.Size)
}
