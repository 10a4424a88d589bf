package clientcli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sagarc03/sptzx"
)

const (
	// DefaultTimeout is the default HTTP client timeout. It bounds the
	// whole transfer, so large uploads may need WithTimeout.
	DefaultTimeout = 10 * time.Minute

	// fileField is the multipart field the server reads uploads from.
	fileField = "file"

	// stdinName is used for uploads from standard input without a name.
	stdinName = "stdin"
)

// Client performs operations against a sptzx relay.
type Client struct {
	config     *Config
	httpClient *http.Client
	stdin      io.Reader
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithStdin sets the reader used for the "-" upload path.
func WithStdin(r io.Reader) Option {
	return func(c *Client) {
		c.stdin = r
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     &Config{Endpoint: strings.TrimSuffix(cfg.Endpoint, "/")},
		httpClient: &http.Client{Timeout: DefaultTimeout},
		stdin:      os.Stdin,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized server endpoint.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Ping checks that the endpoint is a healthy relay.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, body)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &health); err != nil || health.Status != "ok" {
		return fmt.Errorf("unexpected health response: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// Upload uploads each path in turn. It continues past failures, recording
// them in the per-file results; the returned error is only set when the
// options are invalid or ctx is cancelled.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if len(opts.LocalPaths) == 0 {
		return nil, fmt.Errorf("upload: %w", ErrNoPaths)
	}
	if opts.Name != "" && len(opts.LocalPaths) > 1 {
		return nil, fmt.Errorf("upload: %w", ErrNameMultiple)
	}

	results := make([]UploadResult, 0, len(opts.LocalPaths))
	for _, localPath := range opts.LocalPaths {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := c.uploadSingle(ctx, localPath, opts.Name, opts.ContentType)
		if err != nil {
			result = UploadResult{LocalPath: localPath, Err: err}
		}
		results = append(results, result)
	}

	return results, nil
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// uploadSingle streams one file to the server as a multipart body.
func (c *Client) uploadSingle(ctx context.Context, localPath, name, contentType string) (UploadResult, error) {
	var src io.Reader
	if localPath == "-" {
		src = c.stdin
		if name == "" {
			name = stdinName
		}
	} else {
		file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
		if err != nil {
			return UploadResult{}, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = file.Close() }()

		info, err := file.Stat()
		if err != nil {
			return UploadResult{}, fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return UploadResult{}, fmt.Errorf("%s is a directory", localPath)
		}

		src = file
		if name == "" {
			name = filepath.Base(localPath)
		}
	}

	// Auto-detect content type if not provided
	if contentType == "" {
		contentType = detectContentType(name)
	}

	// Stream the multipart body through a pipe so files are never held in memory.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     fileField,
			"filename": name,
		}))
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, src)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/upload", pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// Execute request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return UploadResult{}, parseServerError(resp.StatusCode, body)
	}

	// Parse response
	var uploaded serverUploadResponse
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return UploadResult{}, fmt.Errorf("parse response: %w", err)
	}

	return UploadResult{
		LocalPath: localPath,
		ID:        uploaded.ID,
		Name:      uploaded.Name,
		Size:      uploaded.Size,
		Mime:      uploaded.Mime,
		View:      uploaded.View,
		Download:  uploaded.Download,
		TTL:       uploaded.TTL,
		ExpiresAt: uploaded.ExpiresAt,
	}, nil
}

// Download fetches the object behind a signed link.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	link, err := c.resolveLink(opts.Link)
	if err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	// Execute request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		Link:        link.String(),
		Name:        filenameFromResponse(resp, link),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	// Determine local path
	localPath := opts.LocalPath
	if localPath == "" {
		localPath = result.Name
	} else if info, statErr := os.Stat(localPath); statErr == nil && info.IsDir() {
		localPath = filepath.Join(localPath, result.Name)
	}
	result.LocalPath = localPath

	// Create parent directories if needed
	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	// Create the file
	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	// Copy content to file
	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// resolveLink accepts an absolute link or a path relative to the endpoint.
func (c *Client) resolveLink(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyLink
	}
	if strings.HasPrefix(raw, "/") {
		raw = c.config.Endpoint + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse link: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("link must be an http or https URL: %q", raw)
	}
	return u, nil
}

// filenameFromResponse picks a safe local filename: the server's
// Content-Disposition filename, else the last path segment of the link.
func filenameFromResponse(resp *http.Response, link *url.URL) string {
	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	if name == "" {
		name = path.Base(link.Path)
	}
	return sptzx.SanitizeFilename(name)
}

// detectContentType returns the MIME type for the file extension, or an
// empty string so that the server sniffs the content itself.
func detectContentType(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// parseServerError extracts the error code and message from a server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var se serverError
	if err := json.Unmarshal(body, &se); err == nil && se.Error != "" {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
