package clientcli

import "time"

// UploadOptions configures an upload operation.
type UploadOptions struct {
	// LocalPaths are the files to upload; "-" reads standard input.
	LocalPaths []string
	// Name overrides the filename sent to the server. Only valid with a
	// single path, and needed for "-" unless "stdin" is an acceptable name.
	Name string
	// ContentType is sent with every file; auto-detected when empty.
	ContentType string
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string    `json:"local_path"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Mime      string    `json:"mime"`
	View      string    `json:"view"`
	Download  string    `json:"download"`
	TTL       int64     `json:"ttl"`
	ExpiresAt time.Time `json:"expires_at"`
	Err       error     `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	// Link is a view or download URL returned by an upload. A bare
	// "/file/<id>?..." path is resolved against the configured endpoint.
	Link string
	// LocalPath is where the content is written: empty derives the name
	// from the server's Content-Disposition, "-" means stdout.
	LocalPath string
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	Link        string `json:"link"`
	LocalPath   string `json:"local_path"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// serverUploadResponse mirrors the JSON body of POST /upload.
type serverUploadResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Mime      string    `json:"mime"`
	View      string    `json:"view"`
	Download  string    `json:"download"`
	TTL       int64     `json:"ttl"`
	ExpiresAt time.Time `json:"expires_at"`
}

// serverError mirrors the JSON error body returned by the server.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
