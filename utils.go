package sptzx

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultFilename is used when an upload carries no usable name.
const DefaultFilename = "unknown"

// MaxFilenameLength bounds sanitized filenames.
const MaxFilenameLength = 255

const defaultContentType = "application/octet-stream"

// SanitizeFilename reduces a client supplied filename to a safe form.
// Directory components are dropped, only ASCII letters, digits and the
// characters '.', '-' and '_' are kept, and the result is capped at
// MaxFilenameLength bytes. An empty result yields DefaultFilename.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		if b.Len() >= MaxFilenameLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	s := b.String()
	if s == "" || strings.Trim(s, ".") == "" {
		return DefaultFilename
	}
	return s
}

// IsViewable reports whether content of the given type may be rendered inline
// by a browser.
func IsViewable(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(contentType)
	}
	return strings.HasPrefix(mediaType, "image/") ||
		strings.HasPrefix(mediaType, "video/") ||
		strings.HasPrefix(mediaType, "audio/")
}

// DetectContentType picks the content type for an upload.
//
// A declared type wins unless it is empty or the generic octet-stream. Next
// the filename extension is consulted and finally the payload is sniffed.
func DetectContentType(declared, name string, data []byte) string {
	if declared != "" {
		if mediaType, params, err := mime.ParseMediaType(declared); err == nil && strings.Contains(mediaType, "/") && mediaType != defaultContentType {
			return mime.FormatMediaType(mediaType, params)
		}
	}

	if ext := filepath.Ext(name); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}

	if len(data) == 0 {
		return defaultContentType
	}

	return mimetype.Detect(data).String()
}

// IsValidID reports whether id is safe to use as a storage key: 1 to 128
// characters drawn from ASCII letters, digits, '-' and '_'.
func IsValidID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
