package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/klauspost/compress/gzhttp"
	"github.com/sagarc03/sptzx"
)

// FileField is the multipart form field carrying the uploaded file.
const FileField = "file"

// FilenameHeader names the upload for raw (non multipart) bodies.
const FilenameHeader = "X-Filename"

// Service is the relay the handler fronts.
type Service interface {
	Upload(ctx context.Context, obj sptzx.UploadObject) (sptzx.UploadResult, error)
	Download(ctx context.Context, params sptzx.LinkParams) (sptzx.ObjectRecord, []byte, error)
	MaxPayloadSize() int64
	Remaining(expiresAt time.Time) time.Duration
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// BaseURL prefixes the links returned by uploads. When empty it is
	// derived from the request's scheme and Host.
	BaseURL   string
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Compress  bool
}

// UploadResponse is the JSON body returned by POST /upload.
type UploadResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Mime      string    `json:"mime"`
	View      string    `json:"view"`
	Download  string    `json:"download"`
	TTL       int64     `json:"ttl"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler provides HTTP handlers for the relay.
type Handler struct {
	config  HandlerConfig
	service Service
	limiter *RateLimiter
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	h := &Handler{
		config:  *config,
		service: service,
	}
	if config.RateLimit.Enabled {
		h.limiter = NewRateLimiter(config.RateLimit)
	}
	return h
}

// Router returns an http.Handler serving the health check, uploads and
// signed downloads.
//
// Downloads are never compressed so that range requests stay byte exact.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	r.Group(func(r chi.Router) {
		if h.config.Compress {
			r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })
		}
		r.Get("/", h.handleHealth)

		r.Group(func(r chi.Router) {
			if h.limiter != nil {
				r.Use(h.limiter.Middleware)
			}
			r.Post("/upload", h.handleUpload)
		})
	})

	r.Get("/file/{id}", h.handleDownload)
	r.Head("/file/{id}", h.handleDownload)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := h.service.MaxPayloadSize()

	var (
		obj sptzx.UploadObject
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		obj, err = readMultipart(r, maxSize)
	} else {
		obj, err = readRaw(r, maxSize)
	}
	if err != nil {
		HandleError(w, err)
		return
	}

	res, err := h.service.Upload(r.Context(), obj)
	if err != nil {
		HandleError(w, err)
		return
	}

	base := h.baseURL(r)
	slog.Info("object uploaded",
		"id", res.Record.ID,
		"name", res.Record.Name,
		"size", humanize.IBytes(uint64(res.Record.Size)),
		"expires_at", res.Record.ExpiresAt,
	)

	_ = WriteJSON(w, http.StatusOK, UploadResponse{
		ID:        res.Record.ID,
		Name:      res.Record.Name,
		Size:      res.Record.Size,
		Mime:      res.Record.ContentType,
		View:      res.Link.URL(base, false),
		Download:  res.Link.URL(base, true),
		TTL:       int64(res.TTL / time.Second),
		ExpiresAt: res.Record.ExpiresAt,
	})
}

// readMultipart streams the parts of a multipart body and returns the
// first part named FileField. At most maxSize+1 bytes of it are read.
func readMultipart(r *http.Request, maxSize int64) (sptzx.UploadObject, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return sptzx.UploadObject{}, fmt.Errorf("multipart: %w", sptzx.ErrInvalidInput)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return sptzx.UploadObject{}, fmt.Errorf("missing %q field: %w", FileField, sptzx.ErrInvalidInput)
		}
		if err != nil {
			return sptzx.UploadObject{}, fmt.Errorf("multipart: %w", sptzx.ErrInvalidInput)
		}

		if part.FormName() != FileField {
			_ = part.Close()
			continue
		}

		data, err := readLimited(part, maxSize)
		_ = part.Close()
		if err != nil {
			return sptzx.UploadObject{}, err
		}

		return sptzx.UploadObject{
			Name:        part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}
}

func readRaw(r *http.Request, maxSize int64) (sptzx.UploadObject, error) {
	if r.ContentLength > maxSize {
		return sptzx.UploadObject{}, sptzx.ErrPayloadTooLarge
	}

	data, err := readLimited(r.Body, maxSize)
	if err != nil {
		return sptzx.UploadObject{}, err
	}

	return sptzx.UploadObject{
		Name:        r.Header.Get(FilenameHeader),
		ContentType: r.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// readLimited reads at most maxSize bytes, reporting ErrPayloadTooLarge
// as soon as one more byte is available.
func readLimited(src io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", sptzx.ErrInvalidInput)
	}
	if int64(len(data)) > maxSize {
		return nil, sptzx.ErrPayloadTooLarge
	}
	return data, nil
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := sptzx.LinkParams{
		ID:        chi.URLParam(r, "id"),
		Expires:   q.Get("exp"),
		Signature: q.Get("sig"),
	}

	rec, data, err := h.service.Download(r.Context(), params)
	if err != nil {
		HandleError(w, err)
		return
	}

	// The link expiry never exceeds the record's, so it bounds caching.
	expiresAt := rec.ExpiresAt
	if linkExp, err := sptzx.ParseExpires(params.Expires); err == nil && linkExp.Before(expiresAt) {
		expiresAt = linkExp
	}
	maxAge := int64(h.service.Remaining(expiresAt) / time.Second)

	disposition := "attachment"
	if sptzx.IsViewable(rec.ContentType) && !wantsDownload(q.Get("dl")) {
		disposition = "inline"
	}

	header := w.Header()
	header.Set("Content-Type", rec.ContentType)
	header.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": rec.Name}))
	header.Set("Cache-Control", "private, max-age="+strconv.FormatInt(maxAge, 10))
	header.Set("X-Content-Type-Options", "nosniff")

	slog.Debug("object served", "id", rec.ID, "size", humanize.IBytes(uint64(rec.Size)), "disposition", disposition)

	http.ServeContent(w, r, rec.Name, rec.CreatedAt, bytes.NewReader(data))
}

func wantsDownload(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (h *Handler) baseURL(r *http.Request) string {
	if h.config.BaseURL != "" {
		return strings.TrimRight(h.config.BaseURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
