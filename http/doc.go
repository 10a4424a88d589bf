// Package http exposes the sptzx relay over HTTP.
//
// # Routes
//
//   - GET /               health check, returns {"status":"ok"}
//   - POST /upload        stores one object and returns its signed links
//   - GET|HEAD /file/{id} serves an object for a valid ?exp=&sig= pair
//
// Uploads are either multipart/form-data with a "file" field or a raw body
// whose name comes from the X-Filename header. Bodies larger than the
// relay's maximum payload are rejected with 413 without being buffered.
//
// Downloads stream through http.ServeContent, so Range and conditional
// requests work. Images, video and audio are served inline unless the
// link carries dl=1; everything else is an attachment.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    BaseURL:   "https://relay.example.com",
//	    RateLimit: http.RateLimitConfig{Enabled: true, RequestsPerSecond: 2, Burst: 10},
//	    Compress:  true,
//	}, relay)
//	srv := &nethttp.Server{Addr: ":8080", Handler: handler.Router()}
//
// # Errors
//
// Failures are JSON bodies of the form {"error": code, "message": text}.
// HandleError maps the sptzx sentinel errors to status codes.
package http
