// Package http provides the HTTP client shared by the search scraper, the
// platform library and thumbnail downloads.
//
// The Client in this package handles:
//   - User-Agent headers (set by a RoundTripper, so library requests get them too)
//   - Status checking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(settings.UserAgent, settings.RequestTimeout())
//	html, err := client.GetString(ctx, searchURL)
//
// # Progress Tracking
//
// The ProgressWriter type wraps any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
