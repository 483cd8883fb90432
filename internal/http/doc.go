// Package http provides an HTTP client for fetching FITS images from the
// plate archive.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Streaming file downloads in fixed-size chunks
//   - File size retrieval via HEAD requests
//   - Per-request timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(60*time.Second, "skylab-fits-downloader", 0)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, fitsURL, "/data/fits/frame.fits", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
