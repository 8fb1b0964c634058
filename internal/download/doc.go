// Package download runs a harvest: it downloads the planned work items
// and post-processes the files.
//
// # Manager
//
// The Manager coordinates a run:
//
//  1. Load the search file (batch runs)
//  2. Harvest candidates per artist through the harvest pipeline
//  3. Download work items concurrently
//  4. Normalize file extensions (batch runs)
//  5. Tag MP3 files with ID3 metadata (optional)
//  6. Write a playlist (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(client, settings, func(event model.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, run); err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := manager.StartDownloads(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// The Manager uses configurable concurrency limits:
//   - MaxConcurrentArtists: how many artists are harvested in parallel
//   - MaxConcurrentDownloads: how many items are downloaded in parallel
//
// Output order never depends on completion order: results are addressed
// by their index in the work list.
//
// # Failures
//
// In a batch run a failed item is reported and skipped. A
// *model.FatalRunError, such as an unwritable destination, or cancellation
// aborts the run. A single run fails on any error.
//
// # Normalization
//
// Audio-only batch downloads arrive as .mp4 containers and are renamed to
// .mp3. An existing file with the target name is replaced. Only files
// written by the run are touched, and running the pass twice is a no-op.
//
// # Retry Logic
//
// Failed downloads are retried with exponential backoff, configurable via
// settings.DownloadMaxRetries, settings.DownloadRetryCooldown and
// settings.DownloadRetryExponent. Unavailable videos are not retried.
package download
