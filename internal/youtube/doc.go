// Package youtube implements platform.Client for YouTube.
//
// The package handles three jobs:
//
//  1. Scraping the public search results page for video IDs
//  2. Resolving video metadata and choosing a stream per download mode
//  3. Streaming the chosen format to disk through a partial file
//
// # Search
//
// The results page embeds watch links for every hit, so IDs are pulled out
// with a regular expression rather than an API call:
//
//	ids := youtube.ParseSearchResults(html)
//
// # Stream Selection
//
// Audio-only runs take the best audio stream, preferring the mp4 container
// so the downloaded file has the .mp4 extension the normalizer expects.
// Video runs take the highest resolution stream that carries both picture
// and sound.
//
// # Errors
//
// Private, age restricted, removed and otherwise unplayable videos are
// reported as platform.ErrUnavailable.
package youtube
