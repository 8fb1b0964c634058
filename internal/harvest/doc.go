// Package harvest turns a list of artist names into an ordered work list.
//
// The stages run in order for every artist:
//
//  1. LoadArtists reads and normalizes the search file
//  2. Scraper searches the platform and keeps the first scanWindow hits
//  3. DurationFilter drops videos longer than the maximum duration
//  4. SelectQuota keeps the first quotaPerArtist survivors
//
// Accumulate then flattens the per-artist selections, artist by artist,
// into model.WorkItem values for package download.
//
// # Usage
//
//	p := harvest.NewPipeline(client, settings, onProgress)
//	plan, err := p.Plan(ctx, run)
//	for _, item := range plan.Items {
//	    fmt.Println(item.VideoRef)
//	}
//
// A search failure only drops the affected artist, and a metadata failure
// only drops the affected candidate.
package harvest
