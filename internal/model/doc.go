// Package model defines the core data structures used throughout
// the yt-harvester application.
//
// # Artist Queries
//
// ArtistQuery is one line of a search file turned into a search term:
//
//	q := model.NewArtistQuery("Miles   Davis")
//	fmt.Println(q.Query) // "Miles+Davis"
//
// # Candidates
//
// VideoCandidate is a search hit that has not yet been confirmed to qualify.
// Its duration is unknown until the duration filter enriches it:
//
//	c := model.NewVideoCandidate("dQw4w9WgXcQ").WithDuration(212)
//
// # Work Items
//
// WorkItem is one fully specified download: a video reference, a Mode and a
// Destination. Batch items leave the file name empty so the platform picks it;
// single items carry the caller's file name:
//
//	item, err := model.NewSingleWorkItem(url, "/music/song.mp3", model.ModeAudioOnly)
//
// # Errors
//
// Failures are classified as ConfigError, TransientItemError or FatalRunError.
// Use IsFatal to decide whether a failure ends the run.
package model
