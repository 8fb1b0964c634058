package model

import "fmt"

// WatchURLPrefix is the canonical watch page prefix for a video ID.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

// VideoCandidate is a search hit for one artist.
//
// Candidates are produced by the scraper with only ID set. The duration
// filter returns enriched copies via WithDuration; a candidate is never
// modified in place.
type VideoCandidate struct {
	// ID is the opaque platform video identifier.
	ID string

	// DurationSeconds is the video length. Only meaningful when HasDuration is true.
	DurationSeconds int

	durationKnown bool
}

// NewVideoCandidate creates a candidate with an unknown duration.
func NewVideoCandidate(id string) VideoCandidate {
	return VideoCandidate{ID: id}
}

// WithDuration returns a copy of the candidate with its duration set.
func (c VideoCandidate) WithDuration(seconds int) VideoCandidate {
	c.DurationSeconds = seconds
	c.durationKnown = true
	return c
}

// HasDuration reports whether the duration has been fetched.
func (c VideoCandidate) HasDuration() bool {
	return c.durationKnown
}

// WatchURL returns the watch page URL for the candidate.
func (c VideoCandidate) WatchURL() string {
	return WatchURL(c.ID)
}

func (c VideoCandidate) String() string {
	if !c.durationKnown {
		return c.ID
	}
	return fmt.Sprintf("%s (%ds)", c.ID, c.DurationSeconds)
}

// WatchURL builds a watch page URL from a video ID.
func WatchURL(id string) string {
	return WatchURLPrefix + id
}
