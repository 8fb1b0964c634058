package model

import "strings"

// QueryJoinToken joins the words of an artist name into a single search term.
const QueryJoinToken = "+"

// ArtistQuery is a search term derived from one line of a search file.
type ArtistQuery struct {
	// Raw is the input line with surrounding whitespace removed.
	Raw string

	// Query is Raw with every whitespace run replaced by QueryJoinToken.
	Query string
}

// NewArtistQuery normalizes a raw artist name into a search query.
//
// Example:
//
//	NewArtistQuery("  The   Beatles\n").Query // "The+Beatles"
func NewArtistQuery(raw string) ArtistQuery {
	raw = strings.TrimSpace(raw)
	return ArtistQuery{
		Raw:   raw,
		Query: strings.Join(strings.Fields(raw), QueryJoinToken),
	}
}

// IsEmpty reports whether the query has no search terms.
func (q ArtistQuery) IsEmpty() bool {
	return q.Query == ""
}

func (q ArtistQuery) String() string {
	return q.Raw
}
