package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/handiism/yt-harvester/internal/model"
)

// DefaultSearchURL is the results page queried by Search. The query is
// appended unchanged apart from escaping.
const DefaultSearchURL = "https://www.youtube.com/results?search_query="

// videoIDPattern matches watch links in the raw results page, both in
// anchors and in the embedded JSON.
var videoIDPattern = regexp.MustCompile(`watch\?v=([A-Za-z0-9_-]{11})`)

// ParseSearchResults extracts video IDs from a results page in page order.
//
// The same video is usually linked several times (thumbnail, title,
// channel shelf); only the first occurrence is kept. A page without any
// watch link yields an empty, non-nil slice.
//
// Example:
//
//	ids := ParseSearchResults(`<a href="/watch?v=dQw4w9WgXcQ">`)
//	// ids == []string{"dQw4w9WgXcQ"}
func ParseSearchResults(page string) []string {
	matches := videoIDPattern.FindAllStringSubmatch(page, -1)

	ids := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		id := match[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

// searchURL builds the results page URL for a normalized query. Each
// join-token separated word is escaped on its own so the join token stays
// a literal space in the query string.
func searchURL(base, query string) string {
	words := strings.Split(query, model.QueryJoinToken)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return base + strings.Join(words, model.QueryJoinToken)
}
