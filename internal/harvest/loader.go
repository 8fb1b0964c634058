package harvest

import (
	"bufio"
	"io"
	"os"

	"github.com/handiism/yt-harvester/internal/model"
)

const maxLineLength = 1 << 20

// LoadArtists reads one artist name per line and normalizes each into a
// query. Blank lines are skipped; duplicates and file order are kept.
func LoadArtists(r io.Reader) ([]model.ArtistQuery, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var queries []model.ArtistQuery
	for scanner.Scan() {
		q := model.NewArtistQuery(scanner.Text())
		if q.IsEmpty() {
			continue
		}
		queries = append(queries, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return queries, nil
}

// LoadArtistFile opens path and reads it with LoadArtists. Any failure is
// a *model.ConfigError.
func LoadArtistFile(path string) ([]model.ArtistQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.ConfigError{Field: "search-file", Err: err}
	}
	defer f.Close()

	queries, err := LoadArtists(f)
	if err != nil {
		return nil, &model.ConfigError{Field: "search-file", Err: err}
	}
	return queries, nil
}
