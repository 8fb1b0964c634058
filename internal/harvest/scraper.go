package harvest

import (
	"context"
	"time"

	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// Scraper turns one artist query into raw candidates.
type Scraper struct {
	client     platform.Client
	scanWindow int
	timeout    time.Duration
}

// NewScraper creates a Scraper that keeps at most scanWindow candidates
// per query. A non-positive timeout leaves the search unbounded apart
// from ctx.
func NewScraper(client platform.Client, scanWindow int, timeout time.Duration) *Scraper {
	return &Scraper{client: client, scanWindow: scanWindow, timeout: timeout}
}

// Scrape issues one search for q and returns the first scanWindow hits in
// platform order. No hits is an empty slice, not an error.
func (s *Scraper) Scrape(ctx context.Context, q model.ArtistQuery) ([]model.VideoCandidate, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.client.Search(ctx, q.Query)
	if err != nil {
		return nil, err
	}

	if s.scanWindow > 0 && len(ids) > s.scanWindow {
		ids = ids[:s.scanWindow]
	}

	candidates := make([]model.VideoCandidate, len(ids))
	for i, id := range ids {
		candidates[i] = model.NewVideoCandidate(id)
	}
	return candidates, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
