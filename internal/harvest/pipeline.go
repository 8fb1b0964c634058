package harvest

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/yt-harvester/internal/config"
	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// ArtistResult is the outcome of the per-artist stages for one query.
type ArtistResult struct {
	Query model.ArtistQuery

	// Scanned is the number of candidates kept after the scan window.
	Scanned int

	// Qualified are the candidates that passed the duration filter.
	Qualified []model.VideoCandidate

	// Selected are the first QuotaPerArtist qualifying candidates.
	Selected []model.VideoCandidate

	// Err is set when the search itself failed; the artist contributes no items.
	Err error
}

// Plan is the output of the harvesting stages: what will be downloaded.
type Plan struct {
	Artists []ArtistResult
	Items   []model.WorkItem
}

// Pipeline runs Loading, Scraping, Filtering and Selecting for a batch run.
//
// Artists are processed concurrently, up to MaxConcurrentArtists at a time.
// Results are stored by artist index, so the work list order depends only
// on the search file and the platform responses.
type Pipeline struct {
	client     platform.Client
	settings   *config.Settings
	onProgress model.ProgressFunc
	onLoaded   func(queries []model.ArtistQuery)

	artistsDone atomic.Int32
}

// NewPipeline creates a Pipeline. A nil settings uses config.DefaultSettings.
func NewPipeline(client platform.Client, settings *config.Settings, onProgress model.ProgressFunc) *Pipeline {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &Pipeline{client: client, settings: settings, onProgress: onProgress}
}

// OnLoaded registers fn to run once Plan has read the search file, before
// the first platform call.
func (p *Pipeline) OnLoaded(fn func(queries []model.ArtistQuery)) {
	p.onLoaded = fn
}

// Plan loads the search file and harvests a work list for run.
//
// An unreadable search file is a *model.ConfigError and happens before any
// platform call. Per-artist failures are reported and skipped. The only
// other error is cancellation of ctx.
func (p *Pipeline) Plan(ctx context.Context, run model.RunConfig) (*Plan, error) {
	queries, err := LoadArtistFile(run.SearchFile)
	if err != nil {
		return nil, err
	}
	p.onProgress.Emit(model.LevelInfo, fmt.Sprintf("Loaded %d artists from %s", len(queries), run.SearchFile))
	if p.onLoaded != nil {
		p.onLoaded(queries)
	}

	return p.PlanQueries(ctx, queries, run)
}

// PlanQueries harvests a work list for already loaded queries.
func (p *Pipeline) PlanQueries(ctx context.Context, queries []model.ArtistQuery, run model.RunConfig) (*Plan, error) {
	scanWindow := run.ScanWindow
	if scanWindow <= 0 {
		scanWindow = p.settings.ScanWindow
	}
	maxSeconds := run.MaxDurationSeconds
	if maxSeconds <= 0 {
		maxSeconds = p.settings.MaxDurationSeconds
	}

	scraper := NewScraper(p.client, scanWindow, p.settings.RequestTimeout())
	filter := NewDurationFilter(p.client, maxSeconds, p.settings.RequestTimeout(), p.onProgress)

	results := make([]ArtistResult, len(queries))
	p.artistsDone.Store(0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.MaxConcurrentArtists)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			res, err := p.harvestArtist(gctx, scraper, filter, q, run.QuotaPerArtist)
			if err != nil {
				return err
			}
			results[i] = res
			p.artistsDone.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := make([][]model.VideoCandidate, len(results))
	for i, r := range results {
		groups[i] = r.Selected
	}

	plan := &Plan{
		Artists: results,
		Items:   Accumulate(groups, run.Mode(), run.DestDir),
	}
	p.onProgress.Emit(model.LevelInfo, fmt.Sprintf("Selected %d videos for %d artists", len(plan.Items), len(queries)))
	return plan, nil
}

// ArtistsDone returns how many artists have finished the per-artist stages.
func (p *Pipeline) ArtistsDone() int {
	return int(p.artistsDone.Load())
}

// harvestArtist returns an error only when ctx is done. Search failures
// are recorded on the result.
func (p *Pipeline) harvestArtist(ctx context.Context, scraper *Scraper, filter *DurationFilter, q model.ArtistQuery, quota int) (ArtistResult, error) {
	res := ArtistResult{Query: q}

	p.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Searching: %s", q.Query))
	candidates, err := scraper.Scrape(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Err = err
		p.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Search failed for %s: %v", q.Raw, err))
		return res, nil
	}
	res.Scanned = len(candidates)

	qualified, err := filter.Filter(ctx, candidates)
	if err != nil {
		return res, err
	}
	res.Qualified = qualified
	res.Selected = SelectQuota(qualified, quota)

	level := model.LevelInfo
	if len(res.Selected) < quota {
		level = model.LevelWarning
	}
	p.onProgress.Emit(level, fmt.Sprintf("%s: %d of %d results qualify, selected %d",
		q.Raw, len(qualified), len(candidates), len(res.Selected)))

	return res, nil
}
