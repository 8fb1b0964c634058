package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/yt-harvester/internal/audio"
	"github.com/handiism/yt-harvester/internal/config"
	"github.com/handiism/yt-harvester/internal/harvest"
	"github.com/handiism/yt-harvester/internal/http"
	ioutils "github.com/handiism/yt-harvester/internal/io"
	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// PlaylistBaseName is the file name, without extension, of the run playlist.
const PlaylistBaseName = "playlist"

// Report summarizes a finished run.
type Report struct {
	Planned    int
	Downloaded int
	Failed     int
	Bytes      int64

	// Outputs are the final file paths in work-list order.
	Outputs []string

	// Playlist is the playlist path, or empty when none was written.
	Playlist string

	// Failures holds one error per failed item.
	Failures []error
}

// Manager coordinates a run: harvesting, downloads and post-processing.
//
// Typical use:
//
//	m := download.NewManager(client, settings, onProgress)
//	if err := m.Initialize(ctx, run); err != nil {
//	    return err
//	}
//	report, err := m.StartDownloads(ctx)
type Manager struct {
	settings     *config.Settings
	client       platform.Client
	pipeline     *harvest.Pipeline
	executor     *Executor
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	httpClient   *http.Client
	imageService *ioutils.ImageService

	run   model.RunConfig
	plan  *harvest.Plan
	items []model.WorkItem
	state atomic.Int32

	totalBytes      atomic.Int64
	receivedBytes   atomic.Int64
	totalFiles      int32
	downloadedFiles atomic.Int32
	failedFiles     atomic.Int32

	onProgress model.ProgressFunc
	mu         sync.RWMutex
}

// NewManager creates a new Manager. A nil settings uses config.DefaultSettings.
func NewManager(client platform.Client, settings *config.Settings, onProgress model.ProgressFunc) *Manager {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	m := &Manager{
		settings:     settings,
		client:       client,
		pipeline:     harvest.NewPipeline(client, settings, onProgress),
		executor:     NewExecutor(client, settings, onProgress),
		tagger:       audio.NewTagger(audio.DefaultTagConfig()),
		playlist:     audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat)),
		httpClient:   http.NewClient(settings.UserAgent, settings.RequestTimeout()),
		imageService: ioutils.NewImageService(settings.ThumbnailMaxSize),
		onProgress:   onProgress,
	}
	m.executor.ObserveBytes(func(delta int64) { m.receivedBytes.Add(delta) })
	m.pipeline.OnLoaded(func([]model.ArtistQuery) { m.setState(StateHarvesting) })
	return m
}

// Initialize prepares the work list for run.
//
// Batch runs go through the harvesting pipeline; single runs produce one
// item from the URL and destination file. No file is written here.
func (m *Manager) Initialize(ctx context.Context, run model.RunConfig) error {
	m.mu.Lock()
	m.run = run
	m.mu.Unlock()

	var items []model.WorkItem
	switch run.Kind {
	case model.RunSingle:
		item, err := model.NewSingleWorkItem(run.VideoURL, run.DestFile, run.Mode())
		if err != nil {
			m.setState(StateFailedFatal)
			return &model.ConfigError{Field: "dest-file", Err: err}
		}
		items = []model.WorkItem{item}

	case model.RunBatch:
		m.setState(StateLoading)
		plan, err := m.pipeline.Plan(ctx, run)
		if err != nil {
			m.setState(StateFailedFatal)
			return err
		}
		m.mu.Lock()
		m.plan = plan
		m.mu.Unlock()
		items = m.uniqueItems(plan.Items)

	default:
		return model.NewConfigError("mode", "unknown run kind %d", run.Kind)
	}

	m.mu.Lock()
	m.items = items
	m.totalFiles = int32(len(items))
	m.mu.Unlock()
	return nil
}

// uniqueItems drops repeated items, keeping the first. The same video
// selected for two artists would otherwise be written twice to one file.
func (m *Manager) uniqueItems(items []model.WorkItem) []model.WorkItem {
	seen := make(map[model.WorkItem]bool, len(items))
	out := make([]model.WorkItem, 0, len(items))
	for _, item := range items {
		if seen[item] {
			m.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Skipping duplicate %s", item.VideoRef))
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// StartDownloads downloads every initialized item and post-processes the
// results.
//
// Batch runs skip failed items and succeed as long as the run itself is
// sound; a *model.FatalRunError or cancellation aborts them. Single runs
// fail on any error.
func (m *Manager) StartDownloads(ctx context.Context) (*Report, error) {
	m.mu.RLock()
	run, items := m.run, m.items
	m.mu.RUnlock()

	m.setState(StateDownloading)
	results, failures, err := m.downloadAll(ctx, items, run.Kind == model.RunSingle)
	if err != nil {
		m.setState(StateFailedFatal)
		return nil, err
	}

	report := &Report{Planned: len(items), Failures: failures, Failed: len(failures)}

	var written []*Result
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		if seen[r.Path] {
			m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("%s overwrote %s of an earlier item", r.Item.VideoRef, filepath.Base(r.Path)))
			continue
		}
		seen[r.Path] = true
		written = append(written, r)
	}

	paths := make([]string, len(written))
	for i, r := range written {
		paths[i] = r.Path
		report.Bytes += r.Bytes
	}

	if run.Kind == model.RunBatch {
		m.setState(StateNormalizing)
		normalized, err := NewNormalizer(run.Mode(), m.onProgress).Normalize(paths)
		if err != nil {
			m.onProgress.Emit(model.LevelWarning, err.Error())
		}
		paths = normalized
	}
	report.Outputs = paths
	report.Downloaded = len(paths)

	if m.settings.TagAudio && run.AudioOnly {
		m.tagOutputs(ctx, written, paths)
	}

	if m.settings.CreatePlaylist && len(paths) > 0 {
		report.Playlist = m.writePlaylist(ctx, run, written, paths)
	}

	m.setState(StateDone)
	if report.Failed == 0 {
		m.onProgress.Emit(model.LevelSuccess, fmt.Sprintf("Downloaded %d of %d videos", report.Downloaded, report.Planned))
	} else {
		m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Downloaded %d of %d videos, %d failed", report.Downloaded, report.Planned, report.Failed))
	}
	return report, nil
}

// downloadAll runs the executor over items with bounded concurrency.
// Results are indexed like items; failed items leave a nil slot.
func (m *Manager) downloadAll(ctx context.Context, items []model.WorkItem, failFast bool) ([]*Result, []error, error) {
	results := make([]*Result, len(items))
	itemErrs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentDownloads)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := m.executor.Execute(gctx, item)
			if err != nil {
				if model.IsFatal(err) || failFast || gctx.Err() != nil {
					return err
				}
				m.failedFiles.Add(1)
				itemErrs[i] = err
				m.onProgress.Emit(model.LevelError, fmt.Sprintf("Error downloading %s: %v", item.VideoRef, err))
				return nil // Continue with other items
			}

			results[i] = res
			m.downloadedFiles.Add(1)
			m.totalBytes.Add(max(res.Stream.ContentLength, res.Bytes))
			m.onProgress.Emit(model.LevelInfo, fmt.Sprintf("Downloaded %s (%s)", filepath.Base(res.Path), item.VideoRef))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var failures []error
	for _, err := range itemErrs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	return results, failures, nil
}

func (m *Manager) tagOutputs(ctx context.Context, written []*Result, paths []string) {
	queryByID := m.artistByVideo()

	for i, r := range written {
		if ctx.Err() != nil {
			return
		}
		if filepath.Ext(paths[i]) != model.ModeAudioOnly.TargetExtension() {
			continue
		}

		info := audio.TrackInfo{
			Title:     r.Stream.Title,
			Artist:    r.Stream.Author,
			Album:     queryByID[r.Item.VideoRef],
			SourceURL: model.WatchURL(r.Stream.VideoID),
		}
		if m.settings.EmbedThumbnail && r.Stream.ThumbnailURL != "" {
			info.Cover = m.coverArt(ctx, r.Stream.ThumbnailURL)
		}

		if err := m.tagger.SaveTags(paths[i], info); err != nil {
			m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Error tagging %s: %v", filepath.Base(paths[i]), err))
		}
	}
}

func (m *Manager) coverArt(ctx context.Context, url string) []byte {
	var (
		data []byte
		err  error
	)
	for tries := 0; tries < m.settings.DownloadMaxRetries; tries++ {
		data, err = m.httpClient.DownloadBytes(ctx, url)
		if err == nil || ctx.Err() != nil {
			break
		}
		if werr := m.executor.waitForRetry(ctx, tries); werr != nil {
			break
		}
	}
	if err != nil {
		m.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Thumbnail unavailable: %v", err))
		return nil
	}

	cover, err := m.imageService.CoverArt(ctx, data)
	if err != nil {
		m.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Thumbnail unusable: %v", err))
		return nil
	}
	return cover
}

func (m *Manager) writePlaylist(ctx context.Context, run model.RunConfig, written []*Result, paths []string) string {
	entries := make([]audio.PlaylistEntry, len(written))
	for i, r := range written {
		entries[i] = audio.PlaylistEntry{
			Path:            paths[i],
			Title:           r.Stream.Title,
			DurationSeconds: int(r.Stream.Duration / time.Second),
		}
	}

	content, err := m.playlist.CreatePlaylist(entries)
	if err != nil {
		m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Error creating playlist: %v", err))
		return ""
	}

	dir := run.DestDir
	if run.Kind == model.RunSingle {
		dir = filepath.Dir(paths[0])
	}
	path := filepath.Join(dir, PlaylistBaseName+m.playlist.Format().Extension())

	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		m.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Error writing playlist: %v", err))
		return ""
	}
	m.onProgress.Emit(model.LevelSuccess, fmt.Sprintf("Created playlist %s", path))
	return path
}

func (m *Manager) artistByVideo() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string)
	if m.plan == nil {
		return out
	}
	for _, a := range m.plan.Artists {
		for _, c := range a.Selected {
			if _, ok := out[c.ID]; !ok {
				out[c.ID] = a.Query.Raw
			}
		}
	}
	return out
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.receivedBytes.Load(), m.totalBytes.Load(), m.downloadedFiles.Load(), m.totalFiles
}

// FailedFiles returns the number of items that could not be downloaded.
func (m *Manager) FailedFiles() int32 {
	return m.failedFiles.Load()
}

// Items returns the initialized work list.
func (m *Manager) Items() []model.WorkItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.WorkItem(nil), m.items...)
}

// ArtistSummaries describes each harvested artist, for display.
func (m *Manager) ArtistSummaries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.plan == nil {
		return nil
	}

	names := make([]string, len(m.plan.Artists))
	for i, a := range m.plan.Artists {
		if a.Err != nil {
			names[i] = fmt.Sprintf("%s (search failed)", a.Query.Raw)
			continue
		}
		names[i] = fmt.Sprintf("%s (%d of %d qualify, %d selected)", a.Query.Raw, len(a.Qualified), a.Scanned, len(a.Selected))
	}
	return names
}

// ArtistsDone returns how many artists finished harvesting so far.
func (m *Manager) ArtistsDone() int {
	return m.pipeline.ArtistsDone()
}

// State returns the current run state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

// IsCancelled reports whether err comes from cancelling the run.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
