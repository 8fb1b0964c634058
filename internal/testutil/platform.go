// Package testutil provides an in-memory platform.Client for tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// FakePlatform is a scriptable platform.Client.
//
// Search results, durations and failures are configured up front; every
// call is recorded. Download writes a small file named after the video ID
// with the extension of the mode's default container, so outputs look like
// what the real platform produces.
//
// Example:
//
//	fake := testutil.NewFakePlatform()
//	fake.Results["Miles+Davis"] = []string{"aaaaaaaaaaa", "bbbbbbbbbbb"}
//	fake.Durations["aaaaaaaaaaa"] = 3 * time.Minute
//	fake.DownloadErrors["bbbbbbbbbbb"] = errors.New("boom")
type FakePlatform struct {
	Results        map[string][]string
	Durations      map[string]time.Duration
	SearchErrors   map[string]error
	DurationErrors map[string]error
	ResolveErrors  map[string]error
	DownloadErrors map[string]error

	// Titles overrides the resolved title. Defaults to "Video <id>".
	Titles map[string]string

	// Content is written into each downloaded file. Defaults to the video ID.
	Content func(videoID string) []byte

	// FileName names a batch download. Defaults to <id><extension>.
	FileName func(stream *platform.Stream) string

	// SearchHook, DurationHook and DownloadHook run before the matching
	// call and may block. A returned error fails the call.
	SearchHook   func(ctx context.Context, query string) error
	DurationHook func(ctx context.Context, videoID string) error
	DownloadHook func(ctx context.Context, videoID string) error

	mu             sync.Mutex
	searchCalls    []string
	durationCalls  []string
	resolveCalls   []string
	downloadCalls  []string
	downloadCounts map[string]int
}

var _ platform.Client = (*FakePlatform)(nil)

// NewFakePlatform creates an empty fake.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		Results:        make(map[string][]string),
		Durations:      make(map[string]time.Duration),
		SearchErrors:   make(map[string]error),
		DurationErrors: make(map[string]error),
		ResolveErrors:  make(map[string]error),
		DownloadErrors: make(map[string]error),
		Titles:         make(map[string]string),
		downloadCounts: make(map[string]int),
	}
}

// Search returns the configured results for query.
func (f *FakePlatform) Search(ctx context.Context, query string) ([]string, error) {
	f.record(&f.searchCalls, query)
	if f.SearchHook != nil {
		if err := f.SearchHook(ctx, query); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.SearchErrors[query]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.Results[query]...), nil
}

// Duration returns the configured duration. Unknown IDs fail with
// platform.ErrUnavailable.
func (f *FakePlatform) Duration(ctx context.Context, videoID string) (time.Duration, error) {
	f.record(&f.durationCalls, videoID)
	if f.DurationHook != nil {
		if err := f.DurationHook(ctx, videoID); err != nil {
			return 0, err
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := f.DurationErrors[videoID]; err != nil {
		return 0, err
	}
	d, ok := f.Durations[videoID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", platform.ErrUnavailable, videoID)
	}
	return d, nil
}

// ResolveStream accepts a video ID or a watch URL.
func (f *FakePlatform) ResolveStream(ctx context.Context, videoRef string, mode model.Mode) (*platform.Stream, error) {
	id := VideoIDFromRef(videoRef)
	f.record(&f.resolveCalls, id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.ResolveErrors[id]; err != nil {
		return nil, err
	}

	title := "Video " + id
	if t, ok := f.Titles[id]; ok {
		title = t
	}

	return &platform.Stream{
		VideoID:   id,
		Title:     title,
		Author:    "Channel",
		Duration:  f.Durations[id],
		MimeType:  "video/mp4",
		Extension: ".mp4",
		Mode:      mode,
	}, nil
}

// Download writes the fake content to destDir/fileName. An empty fileName
// comes from the FileName func, or is <videoID><extension>. The stream's
// OnWrite hook sees the full content before injected failures apply, like
// a transfer that breaks at the end.
func (f *FakePlatform) Download(ctx context.Context, stream *platform.Stream, destDir, fileName string) (string, error) {
	f.record(&f.downloadCalls, stream.VideoID)
	f.mu.Lock()
	f.downloadCounts[stream.VideoID]++
	f.mu.Unlock()

	if f.DownloadHook != nil {
		if err := f.DownloadHook(ctx, stream.VideoID); err != nil {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content := []byte(stream.VideoID)
	if f.Content != nil {
		content = f.Content(stream.VideoID)
	}
	if stream.OnWrite != nil {
		stream.OnWrite(int64(len(content)), int64(len(content)))
	}
	if err := f.DownloadErrors[stream.VideoID]; err != nil {
		return "", err
	}

	if fileName == "" && f.FileName != nil {
		fileName = f.FileName(stream)
	}
	if fileName == "" {
		fileName = stream.VideoID + stream.Extension
	}

	path := filepath.Join(destDir, fileName)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SearchCalls returns the queries searched, in call order.
func (f *FakePlatform) SearchCalls() []string { return f.snapshot(&f.searchCalls) }

// DurationCalls returns the IDs whose duration was requested.
func (f *FakePlatform) DurationCalls() []string { return f.snapshot(&f.durationCalls) }

// ResolveCalls returns the IDs resolved.
func (f *FakePlatform) ResolveCalls() []string { return f.snapshot(&f.resolveCalls) }

// DownloadCalls returns the IDs downloaded.
func (f *FakePlatform) DownloadCalls() []string { return f.snapshot(&f.downloadCalls) }

// DownloadCount returns how many download attempts were made for id.
func (f *FakePlatform) DownloadCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloadCounts[id]
}

// TotalCalls returns the number of platform calls of any kind.
func (f *FakePlatform) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls) + len(f.durationCalls) + len(f.resolveCalls) + len(f.downloadCalls)
}

func (f *FakePlatform) record(calls *[]string, v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*calls = append(*calls, v)
}

func (f *FakePlatform) snapshot(calls *[]string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), *calls...)
}

// VideoIDFromRef strips the watch URL prefix from ref, if present.
func VideoIDFromRef(ref string) string {
	if i := strings.Index(ref, "v="); i >= 0 {
		id := ref[i+2:]
		if j := strings.IndexAny(id, "&#"); j >= 0 {
			id = id[:j]
		}
		return id
	}
	return ref
}
