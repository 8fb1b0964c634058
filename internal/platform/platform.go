// Package platform defines the boundary between the harvesting pipeline and
// a video platform.
//
// The pipeline only ever talks to a Client. The YouTube implementation lives
// in package youtube; tests use testutil.FakePlatform.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/handiism/yt-harvester/internal/model"
)

var (
	// ErrNoStream is returned by ResolveStream when the video has no stream
	// matching the requested mode.
	ErrNoStream = errors.New("no matching stream")

	// ErrUnavailable is returned when the video exists but cannot be
	// fetched: private, age restricted, removed, or otherwise unplayable.
	ErrUnavailable = errors.New("video unavailable")
)

// Stream is a downloadable stream handle.
//
// Metadata fields are filled by ResolveStream and are safe to read by any
// caller. Source belongs to the Client that produced the Stream.
type Stream struct {
	VideoID  string
	Title    string
	Author   string
	Duration time.Duration

	// MimeType is the raw container/codec description, e.g. `audio/mp4; codecs="mp4a.40.2"`.
	MimeType string

	// Extension is the default file extension for the container, including the dot.
	Extension string

	// ContentLength is the expected size in bytes, or 0 when unknown.
	ContentLength int64

	// ThumbnailURL is the largest thumbnail, or empty.
	ThumbnailURL string

	Mode model.Mode

	// OnWrite, when set, is called during Download with the bytes written so
	// far and ContentLength.
	OnWrite func(written, total int64)

	Source any
}

// Client is the video platform the pipeline harvests from.
//
// Every method must honor ctx cancellation and deadlines.
type Client interface {
	// Search returns video IDs for query in page order. An empty result is not an error.
	Search(ctx context.Context, query string) ([]string, error)

	// Duration returns the length of the video with the given ID.
	Duration(ctx context.Context, videoID string) (time.Duration, error)

	// ResolveStream picks the stream to download for videoRef, which is
	// either a video ID or a watch URL.
	ResolveStream(ctx context.Context, videoRef string, mode model.Mode) (*Stream, error)

	// Download writes stream into destDir and returns the path written.
	// An empty fileName selects the platform default name. On error no
	// file is left behind.
	Download(ctx context.Context, stream *Stream, destDir, fileName string) (string, error)
}
