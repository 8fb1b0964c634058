package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	yt "github.com/kkdai/youtube/v2"

	httpclient "github.com/handiism/yt-harvester/internal/http"
	ioutils "github.com/handiism/yt-harvester/internal/io"
	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// Client implements platform.Client for YouTube.
//
// Search scrapes the public results page through the shared HTTP client;
// metadata and streams go through github.com/kkdai/youtube/v2. Metadata
// requests share the HTTP client timeout, stream transfers are bounded only
// by their context.
//
// Example usage:
//
//	hc := httpclient.NewClient(settings.UserAgent, settings.RequestTimeout())
//	client := youtube.NewClient(hc)
//
//	ids, err := client.Search(ctx, "Miles+Davis")
//	stream, err := client.ResolveStream(ctx, ids[0], model.ModeAudioOnly)
//	path, err := client.Download(ctx, stream, "/music", "")
type Client struct {
	// SearchURL is the results page prefix. Defaults to DefaultSearchURL.
	SearchURL string

	http     *httpclient.Client
	metadata *yt.Client
	streams  *yt.Client
}

var _ platform.Client = (*Client)(nil)

// NewClient creates a YouTube client on top of hc.
func NewClient(hc *httpclient.Client) *Client {
	return &Client{
		SearchURL: DefaultSearchURL,
		http:      hc,
		metadata:  &yt.Client{HTTPClient: hc.HTTPClient()},
		streams:   &yt.Client{HTTPClient: hc.StreamingClient()},
	}
}

// Search fetches the results page for query and returns the video IDs on
// it in page order, without duplicates.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	page, err := c.http.GetString(ctx, searchURL(c.SearchURL, query))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return ParseSearchResults(page), nil
}

// Duration returns the length of a video.
func (c *Client) Duration(ctx context.Context, videoID string) (time.Duration, error) {
	video, err := c.metadata.GetVideoContext(ctx, videoID)
	if err != nil {
		return 0, classifyError(err)
	}
	return video.Duration, nil
}

// ResolveStream fetches metadata for videoRef and selects the stream to
// download for mode.
func (c *Client) ResolveStream(ctx context.Context, videoRef string, mode model.Mode) (*platform.Stream, error) {
	video, err := c.metadata.GetVideoContext(ctx, videoRef)
	if err != nil {
		return nil, classifyError(err)
	}

	format, err := selectFormat(video.Formats, mode)
	if err != nil {
		return nil, err
	}

	return &platform.Stream{
		VideoID:       video.ID,
		Title:         video.Title,
		Author:        video.Author,
		Duration:      video.Duration,
		MimeType:      format.MimeType,
		Extension:     containerExtension(format.MimeType),
		ContentLength: format.ContentLength,
		ThumbnailURL:  largestThumbnail(video.Thumbnails),
		Mode:          mode,
		Source:        &resolved{video: video, format: format},
	}, nil
}

// Download streams the selected format into destDir.
//
// With an empty fileName the file is named by DefaultFileName. Bytes go to
// a partial file that is renamed into place once the copy completes.
func (c *Client) Download(ctx context.Context, stream *platform.Stream, destDir, fileName string) (string, error) {
	src, ok := stream.Source.(*resolved)
	if !ok || src == nil {
		return "", fmt.Errorf("stream %s was not resolved by this client", stream.VideoID)
	}

	if fileName == "" {
		fileName = DefaultFileName(stream)
	}
	dest := filepath.Join(destDir, fileName)

	body, _, err := c.streams.GetStreamContext(ctx, src.video, src.format)
	if err != nil {
		return "", classifyError(err)
	}
	defer body.Close()

	pf, err := ioutils.CreatePartial(dest)
	if err != nil {
		return "", err
	}

	var w io.Writer = pf
	if stream.OnWrite != nil {
		w = &httpclient.ProgressWriter{Writer: pf, Total: stream.ContentLength, OnUpdate: stream.OnWrite}
	}

	if _, err := ioutils.CopyContext(ctx, w, body); err != nil {
		pf.Abort()
		return "", fmt.Errorf("copy %s: %w", stream.VideoID, err)
	}

	if err := pf.Commit(); err != nil {
		return "", err
	}
	return pf.FinalPath(), nil
}

// DefaultFileName is the name a stream gets when the caller does not pick
// one: the sanitized title followed by the video ID in brackets, so videos
// sharing a title never share a file.
//
// Example:
//
//	DefaultFileName(&platform.Stream{VideoID: "abc", Title: "So What", Extension: ".mp4"})
//	// "So What [abc].mp4"
func DefaultFileName(stream *platform.Stream) string {
	name := ioutils.SanitizeFileName(stream.Title)
	if name == "" {
		return stream.VideoID + stream.Extension
	}
	return name + " [" + stream.VideoID + "]" + stream.Extension
}

type resolved struct {
	video  *yt.Video
	format *yt.Format
}

// classifyError maps library errors for videos that exist but cannot be
// played to platform.ErrUnavailable. Everything else is returned as is.
func classifyError(err error) error {
	switch {
	case errors.Is(err, yt.ErrVideoPrivate),
		errors.Is(err, yt.ErrLoginRequired),
		errors.Is(err, yt.ErrNotPlayableInEmbed),
		errors.Is(err, yt.ErrInvalidCharactersInVideoID),
		errors.Is(err, yt.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %v", platform.ErrUnavailable, err)
	}

	var playability *yt.ErrPlayabiltyStatus
	if errors.As(err, &playability) {
		return fmt.Errorf("%w: %v", platform.ErrUnavailable, err)
	}

	var status yt.ErrUnexpectedStatusCode
	if errors.As(err, &status) && (int(status) == http.StatusNotFound || int(status) == http.StatusGone) {
		return fmt.Errorf("%w: %v", platform.ErrUnavailable, err)
	}

	return err
}
