package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// DurationFilter keeps candidates no longer than a maximum duration.
type DurationFilter struct {
	client     platform.Client
	maxSeconds int
	timeout    time.Duration
	onProgress model.ProgressFunc
}

// NewDurationFilter creates a filter that accepts videos of at most
// maxSeconds. Each metadata request is bounded by timeout.
func NewDurationFilter(client platform.Client, maxSeconds int, timeout time.Duration, onProgress model.ProgressFunc) *DurationFilter {
	return &DurationFilter{
		client:     client,
		maxSeconds: maxSeconds,
		timeout:    timeout,
		onProgress: onProgress,
	}
}

// Filter fetches the duration of every candidate, in order, and returns
// the qualifying ones with their duration filled in.
//
// A candidate whose metadata cannot be fetched does not qualify; the
// failure is reported and the scan continues. Only cancellation of ctx
// stops the scan, in which case ctx.Err() is returned.
func (f *DurationFilter) Filter(ctx context.Context, candidates []model.VideoCandidate) ([]model.VideoCandidate, error) {
	qualifying := make([]model.VideoCandidate, 0, len(candidates))

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seconds, err := f.duration(ctx, c.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Skipping %s: %v", c.ID, err))
			continue
		}

		if seconds <= f.maxSeconds {
			qualifying = append(qualifying, c.WithDuration(seconds))
		}
	}

	return qualifying, nil
}

func (f *DurationFilter) duration(ctx context.Context, id string) (int, error) {
	ctx, cancel := withTimeout(ctx, f.timeout)
	defer cancel()

	d, err := f.client.Duration(ctx, id)
	if err != nil {
		return 0, model.NewTransientItemError("duration", id, err)
	}
	return int(d / time.Second), nil
}
