package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/handiism/yt-harvester/internal/config"
	ioutils "github.com/handiism/yt-harvester/internal/io"
	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// Result describes one completed work item.
type Result struct {
	Item model.WorkItem

	// Path is the file written by the platform, before normalization.
	Path string

	Stream   *platform.Stream
	Bytes    int64
	Attempts int
}

// Executor downloads single work items.
type Executor struct {
	client     platform.Client
	settings   *config.Settings
	onProgress model.ProgressFunc
	onBytes    func(delta int64)
}

// NewExecutor creates an Executor. A nil settings uses config.DefaultSettings.
func NewExecutor(client platform.Client, settings *config.Settings, onProgress model.ProgressFunc) *Executor {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &Executor{client: client, settings: settings, onProgress: onProgress}
}

// ObserveBytes registers fn to receive byte count changes while items
// download. Bytes of a failed attempt are taken back with a negative delta,
// so the sum over a run equals the bytes of the completed files.
func (e *Executor) ObserveBytes(fn func(delta int64)) {
	e.onBytes = fn
}

// Execute resolves and downloads item, retrying failed attempts with an
// exponential cooldown.
//
// Errors:
//   - *model.FatalRunError when the destination directory cannot be created
//     or written to
//   - *model.TransientItemError when the item could not be downloaded
//   - ctx.Err() when ctx is done
func (e *Executor) Execute(ctx context.Context, item model.WorkItem) (*Result, error) {
	if err := ioutils.EnsureDir(item.Destination.Dir); err != nil {
		return nil, model.NewFatalRunError("create destination %s: %w", item.Destination.Dir, err)
	}
	if err := ioutils.CheckWritable(item.Destination.Dir); err != nil {
		return nil, model.NewFatalRunError("destination %s is not writable: %w", item.Destination.Dir, err)
	}

	var lastErr error
	for tries := 0; tries < e.settings.DownloadMaxRetries; tries++ {
		if tries > 0 {
			e.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Retry %d/%d for %s: %v",
				tries, e.settings.DownloadMaxRetries-1, item.VideoRef, lastErr))
			if err := e.waitForRetry(ctx, tries-1); err != nil {
				return nil, err
			}
		}

		res, err := e.attempt(ctx, item)
		if err == nil {
			res.Attempts = tries + 1
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if isUnwritable(err) {
			return nil, model.NewFatalRunError("write to %s: %w", item.Destination.Dir, err)
		}

		lastErr = err
		if isPermanent(err) {
			break
		}
	}

	return nil, model.NewTransientItemError("download", item.VideoRef, lastErr)
}

func (e *Executor) attempt(ctx context.Context, item model.WorkItem) (*Result, error) {
	resolveCtx, cancel := withTimeout(ctx, e.settings.RequestTimeout())
	stream, err := e.client.ResolveStream(resolveCtx, item.VideoRef, item.Mode)
	cancel()
	if err != nil {
		return nil, err
	}

	var reported int64
	if e.onBytes != nil {
		stream.OnWrite = func(written, _ int64) {
			e.onBytes(written - reported)
			reported = written
		}
	}

	downloadCtx, cancel := withTimeout(ctx, e.settings.DownloadTimeout())
	defer cancel()

	path, err := e.client.Download(downloadCtx, stream, item.Destination.Dir, item.Destination.FileName)
	if err != nil {
		e.reportBytes(-reported)
		return nil, err
	}

	res := &Result{Item: item, Path: path, Stream: stream}
	if info, err := os.Stat(path); err == nil {
		res.Bytes = info.Size()
	}
	e.reportBytes(res.Bytes - reported)

	e.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Downloaded: %s", filepath.Base(path)))
	return res, nil
}

func (e *Executor) reportBytes(delta int64) {
	if e.onBytes != nil && delta != 0 {
		e.onBytes(delta)
	}
}

func (e *Executor) waitForRetry(ctx context.Context, tries int) error {
	timer := time.NewTimer(e.settings.RetryDelay(tries))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isPermanent reports errors that a retry cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, platform.ErrUnavailable) || errors.Is(err, platform.ErrNoStream)
}

// isUnwritable reports errors that every other item of the run would hit
// too.
func isUnwritable(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EROFS) || errors.Is(err, syscall.ENOSPC)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
