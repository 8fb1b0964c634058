package config

import (
	"errors"
	"os"
	"strings"

	"github.com/handiism/yt-harvester/internal/model"
)

// RequiredHost must appear in a single-run video URL.
const RequiredHost = "www.youtube.com"

// NewSingleRun validates the arguments of a single-video run.
//
// No network access happens here: a URL that does not name the platform
// host is rejected with a ConfigError.
func NewSingleRun(videoURL, destFile string, audioOnly bool) (model.RunConfig, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return model.RunConfig{}, model.NewConfigError("video-url", "is required")
	}
	if !strings.Contains(videoURL, RequiredHost) {
		return model.RunConfig{}, model.NewConfigError("video-url", "%q is not a %s URL", videoURL, RequiredHost)
	}
	if strings.TrimSpace(destFile) == "" {
		return model.RunConfig{}, model.NewConfigError("dest-file", "is required")
	}

	return model.RunConfig{
		Kind:      model.RunSingle,
		AudioOnly: audioOnly,
		VideoURL:  videoURL,
		DestFile:  destFile,
	}, nil
}

// NewBatchRun validates the arguments of a batch run. Scan window and
// duration limit come from settings.
func NewBatchRun(searchFile, destDir string, amount int, audioOnly bool, settings *Settings) (model.RunConfig, error) {
	if settings == nil {
		settings = DefaultSettings()
	}

	if strings.TrimSpace(searchFile) == "" {
		return model.RunConfig{}, model.NewConfigError("search-file", "is required")
	}
	info, err := os.Stat(searchFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.RunConfig{}, model.NewConfigError("search-file", "%s does not exist", searchFile)
		}
		return model.RunConfig{}, &model.ConfigError{Field: "search-file", Err: err}
	}
	if info.IsDir() {
		return model.RunConfig{}, model.NewConfigError("search-file", "%s is a directory", searchFile)
	}

	if strings.TrimSpace(destDir) == "" {
		return model.RunConfig{}, model.NewConfigError("dest-dir", "is required")
	}
	if amount <= 0 {
		return model.RunConfig{}, model.NewConfigError("amount", "must be positive, got %d", amount)
	}
	if err := settings.Validate(); err != nil {
		return model.RunConfig{}, &model.ConfigError{Field: "config", Err: err}
	}

	return model.RunConfig{
		Kind:               model.RunBatch,
		AudioOnly:          audioOnly,
		SearchFile:         searchFile,
		DestDir:            destDir,
		QuotaPerArtist:     amount,
		MaxDurationSeconds: settings.MaxDurationSeconds,
		ScanWindow:         settings.ScanWindow,
	}, nil
}
