package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Search and filter settings
	ScanWindow         int `json:"scan_window"`
	MaxDurationSeconds int `json:"max_duration_seconds"`

	// Concurrency
	MaxConcurrentArtists   int `json:"max_concurrent_artists"`
	MaxConcurrentDownloads int `json:"max_concurrent_downloads"`

	// Timeouts and retries
	RequestTimeoutSeconds  int     `json:"request_timeout_seconds"`
	DownloadTimeoutSeconds int     `json:"download_timeout_seconds"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`

	// HTTP
	UserAgent string `json:"user_agent"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, m3u8, pls

	// Tag settings
	TagAudio         bool `json:"tag_audio"`
	EmbedThumbnail   bool `json:"embed_thumbnail"`
	ThumbnailMaxSize int  `json:"thumbnail_max_size"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ScanWindow:         100,
		MaxDurationSeconds: 600,

		MaxConcurrentArtists:   4,
		MaxConcurrentDownloads: 4,

		RequestTimeoutSeconds:  30,
		DownloadTimeoutSeconds: 600,
		DownloadMaxRetries:     3,
		DownloadRetryCooldown:  0.5,
		DownloadRetryExponent:  2.0,

		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",

		CreatePlaylist: false,
		PlaylistFormat: "m3u",

		TagAudio:         false,
		EmbedThumbnail:   true,
		ThumbnailMaxSize: 500,
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error: the defaults are returned. Fields absent
// from the file keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects limits that would stall or disable the pipeline.
func (s *Settings) Validate() error {
	checks := []struct {
		field string
		value int
	}{
		{"scan_window", s.ScanWindow},
		{"max_duration_seconds", s.MaxDurationSeconds},
		{"max_concurrent_artists", s.MaxConcurrentArtists},
		{"max_concurrent_downloads", s.MaxConcurrentDownloads},
		{"request_timeout_seconds", s.RequestTimeoutSeconds},
		{"download_timeout_seconds", s.DownloadTimeoutSeconds},
		{"download_max_retries", s.DownloadMaxRetries},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", c.field, c.value)
		}
	}

	if s.DownloadRetryCooldown < 0 || s.DownloadRetryExponent < 1 {
		return fmt.Errorf("invalid retry policy: cooldown %.2f, exponent %.2f",
			s.DownloadRetryCooldown, s.DownloadRetryExponent)
	}

	switch s.PlaylistFormat {
	case "m3u", "m3u8", "pls":
	default:
		return fmt.Errorf("unsupported playlist_format %q", s.PlaylistFormat)
	}

	return nil
}

// RequestTimeout returns the bound for search, metadata and resolve calls.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the bound for one transfer attempt.
func (s *Settings) DownloadTimeout() time.Duration {
	return time.Duration(s.DownloadTimeoutSeconds) * time.Second
}

// RetryDelay returns the cooldown before retry number tries (zero based).
func (s *Settings) RetryDelay(tries int) time.Duration {
	cooldown := s.DownloadRetryCooldown
	for i := 0; i < tries; i++ {
		cooldown *= s.DownloadRetryExponent
	}
	return time.Duration(cooldown * float64(time.Second))
}
