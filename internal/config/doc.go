// Package config provides configuration management for yt-harvester.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation of run arguments into an immutable model.RunConfig
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Scans the first 100 search results per artist
//	// Keeps videos up to 600 seconds long
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	// A missing file yields the defaults
//
// # Run Arguments
//
// NewSingleRun and NewBatchRun check command line arguments before any
// network activity and report problems as *model.ConfigError:
//
//	run, err := config.NewBatchRun("artists.txt", "./videos", 3, false, settings)
package config
