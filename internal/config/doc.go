// Package config provides configuration management for fits-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Effective worker-count selection for the download pool
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Catalog read from ./skylab-data.db
//	// Downloads to ./fits_downloads
//	// Worker count chosen from hardware parallelism
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.OutputDir = "/data/fits"
//	err := settings.Save("/path/to/config.json")
package config
