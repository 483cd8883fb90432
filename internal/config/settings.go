package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// Settings holds all configuration options.
type Settings struct {
	// Catalog settings
	DatabasePath string `json:"database_path"`

	// Download settings
	OutputDir             string `json:"output_dir"`
	MaxParallelDownloads  int    `json:"max_parallel_downloads"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
	ChunkSize             int    `json:"chunk_size"`
	UserAgent             string `json:"user_agent"`
}

// DefaultSettings returns settings with default values.
//
// The output directory is a relative path, resolved against the working
// directory at download time. MaxParallelDownloads of zero means "choose
// automatically": min(32, number of CPUs + 4).
func DefaultSettings() *Settings {
	return &Settings{
		DatabasePath:          "skylab-data.db",
		OutputDir:             "fits_downloads",
		MaxParallelDownloads:  0,
		RequestTimeoutSeconds: 60,
		ChunkSize:             8192,
		UserAgent:             "skylab-fits-downloader",
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error; defaults are returned instead so a bare
// installation works without any configuration.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
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

// Workers returns the effective download worker count.
//
// A caller-supplied override wins; otherwise the configured value applies,
// and when that is zero or negative the pool defaults to a small multiple
// of the available hardware parallelism.
func (s *Settings) Workers(override int) int {
	n := s.MaxParallelDownloads
	if override > 0 {
		n = override
	}
	if n <= 0 {
		n = runtime.NumCPU() + 4
		if n > 32 {
			n = 32
		}
	}
	return n
}
