// Package ioutils provides file system utilities for fits-downloader.
package ioutils

import "os"

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned, so repeated
// download runs into the same output directory are safe.
//
// Example:
//
//	err := EnsureDir("/data/fits/skylab/s052")
//	// Creates /data, /data/fits, ... as needed
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
