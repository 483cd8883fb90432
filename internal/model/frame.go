package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// FITSExtension is the file extension used for downloaded plate frame images.
const FITSExtension = ".fits"

// Frame represents one plate-frame observation from the Skylab catalog.
//
// A frame is a single exposure belonging to a plate. The catalog stores one
// row per frame; the columns the downloader cares about are promoted to
// typed fields, everything else the row carried is kept in Fields so that
// ad-hoc queries lose nothing.
//
// Frames are read-only snapshots of catalog rows. Nothing in this program
// mutates the catalog.
//
// Example:
//
//	frame := model.Frame{Name: "S052-0042", PlateName: "S052", FITSLink: url}
//	dest := frame.FITSPath("/data/fits") // "/data/fits/S052-0042.fits"
type Frame struct {
	// Name is the unique frame identifier (catalog column NAME).
	Name string

	// PlateName is the grouping key shared by all frames on the same
	// plate (catalog column PLATE_NAME).
	PlateName string

	// FITSLink is the remote URL of the frame's FITS image (catalog
	// column LINK_FTS). Empty when the catalog has no image for the row.
	FITSLink string

	// Fields holds every remaining column of the catalog row, keyed by
	// column name as returned by the database.
	Fields map[string]any
}

// HasLink reports whether the frame carries a non-empty FITS link.
func (f Frame) HasLink() bool {
	return f.FITSLink != ""
}

// FITSFileName returns the local file name for the frame's FITS image.
//
// The frame name is sanitized so that identifiers containing characters
// that are invalid in file names cannot escape the output directory or
// fail on restrictive file systems.
func (f Frame) FITSFileName() string {
	return SanitizeFileName(f.Name) + FITSExtension
}

// FITSPath returns the full local path for the frame's FITS image inside dir.
func (f Frame) FITSPath(dir string) string {
	return filepath.Join(dir, f.FITSFileName())
}

// Frames is an ordered result set of catalog rows.
//
// An empty Frames value is the ordinary "not found" outcome of a lookup,
// never an error.
type Frames []Frame

// Empty reports whether the result set contains no rows.
func (fs Frames) Empty() bool {
	return len(fs) == 0
}

// Names returns the frame names in result-set order.
func (fs Frames) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// WithLinks returns the subset of frames that carry a non-empty FITS link.
func (fs Frames) WithLinks() Frames {
	var out Frames
	for _, f := range fs {
		if f.HasLink() {
			out = append(out, f)
		}
	}
	return out
}

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	SanitizeFileName("S052/0042: A") // Returns "S052_0042_ A"
func SanitizeFileName(name string) string {
	// Replace invalid path/file characters
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	// Remove trailing dots
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	// Replace multiple whitespace with single space
	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	// Remove trailing whitespace
	name = strings.TrimRight(name, " ")

	return name
}
