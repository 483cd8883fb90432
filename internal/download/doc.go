// Package download provides the orchestration logic for bulk-fetching
// FITS images referenced by the plate-frame catalog.
//
// # Manager
//
// The Manager coordinates a download batch:
//
//  1. Ensure the output directory exists (parents included)
//  2. Resolve frame names or a custom query to catalog rows
//  3. Build one task per matched row with a non-empty FITS link
//  4. Fetch all tasks concurrently on a bounded worker pool
//  5. Aggregate matched rows and successfully written file paths
//
// # Basic Usage
//
//	manager := download.NewManager(settings, repo, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	frames, paths, err := manager.DownloadByNames(ctx, []string{"S052-0001"}, download.Options{})
//
// # Failure Semantics
//
// The two entry points fail differently on an empty match set, on purpose:
//
//   - DownloadByNames tolerates missing names and link-less rows with
//     warnings; even an input where nothing matches returns success with
//     empty results.
//   - DownloadByQuery returns ErrNoQueryMatches when the query matches
//     zero rows.
//
// Per-file transfer failures (non-2xx status, network error, write error)
// are always soft: a warning event, no path in the result, no retry, and
// no effect on sibling downloads.
//
// # Concurrency
//
// Tasks run on an errgroup-bounded pool. The cap comes from
// Options.MaxParallel, then the configured value, then min(32, cpus+4).
// Completion order is unspecified; callers must treat the path list as a
// set.
package download
