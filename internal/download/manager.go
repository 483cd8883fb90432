package download

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skylab2iai/fits-downloader/internal/catalog"
	"github.com/skylab2iai/fits-downloader/internal/config"
	"github.com/skylab2iai/fits-downloader/internal/http"
	ioutils "github.com/skylab2iai/fits-downloader/internal/io"
	"github.com/skylab2iai/fits-downloader/internal/model"
)

// ErrNoQueryMatches indicates a custom download query matched zero frames.
//
// This is deliberately fatal only on the query path: downloading by frame
// names tolerates individual misses (and even an all-miss input) with
// warnings, but a custom query that matches nothing is treated as a caller
// mistake.
var ErrNoQueryMatches = errors.New("no plate frames matched the query")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	// Batch identifies the download invocation the event belongs to, so
	// front ends can tell interleaved batches apart.
	Batch string

	// Frame is the frame name the event concerns; empty for batch-level
	// messages.
	Frame string

	Message string
	Level   ProgressLevel
}

// Options control a single download invocation.
type Options struct {
	// OutputDir overrides the configured output directory. Empty means
	// use the configured value (default "fits_downloads", resolved
	// against the working directory at call time).
	OutputDir string

	// MaxParallel caps the worker pool. Zero or negative means use the
	// configured value, or min(32, cpus+4) when that is unset too.
	MaxParallel int
}

// task pairs a resolved FITS URL with its destination file. Tasks exist
// only for frames that matched a lookup and carry a non-empty link.
type task struct {
	frame model.Frame
	url   string
	dest  string
}

// Manager coordinates bulk FITS downloads.
//
// Resolution of frame names to catalog rows happens sequentially before the
// worker pool is spawned; the pool then fetches all files concurrently and
// the calling goroutine blocks until every task has finished. Per-file
// failures are reported through the progress callback and reflected only by
// absence from the returned path list; they never abort sibling downloads
// and are never retried.
type Manager struct {
	settings *config.Settings
	repo     *catalog.Repository
	client   *http.Client

	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64

	onProgress func(ProgressEvent)
}

// NewManager creates a download Manager.
//
// onProgress may be nil when the caller does not care about per-file
// reporting.
func NewManager(settings *config.Settings, repo *catalog.Repository, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings: settings,
		repo:     repo,
		client: http.NewClient(
			time.Duration(settings.RequestTimeoutSeconds)*time.Second,
			settings.UserAgent,
			settings.ChunkSize,
		),
		onProgress: onProgress,
	}
}

// DownloadByNames downloads the FITS images for the named frames.
//
// Each name is resolved through the catalog in caller order. A name with no
// catalog row, or whose row has an empty link field, produces a warning and
// is skipped; this is non-fatal per name, and an input where every name
// misses still returns success with empty results.
//
// The returned frame set is the union of all matched rows, including rows
// whose download failed or was skipped. The path list holds only the files
// that were written successfully, in completion order, which varies between
// runs.
func (m *Manager) DownloadByNames(ctx context.Context, names []string, opts Options) (model.Frames, []string, error) {
	batch := uuid.NewString()
	outputDir := m.outputDir(opts)

	if err := ioutils.EnsureDir(outputDir); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	matched := model.Frames{}
	var tasks []task

	for _, name := range names {
		frames, err := m.repo.FrameByName(name)
		if err != nil {
			m.progress(ProgressEvent{Batch: batch, Frame: name, Message: fmt.Sprintf("Error resolving frame '%s': %v", name, err), Level: LevelWarning})
			continue
		}

		if frames.Empty() {
			m.progress(ProgressEvent{Batch: batch, Frame: name, Message: fmt.Sprintf("Frame '%s' not found in catalog", name), Level: LevelWarning})
			continue
		}

		matched = append(matched, frames...)

		for _, frame := range frames {
			if !frame.HasLink() {
				m.progress(ProgressEvent{Batch: batch, Frame: frame.Name, Message: fmt.Sprintf("Empty FITS link for frame '%s'", frame.Name), Level: LevelWarning})
				continue
			}
			tasks = append(tasks, task{frame: frame, url: frame.FITSLink, dest: frame.FITSPath(outputDir)})
		}
	}

	paths := m.run(ctx, batch, tasks, opts.MaxParallel)
	return matched, paths, nil
}

// DownloadByQuery downloads the FITS images for every frame matched by a
// caller-supplied query.
//
// The query passes through the catalog's query gate; a rejection is
// returned without executing anything. A query that matches zero frames
// returns ErrNoQueryMatches. Matched rows without a usable name or link
// produce warnings and are skipped as tasks but still appear in the
// returned frame set.
func (m *Manager) DownloadByQuery(ctx context.Context, query string, params []any, opts Options) (model.Frames, []string, error) {
	batch := uuid.NewString()
	outputDir := m.outputDir(opts)

	if err := ioutils.EnsureDir(outputDir); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	frames, err := m.repo.FramesByQuery(query, params...)
	if err != nil {
		return nil, nil, err
	}
	if frames.Empty() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoQueryMatches, query)
	}

	var tasks []task
	for _, frame := range frames {
		if frame.Name == "" {
			m.progress(ProgressEvent{Batch: batch, Message: "Query row has no NAME column, skipping", Level: LevelWarning})
			continue
		}
		if !frame.HasLink() {
			m.progress(ProgressEvent{Batch: batch, Frame: frame.Name, Message: fmt.Sprintf("Empty FITS link for frame '%s'", frame.Name), Level: LevelWarning})
			continue
		}
		tasks = append(tasks, task{frame: frame, url: frame.FITSLink, dest: frame.FITSPath(outputDir)})
	}

	paths := m.run(ctx, batch, tasks, opts.MaxParallel)
	return frames, paths, nil
}

// GetProgress returns current download progress for the running batch.
func (m *Manager) GetProgress() (receivedBytes int64, filesDone, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.downloadedFiles),
		atomic.LoadInt32(&m.totalFiles)
}

// run executes all tasks on a bounded worker pool and blocks until every
// task has finished. It returns the destination paths of successful
// downloads in completion order.
func (m *Manager) run(ctx context.Context, batch string, tasks []task, maxParallel int) []string {
	atomic.StoreInt32(&m.totalFiles, int32(len(tasks)))
	atomic.StoreInt32(&m.downloadedFiles, 0)
	atomic.StoreInt64(&m.receivedBytes, 0)

	if len(tasks) == 0 {
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(m.settings.Workers(maxParallel))

	var mu sync.Mutex
	var paths []string

	for _, t := range tasks {
		t := t // capture
		g.Go(func() error {
			if err := m.downloadFrame(ctx, batch, t); err != nil {
				m.progress(ProgressEvent{Batch: batch, Frame: t.frame.Name, Message: fmt.Sprintf("Error downloading FITS file for '%s': %v", t.frame.Name, err), Level: LevelWarning})
				return nil // keep sibling downloads running
			}

			atomic.AddInt32(&m.downloadedFiles, 1)
			m.progress(ProgressEvent{Batch: batch, Frame: t.frame.Name, Message: fmt.Sprintf("Successfully downloaded: %s", t.dest), Level: LevelSuccess})

			mu.Lock()
			paths = append(paths, t.dest)
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return paths
}

func (m *Manager) downloadFrame(ctx context.Context, batch string, t task) error {
	m.progress(ProgressEvent{Batch: batch, Frame: t.frame.Name, Message: fmt.Sprintf("Downloading FITS file from %s", t.url), Level: LevelVerbose})

	var prev int64
	return m.client.DownloadFile(ctx, t.url, t.dest, func(written, total int64) {
		atomic.AddInt64(&m.receivedBytes, written-prev)
		prev = written
	})
}

func (m *Manager) outputDir(opts Options) string {
	if opts.OutputDir != "" {
		return opts.OutputDir
	}
	return m.settings.OutputDir
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
