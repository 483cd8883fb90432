package download

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/skylab2iai/fits-downloader/internal/catalog"
	"github.com/skylab2iai/fits-downloader/internal/config"
	"github.com/skylab2iai/fits-downloader/internal/model"
)

// testEnv wires a fixture catalog, a fake archive server, and a Manager.
type testEnv struct {
	repo    *catalog.Repository
	manager *Manager
	server  *httptest.Server
	events  *[]ProgressEvent
}

// fixtureFrame describes one plate_frame row in the test catalog. A
// link of "@serve" registers serveBody on the fake archive and points
// the row at it.
type fixtureFrame struct {
	name      string
	plate     string
	link      string
	serveBody string
}

func newTestEnv(t *testing.T, frames []fixtureFrame) *testEnv {
	t.Helper()

	// Fake archive: path -> body.
	bodies := make(map[string]string)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	// Fixture catalog.
	dbPath := filepath.Join(t.TempDir(), "skylab-data.db")
	setup, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	if _, err := setup.Exec(
		`CREATE TABLE plate_frame (NAME TEXT PRIMARY KEY, PLATE_NAME TEXT, LINK_FTS TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, f := range frames {
		link := f.link
		if link == "@serve" {
			path := "/" + f.name + ".fits"
			bodies[path] = f.serveBody
			link = server.URL + path
		}
		if _, err := setup.Exec(
			`INSERT INTO plate_frame VALUES (?, ?, ?)`, f.name, f.plate, link); err != nil {
			t.Fatalf("insert frame: %v", err)
		}
	}
	if err := setup.Close(); err != nil {
		t.Fatalf("close fixture db: %v", err)
	}

	db, err := catalog.Open(dbPath)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := catalog.NewRepository(db)

	var events []ProgressEvent
	settings := config.DefaultSettings()
	settings.RequestTimeoutSeconds = 10
	manager := NewManager(settings, repo, func(e ProgressEvent) {
		events = append(events, e)
	})

	return &testEnv{repo: repo, manager: manager, server: server, events: &events}
}

func (e *testEnv) warnings() []string {
	var out []string
	for _, ev := range *e.events {
		if ev.Level == LevelWarning {
			out = append(out, ev.Message)
		}
	}
	return out
}

func TestDownloadByNames_SingleFrame(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "S052-0001", plate: "S052", link: "@serve", serveBody: "fits-bytes-0001"},
	})
	out := t.TempDir()

	frames, paths, err := env.manager.DownloadByNames(context.Background(),
		[]string{"S052-0001"}, Options{OutputDir: out})
	if err != nil {
		t.Fatalf("DownloadByNames: %v", err)
	}

	if len(frames) != 1 || frames[0].Name != "S052-0001" {
		t.Errorf("frames = %v, want exactly S052-0001", frames.Names())
	}
	if len(paths) != 1 {
		t.Fatalf("paths = %v, want exactly one", paths)
	}
	if !strings.HasSuffix(paths[0], "S052-0001.fits") {
		t.Errorf("path = %q, want suffix S052-0001.fits", paths[0])
	}

	got, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != "fits-bytes-0001" {
		t.Errorf("file content = %q, want fits-bytes-0001", got)
	}
}

func TestDownloadByNames_MissingFrameIsSoft(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "S052-0001", plate: "S052", link: "@serve", serveBody: "x"},
	})
	out := t.TempDir()

	frames, paths, err := env.manager.DownloadByNames(context.Background(),
		[]string{"NO-SUCH-FRAME"}, Options{OutputDir: out})
	if err != nil {
		t.Fatalf("missing frame must not be fatal, got %v", err)
	}
	if !frames.Empty() {
		t.Errorf("matched frames = %v, want none", frames.Names())
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v, want none", paths)
	}
	if len(env.warnings()) == 0 {
		t.Error("a missing frame should produce a warning event")
	}
}

func TestDownloadByNames_EmptyLinkSkipped(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "S052-0001", plate: "S052", link: ""},
	})
	out := t.TempDir()

	frames, paths, err := env.manager.DownloadByNames(context.Background(),
		[]string{"S052-0001"}, Options{OutputDir: out})
	if err != nil {
		t.Fatalf("DownloadByNames: %v", err)
	}

	// The row matched, so it belongs in the frame set even with no task.
	if len(frames) != 1 {
		t.Errorf("frames = %v, want the link-less row", frames.Names())
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v, want none", paths)
	}
	if len(env.warnings()) == 0 {
		t.Error("an empty link should produce a warning event")
	}
}

func TestDownloadByNames_FailedTransferIsSoft(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "GOOD", plate: "S052", link: "@serve", serveBody: "ok"},
	})
	// BAD resolves but its URL 404s on the archive.
	envBad := newTestEnv(t, []fixtureFrame{
		{name: "GOOD", plate: "S052", link: "@serve", serveBody: "ok"},
		{name: "BAD", plate: "S052", link: env.server.URL + "/missing.fits"},
	})
	out := t.TempDir()

	frames, paths, err := envBad.manager.DownloadByNames(context.Background(),
		[]string{"GOOD", "BAD"}, Options{OutputDir: out})
	if err != nil {
		t.Fatalf("a failed transfer must not be fatal, got %v", err)
	}

	if len(frames) != 2 {
		t.Errorf("frames = %v, want both matched rows", frames.Names())
	}
	if len(paths) != 1 || !strings.HasSuffix(paths[0], "GOOD.fits") {
		t.Errorf("paths = %v, want only GOOD.fits", paths)
	}
	if len(envBad.warnings()) == 0 {
		t.Error("a failed transfer should produce a warning event")
	}
}

func TestDownloadByNames_ZeroNames(t *testing.T) {
	env := newTestEnv(t, nil)
	out := filepath.Join(t.TempDir(), "fresh")

	frames, paths, err := env.manager.DownloadByNames(context.Background(),
		nil, Options{OutputDir: out})
	if err != nil {
		t.Fatalf("DownloadByNames: %v", err)
	}
	if !frames.Empty() || len(paths) != 0 {
		t.Errorf("zero names should yield empty results, got %v / %v", frames.Names(), paths)
	}

	// The output directory is still created.
	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		t.Errorf("output directory should exist even with zero names: %v", err)
	}
}

func TestDownloadByNames_Idempotent(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "S052-0001", plate: "S052", link: "@serve", serveBody: "same-bytes"},
	})
	out := t.TempDir()

	var runs [][]string
	for i := 0; i < 2; i++ {
		_, paths, err := env.manager.DownloadByNames(context.Background(),
			[]string{"S052-0001"}, Options{OutputDir: out})
		if err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
		runs = append(runs, paths)
	}

	if len(runs[0]) != 1 || len(runs[1]) != 1 || runs[0][0] != runs[1][0] {
		t.Errorf("re-download should yield the same path, got %v then %v", runs[0], runs[1])
	}
}

func TestDownloadByNames_CreatesNestedOutputDir(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "S052-0001", plate: "S052", link: "@serve", serveBody: "x"},
	})
	out := filepath.Join(t.TempDir(), "deep", "nested", "dir")

	_, paths, err := env.manager.DownloadByNames(context.Background(),
		[]string{"S052-0001"}, Options{OutputDir: out})
	if err != nil {
		t.Fatalf("DownloadByNames: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("paths = %v, want one", paths)
	}
	if filepath.Dir(paths[0]) != out {
		t.Errorf("file written to %q, want %q", filepath.Dir(paths[0]), out)
	}
}

func TestDownloadByQuery_EmptyMatchIsFatal(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "S052-0001", plate: "S052", link: "@serve", serveBody: "x"},
	})
	out := t.TempDir()

	_, _, err := env.manager.DownloadByQuery(context.Background(),
		"SELECT * FROM plate_frame WHERE plate_name = ?", []any{"S099"},
		Options{OutputDir: out})
	if !errors.Is(err, ErrNoQueryMatches) {
		t.Errorf("err = %v, want ErrNoQueryMatches", err)
	}
}

func TestDownloadByQuery_GateRejectionPropagates(t *testing.T) {
	env := newTestEnv(t, nil)
	out := t.TempDir()

	_, _, err := env.manager.DownloadByQuery(context.Background(),
		"DELETE FROM plate_frame", nil, Options{OutputDir: out})
	if !errors.Is(err, catalog.ErrDeleteNotAllowed) {
		t.Errorf("err = %v, want ErrDeleteNotAllowed", err)
	}
}

func TestDownloadByQuery_DownloadsMatches(t *testing.T) {
	env := newTestEnv(t, []fixtureFrame{
		{name: "S052-0001", plate: "S052", link: "@serve", serveBody: "a"},
		{name: "S052-0002", plate: "S052", link: "@serve", serveBody: "b"},
		{name: "S054-0001", plate: "S054", link: "@serve", serveBody: "c"},
	})
	out := t.TempDir()

	frames, paths, err := env.manager.DownloadByQuery(context.Background(),
		"SELECT * FROM plate_frame WHERE plate_name = ?", []any{"S052"},
		Options{OutputDir: out})
	if err != nil {
		t.Fatalf("DownloadByQuery: %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("frames = %v, want the two S052 rows", frames.Names())
	}
	if len(paths) != 2 {
		t.Errorf("paths = %v, want two files", paths)
	}
}

func TestDownload_CappedPoolMatchesUncapped(t *testing.T) {
	const n = 8
	var fixtures []fixtureFrame
	var names []string
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("S052-%04d", i)
		fixtures = append(fixtures, fixtureFrame{
			name: name, plate: "S052", link: "@serve", serveBody: "body-" + name,
		})
		names = append(names, name)
	}

	run := func(parallel int) (model.Frames, []string) {
		env := newTestEnv(t, fixtures)
		out := t.TempDir()
		frames, paths, err := env.manager.DownloadByNames(context.Background(),
			names, Options{OutputDir: out, MaxParallel: parallel})
		if err != nil {
			t.Fatalf("DownloadByNames(parallel=%d): %v", parallel, err)
		}
		// Compare as sets of file names; completion order is unspecified.
		base := make([]string, len(paths))
		for i, p := range paths {
			base[i] = filepath.Base(p)
		}
		sort.Strings(base)
		return frames, base
	}

	framesSerial, pathsSerial := run(1)
	framesPool, pathsPool := run(0)

	serialNames := framesSerial.Names()
	poolNames := framesPool.Names()
	sort.Strings(serialNames)
	sort.Strings(poolNames)

	if len(serialNames) != n || len(poolNames) != n {
		t.Fatalf("matched %d / %d frames, want %d", len(serialNames), len(poolNames), n)
	}
	for i := range serialNames {
		if serialNames[i] != poolNames[i] {
			t.Errorf("frame sets differ at %d: %q vs %q", i, serialNames[i], poolNames[i])
		}
	}
	if len(pathsSerial) != len(pathsPool) {
		t.Fatalf("path counts differ: %d vs %d", len(pathsSerial), len(pathsPool))
	}
	for i := range pathsSerial {
		if pathsSerial[i] != pathsPool[i] {
			t.Errorf("path sets differ at %d: %q vs %q", i, pathsSerial[i], pathsPool[i])
		}
	}
}
