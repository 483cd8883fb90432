package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/skylab2iai/fits-downloader/internal/catalog"
	"github.com/skylab2iai/fits-downloader/internal/config"
	"github.com/skylab2iai/fits-downloader/internal/download"
	"github.com/skylab2iai/fits-downloader/internal/model"
)

func main() {
	// Command line flags
	var (
		namesFlag    = flag.String("names", "", "Frame name(s) to download (comma-separated)")
		plateFlag    = flag.String("plate", "", "Select every frame of the given plate")
		queryFlag    = flag.String("query", "", "Custom SQL query selecting frames")
		listFlag     = flag.Bool("list", false, "List matching frames without downloading")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		parallelFlag = flag.Int("parallel", 0, "Max parallel downloads (0 = automatic)")
		dbFlag       = flag.String("db", "", "Path to the catalog database (overrides config)")
		configFlag   = flag.String("config", "", "Path to config file")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "Resolve frames without downloading")
	)

	flag.Parse()

	if *namesFlag == "" && *plateFlag == "" && *queryFlag == "" && !*listFlag && flag.NArg() == 0 {
		fmt.Println("Skylab FITS Downloader - fetch plate-frame images from the mission archive")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  skylab-fetch -names <NAME,NAME,...> [options]")
		fmt.Println("  skylab-fetch -plate <PLATE> [options]")
		fmt.Println("  skylab-fetch -query <SQL> [options]")
		fmt.Println("  skylab-fetch -list")
		fmt.Println()
		fmt.Println("For interactive mode, use: skylab-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *dbFlag != "" {
		settings.DatabasePath = *dbFlag
	}

	// Bare positional arguments are frame names
	names := splitNames(*namesFlag)
	if len(names) == 0 && flag.NArg() > 0 {
		names = flag.Args()
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	db, err := catalog.Open(settings.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	repo := catalog.NewRepository(db)

	if *listFlag || *dryRunFlag {
		if err := listFrames(repo, names, *plateFlag, *queryFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create manager with progress callback
	manager := download.NewManager(settings, repo, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := "   "
		switch event.Level {
		case download.LevelError:
			prefix = "error: "
		case download.LevelWarning:
			prefix = "warning: "
		case download.LevelSuccess:
			prefix = "ok: "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("Skylab FITS Downloader")
	fmt.Println()

	opts := download.Options{MaxParallel: *parallelFlag}

	var frames model.Frames
	var paths []string

	switch {
	case *queryFlag != "":
		frames, paths, err = manager.DownloadByQuery(ctx, *queryFlag, nil, opts)
	case *plateFlag != "":
		frames, paths, err = manager.DownloadByQuery(ctx,
			"SELECT * FROM plate_frame WHERE plate_name = ?", []any{*plateFlag}, opts)
	default:
		frames, paths, err = manager.DownloadByNames(ctx, names, opts)
	}

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	received, _, _ := manager.GetProgress()
	fmt.Println()
	fmt.Printf("Complete. Matched %d frame(s), downloaded %d file(s) (%.2f MB)\n",
		len(frames), len(paths), float64(received)/1024/1024)
}

// listFrames resolves the selection and prints it without downloading.
func listFrames(repo *catalog.Repository, names []string, plate, query string) error {
	frames, err := resolveFrames(repo, names, plate, query)
	if err != nil {
		return err
	}

	if frames.Empty() {
		fmt.Println("No matching frames.")
		return nil
	}

	for _, f := range frames {
		link := f.FITSLink
		if link == "" {
			link = "(no FITS link)"
		}
		fmt.Printf("%-16s %-8s %s\n", f.Name, f.PlateName, link)
	}
	fmt.Printf("\n%d frame(s)\n", len(frames))
	return nil
}

func resolveFrames(repo *catalog.Repository, names []string, plate, query string) (model.Frames, error) {
	switch {
	case query != "":
		return repo.FramesByQuery(query)
	case plate != "":
		return repo.FramesByPlate(plate)
	case len(names) > 0:
		var all model.Frames
		for _, n := range names {
			frames, err := repo.FrameByName(n)
			if err != nil {
				return nil, err
			}
			all = append(all, frames...)
		}
		return all, nil
	default:
		return repo.AllFrames()
	}
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
