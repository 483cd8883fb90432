package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skylab2iai/fits-downloader/internal/config"
	"github.com/skylab2iai/fits-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	dbFlag := flag.String("db", "", "Path to the catalog database (overrides config)")
	outputFlag := flag.String("output", "", "Output directory (overrides config)")
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *dbFlag != "" {
		settings.DatabasePath = *dbFlag
	}
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
