package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/liftscribe/internal/importer"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftScribe server URL (e.g. https://liftscribe.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("LIFTSCRIBE_AUTH_API_KEY"), "API key for the parse endpoint (defaults to $LIFTSCRIBE_AUTH_API_KEY)")
	notesPath := flag.String("path", "", "path to the workout notes directory")
	weightUnit := flag.String("unit", "lbs", "default weight unit for parsed sets (lbs or kg)")
	dryRun := flag.Bool("dry-run", false, "walk and report files but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftscribe-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *notesPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftscribe-import -server <URL> -path <notes dir> [-api-key KEY] [-unit lbs|kg] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if !*dryRun {
		if *serverURL == "" {
			fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
			os.Exit(1)
		}
		if *apiKey == "" {
			fmt.Fprintf(os.Stderr, "Error: -api-key or $LIFTSCRIBE_AUTH_API_KEY is required (or use -dry-run)\n")
			os.Exit(1)
		}
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*notesPath)
	if err != nil || !info.IsDir() {
		log.Error("notes directory not found", "path", *notesPath)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".liftscribe-import")

	state, err := importer.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode: files will be walked but not sent")
	}

	client := importer.NewClient(*serverURL, *apiKey)
	imp := importer.New(client, state, *notesPath, *weightUnit, *dryRun, log)
	stats, err := imp.Run()
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("import complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Files total:    %d\n", stats.FilesTotal)
	fmt.Printf("  Files parsed:   %d\n", stats.FilesParsed)
	fmt.Printf("  Files skipped:  %d (already processed)\n", stats.FilesSkipped)
	fmt.Printf("  Files rejected: %d (not workouts)\n", stats.FilesRejected)
	fmt.Printf("  Files errored:  %d\n", stats.FilesErrored)
	fmt.Println()
}
