// Package importer walks a directory of freeform workout notes and sends
// each new file to the LiftScribe parse endpoint. A SQLite state database
// remembers which files were parsed or permanently rejected, keyed by
// path, size, and content hash, so re-running the importer is cheap and
// never double-logs a workout.
package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Stats tracks one import run.
type Stats struct {
	FilesTotal    int
	FilesParsed   int
	FilesSkipped  int
	FilesRejected int
	FilesErrored  int
}

// Importer walks a notes directory and submits new files for parsing.
type Importer struct {
	client     *Client
	state      *StateDB
	notesDir   string
	weightUnit string
	dryRun     bool
	log        *slog.Logger
	stats      Stats
}

// New creates a new Importer.
func New(client *Client, state *StateDB, notesDir, weightUnit string, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{
		client:     client,
		state:      state,
		notesDir:   notesDir,
		weightUnit: weightUnit,
		dryRun:     dryRun,
		log:        log,
	}
}

// rxFileDate matches a leading YYYY-MM-DD in a file name, the common
// convention for daily training notes ("2026-03-14 lower.md").
var rxFileDate = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// dateFromFilename extracts the workout date from a note file's name, or
// returns "" to let the server default to today.
func dateFromFilename(name string) string {
	if m := rxFileDate.FindStringSubmatch(filepath.Base(name)); m != nil {
		return m[1]
	}
	return ""
}

// Run walks the notes directory and processes every .txt and .md file.
func (i *Importer) Run() (*Stats, error) {
	err := filepath.WalkDir(i.notesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
		default:
			return nil
		}
		i.processFile(path)
		return nil
	})
	if err != nil {
		return &i.stats, fmt.Errorf("walking %s: %w", i.notesDir, err)
	}
	return &i.stats, nil
}

// processFile submits one file. Transport errors leave no state record so
// the file is retried on the next run; a parse or rejection is terminal.
func (i *Importer) processFile(path string) {
	i.stats.FilesTotal++

	relPath, _ := filepath.Rel(i.notesDir, path)
	info, err := os.Stat(path)
	if err != nil {
		i.log.Warn("stat failed", "file", path, "error", err)
		i.stats.FilesErrored++
		return
	}

	hash, err := HashFile(path)
	if err != nil {
		i.log.Warn("hash failed", "file", path, "error", err)
		i.stats.FilesErrored++
		return
	}

	processed, err := i.state.IsProcessed(relPath, info.Size(), hash)
	if err != nil {
		i.log.Warn("state check failed", "file", path, "error", err)
		i.stats.FilesErrored++
		return
	}
	if processed {
		i.stats.FilesSkipped++
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		i.log.Warn("read failed", "file", path, "error", err)
		i.stats.FilesErrored++
		return
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		i.stats.FilesSkipped++
		// Empty files are terminal; no point re-checking them.
		_ = i.state.MarkProcessed(relPath, info.Size(), hash, statusRejected)
		return
	}

	date := dateFromFilename(path)

	if i.dryRun {
		i.log.Info("dry-run: would parse", "file", relPath, "date", date, "bytes", len(text))
		return
	}

	err = i.client.ParseText(text, date, i.weightUnit)
	switch {
	case err == nil:
		if err := i.state.MarkProcessed(relPath, info.Size(), hash, statusParsed); err != nil {
			i.log.Warn("failed to mark parsed", "file", relPath, "error", err)
		}
		i.stats.FilesParsed++
		i.log.Info("parsed", "file", relPath)
	case errors.Is(err, ErrRejected):
		if err := i.state.MarkProcessed(relPath, info.Size(), hash, statusRejected); err != nil {
			i.log.Warn("failed to mark rejected", "file", relPath, "error", err)
		}
		i.stats.FilesRejected++
		i.log.Info("rejected as not a workout", "file", relPath, "reason", err)
	default:
		i.stats.FilesErrored++
		i.log.Warn("parse failed", "file", relPath, "error", err)
	}
}
