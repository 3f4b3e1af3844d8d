package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/coachlog/internal/importer"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int
	// FilesPending counts new or changed files seen in dry-run mode.
	FilesPending int

	ExercisesInserted int
	PartialImports    int
}

// Uploader walks a directory of program CSVs and POSTs new or changed files
// to the CoachLog server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every *.csv under the directory, in lexical path order.
// Per-file failures are counted and logged; only walk errors abort the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	var files []string
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != u.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.dir, err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f); err != nil {
			u.log.Warn("upload failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}

	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	relPath, err := filepath.Rel(u.dir, path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	prev, err := u.state.Lookup(ctx, relPath)
	if err != nil {
		return fmt.Errorf("state check: %w", err)
	}
	if prev.Matches(info.Size(), hash) {
		u.stats.FilesSkipped++
		return nil
	}
	if prev != nil {
		u.log.Info("file changed since last upload", "file", relPath, "previous_program_id", prev.ProgramID)
	}

	if u.dryRun {
		u.log.Info("would upload", "file", relPath, "size", info.Size())
		u.stats.FilesPending++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	res, err := u.client.UploadProgram(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}

	var programID string
	if res.ProgramID != nil {
		programID = res.ProgramID.String()
	}
	if res.Status == string(importer.StatusPartial) {
		u.stats.PartialImports++
		u.log.Warn("partial import", "file", relPath, "program_id", programID, "warnings", res.Warnings)
	}
	u.log.Info("uploaded", "file", relPath, "program_id", programID,
		"exercises", res.ExercisesInserted, "status", res.Status)

	// The program exists even when some days failed; resending would duplicate it.
	rec := Record{Path: relPath, Size: info.Size(), Hash: hash, ProgramID: programID, Status: res.Status}
	if err := u.state.MarkUploaded(ctx, rec); err != nil {
		return fmt.Errorf("marking uploaded: %w", err)
	}
	u.stats.FilesUploaded++
	u.stats.ExercisesInserted += res.ExercisesInserted
	return nil
}
