package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/importer"
	"github.com/meltforce/coachlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "CoachLog server URL (e.g. https://coachlog.tail1234.ts.net)")
	dir := flag.String("path", "", "directory containing program CSVs")
	athleteID := flag.String("athlete", "", "athlete profile ID the programs belong to")
	apiKey := flag.String("api-key", os.Getenv("COACHLOG_API_KEY"), "upload API key (default $COACHLOG_API_KEY)")
	stateDir := flag.String("state-dir", "", "state directory (default ~/.coachlog-upload)")
	dryRun := flag.Bool("dry-run", false, "list new and changed files without sending them")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("coachlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: coachlog-upload -server <URL> -path <dir> -athlete <id> [-api-key K] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !*dryRun {
		if *serverURL == "" || *apiKey == "" {
			fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
			os.Exit(1)
		}
		if _, err := uuid.Parse(*athleteID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: -athlete must be a profile ID: %v\n", err)
			os.Exit(1)
		}
	}

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("program directory not found", "path", *dir)
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".coachlog-upload")
	}
	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode: files will be checked but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := upload.NewClient(*serverURL, *apiKey, *athleteID)
	stats, err := upload.New(client, state, *dir, *dryRun, log).Run(ctx)
	printStats(stats)
	if !*dryRun {
		printPartial(ctx, state, log)
	}
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	if stats.FilesErrored > 0 {
		os.Exit(2)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	if stats.FilesPending > 0 {
		fmt.Printf("  Files pending:    %d (dry run)\n", stats.FilesPending)
	}
	fmt.Println()
	fmt.Printf("  Exercises:        %d\n", stats.ExercisesInserted)
	fmt.Printf("  Partial imports:  %d\n", stats.PartialImports)
	fmt.Println()
}

// printPartial lists files whose last upload left some training days out.
// Re-exporting such a file changes its hash, so the next run sends it again.
func printPartial(ctx context.Context, state *upload.StateDB, log *slog.Logger) {
	recs, err := state.WithStatus(ctx, string(importer.StatusPartial))
	if err != nil {
		log.Warn("listing partial imports", "error", err)
		return
	}
	if len(recs) == 0 {
		return
	}
	fmt.Println("=== Partially imported ===")
	for _, r := range recs {
		fmt.Printf("  %s  program %s  (%s)\n", r.Path, r.ProgramID, r.UploadedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
}
