package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/config"
	"github.com/meltforce/coachlog/internal/importer"
	"github.com/meltforce/coachlog/internal/ingest"
	"github.com/meltforce/coachlog/internal/ingest/program"
	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to program CSV (required)")
	athlete := flag.String("athlete", "", "athlete profile ID or email (required unless -dry-run)")
	name := flag.String("name", "", "program name (defaults to one derived from the filename)")
	week := flag.Int("week", 0, "week number (defaults to one derived from the filename)")
	start := flag.String("start", "", "program start date, YYYY-MM-DD")
	dryRun := flag.Bool("dry-run", false, "parse and print the program without touching the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" || (*athlete == "" && !*dryRun) {
		fmt.Fprintf(os.Stderr, "Usage: coachlog-import -config config.yaml -file week-3.csv -athlete <id|email> [-name N] [-week W] [-start YYYY-MM-DD] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	meta, err := buildMeta(*filePath, *name, *week, *start)
	if err != nil {
		log.Error("invalid metadata", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
		if err := preview(log, *filePath, meta); err != nil {
			log.Error("preview failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	profile, err := resolveAthlete(ctx, db, *athlete)
	if err != nil {
		log.Error("unknown athlete", "athlete", *athlete, "error", err)
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("failed to open file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	imp := importer.New(db, log, importer.Options{Concurrency: cfg.Import.Concurrency})
	provider := program.NewProvider(imp, db, log)
	res, err := provider.Ingest(ctx, f, program.Request{
		AthleteID: profile.ID,
		Filename:  filepath.Base(*filePath),
		Source:    program.SourceCLI,
		Meta:      meta,
	})
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	printResult(res)
	if res.Status != string(importer.StatusComplete) {
		os.Exit(2)
	}
	log.Info("import complete")
}

// buildMeta returns nil when no flag overrides the filename suggestion.
func buildMeta(path, name string, week int, start string) (*importer.Meta, error) {
	if name == "" && week == 0 && start == "" {
		return nil, nil
	}
	sug := program.SuggestFromFilename(filepath.Base(path))
	meta := &importer.Meta{Name: sug.Name, WeekNumber: sug.WeekNumber}
	if name != "" {
		meta.Name = name
	}
	if week != 0 {
		meta.WeekNumber = week
	}
	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return nil, fmt.Errorf("start date: %w", err)
		}
		meta.StartDate = &t
	}
	return meta, nil
}

func resolveAthlete(ctx context.Context, db *storage.DB, ref string) (*models.Profile, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return db.GetProfile(ctx, id)
	}
	return db.FindAthleteByEmail(ctx, ref)
}

func preview(log *slog.Logger, path string, meta *importer.Meta) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	imp := importer.New(nil, log, importer.Options{})
	pv, err := program.NewProvider(imp, nil, log).Preview(f, filepath.Base(path))
	if err != nil {
		return err
	}

	name, week := pv.Suggestion.Name, pv.Suggestion.WeekNumber
	if meta != nil {
		name, week = meta.Name, meta.WeekNumber
	}

	fmt.Println()
	fmt.Println("=== Program Preview ===")
	fmt.Printf("  Layout:     %s\n", pv.LayoutLabel)
	fmt.Printf("  Name:       %s\n", name)
	fmt.Printf("  Week:       %d\n", week)
	fmt.Printf("  Exercises:  %d\n", len(pv.Exercises))
	for _, day := range pv.Days {
		fmt.Printf("\n  %s\n", day)
		for _, ex := range pv.Exercises {
			if ex.Day == day {
				fmt.Printf("    - %s\n", ex.Name)
			}
		}
	}
	fmt.Println()
	return nil
}

func printResult(res *ingest.Result) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	if res.ProgramID != nil {
		fmt.Printf("  Program:    %s\n", res.ProgramID)
	}
	fmt.Printf("  Layout:     %s\n", res.Layout)
	fmt.Printf("  Status:     %s\n", res.Status)
	fmt.Printf("  Exercises:  %d of %d\n", res.ExercisesInserted, res.ExercisesReceived)
	fmt.Printf("  Sessions:   %d of %d days\n", res.SessionsCreated, res.DaysReceived)
	for _, w := range res.Warnings {
		fmt.Printf("  Warning:    %s\n", w)
	}
	fmt.Println()
}
