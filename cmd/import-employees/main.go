package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hr_portal/internal/config"
	"hr_portal/internal/directory"
	"hr_portal/internal/security"
)

func main() {
	file := flag.String("file", "", "path to the .xlsx employee sheet")
	dryRun := flag.Bool("dry-run", false, "parse and validate the sheet without writing")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open sheet: %v", err)
	}
	rows, issues, err := directory.ParseEmployeeSheet(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to parse sheet: %v", err)
	}

	for _, issue := range issues {
		fmt.Println("invalid", issue)
	}
	badDates := 0
	for _, row := range rows {
		if row.DateErr != nil {
			badDates++
			fmt.Printf("row %d: %v\n", row.Line, row.DateErr)
		}
	}
	fmt.Printf("%d valid rows, %d invalid rows, %d with a bad date_of_joining\n", len(rows)-badDates, len(issues), badDates)
	if *dryRun {
		return
	}

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DB_URL is required to import employees")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPool(ctx, cfg.Database.DBConfig(logger))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := directory.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	hasher := security.DefaultPasswordHasher()
	report, err := directory.Import(ctx, directory.NewPostgresDirectory(db, hasher, logger), rows, hasher, logger)
	for _, skipped := range report.Skipped {
		fmt.Println("skipped", skipped)
	}
	fmt.Printf("%d employees created, %d skipped\n", report.Created, len(report.Skipped))
	if err != nil {
		log.Fatalf("Import rolled back, nothing was created: %v", err)
	}
}
