package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"climate-api/internal/config"
	"climate-api/internal/repository"
	"climate-api/internal/services"
	"climate-api/migrations"
	"climate-api/pkg/database"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

const maxPrintedErrors = 10

func main() {
	// Parse command-line flags
	dataDir := flag.String("data-dir", "./Resources", "Directory containing the station and measurement CSV files")
	stationsFile := flag.String("stations-file", "hawaii_stations.csv", "Stations CSV, relative to -data-dir unless absolute; empty to skip")
	measurementsFile := flag.String("measurements-file", "hawaii_measurements.csv", "Measurements CSV, relative to -data-dir unless absolute; empty to skip")
	batchSize := flag.Int("batch-size", 1000, "Number of records to write in each batch")
	initSchema := flag.Bool("init-schema", false, "Create the schema before loading")
	dryRun := flag.Bool("dry-run", false, "Parse and validate the files without touching the database")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("climate-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	defer logger.Sync()

	opts := services.IngestionOptions{
		StationsFile:     resolvePath(*dataDir, *stationsFile),
		MeasurementsFile: resolvePath(*dataDir, *measurementsFile),
		BatchSize:        *batchSize,
		DryRun:           *dryRun,
	}

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting climate data ingestion", logging.Fields{
		"version":           "1.0.0",
		"data_dir":          *dataDir,
		"stations_file":     opts.StationsFile,
		"measurements_file": opts.MeasurementsFile,
		"batch_size":        opts.BatchSize,
		"dry_run":           opts.DryRun,
	})

	// One-shot process, so metrics go to a private registry
	metricsCollector := metrics.NewCollector("climate_ingester", prometheus.NewRegistry())

	var repo repository.ClimateRepository
	if !opts.DryRun {
		db, err := database.NewDB(cfg.Database.ConnectionConfig(false), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		if *initSchema {
			script, err := migrations.Up()
			if err == nil {
				_, err = db.ExecContext(ctx, "migrate_up", script)
			}
			if err != nil {
				logger.Fatal(ctx, "[INGESTER_ERROR] Failed to create schema", logging.Fields{}, err)
			}
		}

		repo = repository.NewClimateRepository(db, logger, metricsCollector)
	}

	ingestionService := services.NewIngestionService(repo, logger, metricsCollector)

	result, err := ingestionService.Ingest(ctx, opts)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"error": err.Error(),
		}, err)
	}

	printSummary(os.Stdout, result, opts.DryRun)

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
	})
}

// resolvePath joins name onto dir unless name is empty or absolute
func resolvePath(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func printSummary(w io.Writer, result *services.IngestionResult, dryRun bool) {
	title := "INGESTION COMPLETE"
	if dryRun {
		title = "DRY RUN COMPLETE (nothing written)"
	}

	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Total Files:         %d\n", result.TotalFiles)
	fmt.Fprintf(w, "Total Records:       %d\n", result.TotalRecords)
	fmt.Fprintf(w, "Successful Records:  %d\n", result.SuccessfulRecords)
	fmt.Fprintf(w, "Failed Records:      %d\n", result.FailedRecords)
	fmt.Fprintf(w, "Stations Loaded:     %d\n", result.StationsLoaded)
	fmt.Fprintf(w, "Measurements Loaded: %d\n", result.MeasurementsLoaded)
	fmt.Fprintf(w, "Duration:            %v\n", result.Duration)
	if secs := result.Duration.Seconds(); secs > 0 {
		fmt.Fprintf(w, "Records/Second:      %.2f\n", float64(result.SuccessfulRecords)/secs)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i >= maxPrintedErrors {
				break
			}
			fmt.Fprintf(w, "  - %s\n", errMsg)
		}
		if len(result.Errors) > maxPrintedErrors {
			fmt.Fprintf(w, "  ... and %d more errors\n", len(result.Errors)-maxPrintedErrors)
		}
	}
}
