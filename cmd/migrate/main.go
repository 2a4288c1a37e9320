package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"climate-api/internal/config"
	"climate-api/migrations"
	"climate-api/pkg/database"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	script, err := migrations.ForDirection(*direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger("climate-migrate", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	defer logger.Sync()

	// Migrations are one-shot, nothing scrapes these
	metricsCollector := metrics.NewCollector("climate_migrate", prometheus.NewRegistry())

	db, err := database.NewDB(cfg.Database.ConnectionConfig(false), logger, metricsCollector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	logger.Info(ctx, "[MIGRATE_START] Running migration", logging.Fields{
		"direction": *direction,
		"db_driver": cfg.Database.Driver,
	})

	if _, err := db.ExecContext(ctx, "migrate_"+*direction, script); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	logger.Info(ctx, "[MIGRATE_COMPLETE] Migration completed successfully", logging.Fields{
		"direction": *direction,
	})
}
