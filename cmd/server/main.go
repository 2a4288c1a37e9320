package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"climate-api/internal/config"
	"climate-api/internal/handlers"
	"climate-api/internal/repository"
	"climate-api/internal/services"
	"climate-api/pkg/database"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

const version = "1.0.0"

func main() {
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

	logger := logging.NewStructuredLogger("climate-api", version, logging.ParseLevel(cfg.Logging.Level))
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting climate API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
	})

	metricsCollector := metrics.NewCollector("climate_api", prometheus.DefaultRegisterer)

	// The API never writes, so SQLite files are opened read-only
	dbConfig := cfg.Database.ConnectionConfig(true)

	db, err := database.NewDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{
			"db_driver": dbConfig.Driver,
			"database":  dbConfig.Name(),
		}, err)
	}

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	db.StartPoolMonitor(monitorCtx, cfg.Database.PoolMonitorInterval)

	climateRepo := repository.NewClimateRepository(db, logger, metricsCollector)

	climateService := services.NewClimateService(climateRepo, logger, metricsCollector)
	statsService := services.NewStatisticsService(climateRepo, logger, metricsCollector)

	climateHandler := handlers.NewClimateHandler(climateService, statsService, climateRepo, logger, metricsCollector)

	router := mux.NewRouter()
	router.Use(handlers.RequestIDMiddleware())
	router.Use(handlers.LoggingMiddleware(logger))
	router.Use(handlers.MetricsMiddleware(metricsCollector))
	router.Use(handlers.TimeoutMiddleware(cfg.Server.WriteTimeout))

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	climateHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{
		"signal": sig.String(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	stopMonitor()
	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		db.Close(),
	)
	if err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Unclean shutdown", logging.Fields{
			"errors": len(multierr.Errors(err)),
		}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
