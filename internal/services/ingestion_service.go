package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"climate-api/internal/models"
	"climate-api/internal/repository"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

var (
	stationsHeader     = []string{"station", "name", "latitude", "longitude", "elevation"}
	measurementsHeader = []string{"station", "date", "prcp", "tobs"}
)

// IngestionService loads the station and measurement CSV files into the store
type IngestionService struct {
	repo    repository.ClimateRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionOptions selects the input files and how they are written
type IngestionOptions struct {
	StationsFile     string
	MeasurementsFile string
	BatchSize        int
	// DryRun parses and validates without touching the store
	DryRun bool
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles         int
	TotalRecords       int
	SuccessfulRecords  int
	FailedRecords      int
	StationsLoaded     int
	MeasurementsLoaded int
	Duration           time.Duration
	Errors             []string
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Errors            []string
}

// NewIngestionService creates a new ingestion service. repo may be nil for dry runs.
func NewIngestionService(repo repository.ClimateRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Ingest loads stations first, then measurements. Malformed rows are counted
// and skipped; a storage failure aborts the run.
func (s *IngestionService) Ingest(ctx context.Context, opts IngestionOptions) (*IngestionResult, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if !opts.DryRun && s.repo == nil {
		return nil, errors.New("a repository is required unless running dry")
	}

	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"stations_file":     opts.StationsFile,
		"measurements_file": opts.MeasurementsFile,
		"batch_size":        opts.BatchSize,
		"dry_run":           opts.DryRun,
		"stage":             "INITIALIZATION",
	})

	result := &IngestionResult{
		Errors: make([]string, 0),
	}

	files := []struct {
		path   string
		ingest func(context.Context, io.Reader, IngestionOptions) (*FileIngestionResult, error)
		loaded *int
	}{
		{opts.StationsFile, s.ingestStations, &result.StationsLoaded},
		{opts.MeasurementsFile, s.ingestMeasurements, &result.MeasurementsLoaded},
	}

	for _, f := range files {
		if f.path == "" {
			continue
		}
		result.TotalFiles++
		fileLog := s.logger.WithFields(logging.Fields{"file_path": f.path})

		fileResult, err := s.ingestFile(ctx, f.path, opts, f.ingest)
		if err != nil {
			s.metrics.RecordIngestionError("file_error")
			fileLog.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"stage": "FILE_PROCESSING",
			}, err)
			return nil, fmt.Errorf("failed to ingest %s: %w", f.path, err)
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords
		result.Errors = append(result.Errors, fileResult.Errors...)
		*f.loaded = fileResult.SuccessfulRecords

		fileLog.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"total_records":      fileResult.TotalRecords,
			"successful_records": fileResult.SuccessfulRecords,
			"failed_records":     fileResult.FailedRecords,
			"stage":              "FILE_COMPLETE",
		})
	}

	if result.TotalFiles == 0 {
		return nil, errors.New("no input files given")
	}

	result.Duration = time.Since(startTime)
	if !opts.DryRun {
		s.metrics.IngestionDuration.Observe(result.Duration.Seconds())
	}

	fields := logging.Fields{
		"total_files":         result.TotalFiles,
		"total_records":       result.TotalRecords,
		"successful_records":  result.SuccessfulRecords,
		"failed_records":      result.FailedRecords,
		"stations_loaded":     result.StationsLoaded,
		"measurements_loaded": result.MeasurementsLoaded,
		"duration_seconds":    result.Duration.Seconds(),
		"dry_run":             opts.DryRun,
		"stage":               "COMPLETE",
	}
	if secs := result.Duration.Seconds(); secs > 0 {
		fields["records_per_second"] = float64(result.SuccessfulRecords) / secs
	}
	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", fields)

	return result, nil
}

func (s *IngestionService) ingestFile(ctx context.Context, path string, opts IngestionOptions,
	ingest func(context.Context, io.Reader, IngestionOptions) (*FileIngestionResult, error)) (*FileIngestionResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ingest(ctx, file, opts)
}

func (s *IngestionService) ingestStations(ctx context.Context, r io.Reader, opts IngestionOptions) (*FileIngestionResult, error) {
	result := &FileIngestionResult{}
	batch := make([]*models.Station, 0, opts.BatchSize)
	var nextID int64 = 1

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !opts.DryRun {
			if err := s.repo.CreateStationsBatch(ctx, batch); err != nil {
				return fmt.Errorf("failed to insert station batch: %w", err)
			}
		}
		result.SuccessfulRecords += len(batch)
		batch = batch[:0]
		return nil
	}

	err := readRecords(r, stationsHeader, func(line int, fields []string) error {
		result.TotalRecords++

		raw := &models.RawStationRecord{
			Station:   fields[0],
			Name:      fields[1],
			Latitude:  fields[2],
			Longitude: fields[3],
			Elevation: fields[4],
		}
		station, err := raw.ToStation(nextID)
		if err != nil {
			s.rejectRow(ctx, result, "conversion_error", line, err)
			return nil
		}
		nextID++

		batch = append(batch, station)
		if len(batch) >= opts.BatchSize {
			return flush()
		}
		return nil
	}, func(line int, err error) {
		result.TotalRecords++
		s.rejectRow(ctx, result, "parse_error", line, err)
	})
	if err != nil {
		return nil, err
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *IngestionService) ingestMeasurements(ctx context.Context, r io.Reader, opts IngestionOptions) (*FileIngestionResult, error) {
	result := &FileIngestionResult{}
	batch := make([]*models.Measurement, 0, opts.BatchSize)
	var nextID int64 = 1

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !opts.DryRun {
			if err := s.repo.CreateMeasurementsBatch(ctx, batch); err != nil {
				return fmt.Errorf("failed to insert measurement batch: %w", err)
			}
		}
		result.SuccessfulRecords += len(batch)
		batch = batch[:0]
		return nil
	}

	err := readRecords(r, measurementsHeader, func(line int, fields []string) error {
		result.TotalRecords++

		raw := &models.RawMeasurementRecord{
			Station:       fields[0],
			Date:          fields[1],
			Precipitation: fields[2],
			Temperature:   fields[3],
		}
		measurement, err := raw.ToMeasurement(nextID)
		if err != nil {
			s.rejectRow(ctx, result, "conversion_error", line, err)
			return nil
		}
		nextID++

		batch = append(batch, measurement)
		if len(batch) >= opts.BatchSize {
			return flush()
		}
		return nil
	}, func(line int, err error) {
		result.TotalRecords++
		s.rejectRow(ctx, result, "parse_error", line, err)
	})
	if err != nil {
		return nil, err
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *IngestionService) rejectRow(ctx context.Context, result *FileIngestionResult, errorType string, line int, err error) {
	result.FailedRecords++
	result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
	s.metrics.RecordIngestionError(errorType)
	s.logger.Debug(ctx, "[INGEST_ROW_REJECTED] Skipping malformed row", logging.Fields{
		"line":       line,
		"error_type": errorType,
		"reason":     err.Error(),
	})
}

// readRecords streams CSV rows with exactly len(header) fields to onRecord.
// A first row equal to header is skipped. Rows with the wrong field count or
// broken quoting go to onBad; an error from onRecord stops the read.
func readRecords(r io.Reader, header []string, onRecord func(line int, fields []string) error, onBad func(line int, err error)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	first := true
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				onBad(parseErr.Line, err)
				continue
			}
			return fmt.Errorf("error reading file: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if isHeader(fields, header) {
				continue
			}
		}

		if len(fields) != len(header) {
			onBad(line, fmt.Errorf("invalid line format: expected %d fields, got %d", len(header), len(fields)))
			continue
		}

		if err := onRecord(line, fields); err != nil {
			return err
		}
	}
}

func isHeader(fields, header []string) bool {
	if len(fields) != len(header) {
		return false
	}
	for i := range header {
		if !strings.EqualFold(strings.TrimSpace(fields[i]), header[i]) {
			return false
		}
	}
	return true
}
