package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"climate-api/internal/models"
	"climate-api/pkg/database"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

// ClimateRepository provides data access for stations and measurements
type ClimateRepository interface {
	// Session opens a request-scoped read session. Callers must Close it.
	Session(ctx context.Context) (ClimateSession, error)

	// Load operations, used by the offline ingester only
	CreateStationsBatch(ctx context.Context, stations []*models.Station) error
	CreateMeasurementsBatch(ctx context.Context, measurements []*models.Measurement) error

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// ClimateSession runs read queries on one dedicated connection
type ClimateSession interface {
	ListPrecipitation(ctx context.Context) ([]models.PrecipitationRow, error)
	ListStations(ctx context.Context) ([]models.Station, error)
	ListTemperaturesSince(ctx context.Context, floor string) ([]models.TemperatureRow, error)

	// MaxDate returns the latest measurement date, or a NotFoundError when
	// the measurement table is empty.
	MaxDate(ctx context.Context) (string, error)
	DateBounds(ctx context.Context) (minDate, maxDate string, err error)

	// AggregateTemperatures computes MIN/AVG/MAX over date >= start, further
	// limited to date <= *end when end is non-nil. An empty selection yields
	// a row of NULLs, not an error.
	AggregateTemperatures(ctx context.Context, start string, end *string) (*models.TemperatureAggregate, error)

	Close() error
}

// climateRepository implements ClimateRepository
type climateRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewClimateRepository creates a new climate repository
func NewClimateRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ClimateRepository {
	return &climateRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Session acquires a pooled connection for the duration of one service call
func (r *climateRepository) Session(ctx context.Context) (ClimateSession, error) {
	s, err := r.db.Session(ctx)
	if err != nil {
		return nil, err
	}
	return &climateSession{session: s}, nil
}

// CreateStationsBatch inserts stations in a single transaction, skipping existing rows
func (r *climateRepository) CreateStationsBatch(ctx context.Context, stations []*models.Station) error {
	if len(stations) == 0 {
		return nil
	}

	query := `
		INSERT INTO station (id, station, name, latitude, longitude, elevation)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`

	return r.insertBatch(ctx, "insert_stations", query, len(stations), func(i int) []interface{} {
		s := stations[i]
		return []interface{}{s.ID, s.Station, s.Name, s.Latitude, s.Longitude, s.Elevation}
	})
}

// CreateMeasurementsBatch inserts measurements in a single transaction, skipping existing rows
func (r *climateRepository) CreateMeasurementsBatch(ctx context.Context, measurements []*models.Measurement) error {
	if len(measurements) == 0 {
		return nil
	}

	query := `
		INSERT INTO measurement (id, station, date, prcp, tobs)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`

	return r.insertBatch(ctx, "insert_measurements", query, len(measurements), func(i int) []interface{} {
		m := measurements[i]
		return []interface{}{m.ID, m.Station, m.Date, m.Precipitation, m.Temperature}
	})
}

func (r *climateRepository) insertBatch(ctx context.Context, queryType, query string, n int, args func(i int) []interface{}) error {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(n))
		r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"query_type":  queryType,
			"count":       n,
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, tx.Rebind(query))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			r.metrics.RecordDBError("insert_error")
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(n))

	return nil
}

// HealthCheck performs a repository health check
func (r *climateRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

type climateSession struct {
	session *database.Session
}

func (s *climateSession) ListPrecipitation(ctx context.Context) ([]models.PrecipitationRow, error) {
	query := `
		SELECT date, prcp AS precipitation, station
		FROM measurement
		ORDER BY id
	`

	rows := []models.PrecipitationRow{}
	if err := s.session.SelectContext(ctx, "list_precipitation", &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list precipitation: %w", err)
	}

	return rows, nil
}

func (s *climateSession) ListStations(ctx context.Context) ([]models.Station, error) {
	query := `
		SELECT id, station, name, latitude, longitude, elevation
		FROM station
		ORDER BY id
	`

	stations := []models.Station{}
	if err := s.session.SelectContext(ctx, "list_stations", &stations, query); err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}

	return stations, nil
}

func (s *climateSession) ListTemperaturesSince(ctx context.Context, floor string) ([]models.TemperatureRow, error) {
	query := `
		SELECT date, tobs AS temperature, station
		FROM measurement
		WHERE date >= ?
		ORDER BY id
	`

	rows := []models.TemperatureRow{}
	if err := s.session.SelectContext(ctx, "list_temperatures", &rows, query, floor); err != nil {
		return nil, fmt.Errorf("failed to list temperatures since %s: %w", floor, err)
	}

	return rows, nil
}

func (s *climateSession) MaxDate(ctx context.Context) (string, error) {
	var maxDate sql.NullString
	if err := s.session.GetContext(ctx, "max_date", &maxDate, `SELECT MAX(date) FROM measurement`); err != nil {
		return "", fmt.Errorf("failed to get max date: %w", err)
	}

	if !maxDate.Valid {
		return "", &NotFoundError{
			Resource: "measurement",
			ID:       "max(date)",
		}
	}

	return maxDate.String, nil
}

func (s *climateSession) DateBounds(ctx context.Context) (string, string, error) {
	var bounds struct {
		MinDate sql.NullString `db:"min_date"`
		MaxDate sql.NullString `db:"max_date"`
	}

	query := `SELECT MIN(date) AS min_date, MAX(date) AS max_date FROM measurement`
	if err := s.session.GetContext(ctx, "date_bounds", &bounds, query); err != nil {
		return "", "", fmt.Errorf("failed to get date bounds: %w", err)
	}

	if !bounds.MinDate.Valid || !bounds.MaxDate.Valid {
		return "", "", &NotFoundError{
			Resource: "measurement",
			ID:       "min(date), max(date)",
		}
	}

	return bounds.MinDate.String, bounds.MaxDate.String, nil
}

func (s *climateSession) AggregateTemperatures(ctx context.Context, start string, end *string) (*models.TemperatureAggregate, error) {
	query := `
		SELECT
			MIN(tobs) AS min_temperature,
			AVG(tobs) AS avg_temperature,
			MAX(tobs) AS max_temperature,
			MIN(date) AS from_date,
			MAX(date) AS to_date
		FROM measurement
		WHERE date >= ?
	`
	args := []interface{}{start}

	if end != nil {
		query += " AND date <= ?"
		args = append(args, *end)
	}

	var agg models.TemperatureAggregate
	if err := s.session.GetContext(ctx, "aggregate_temperatures", &agg, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate temperatures: %w", err)
	}

	return &agg, nil
}

func (s *climateSession) Close() error {
	return s.session.Close()
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
