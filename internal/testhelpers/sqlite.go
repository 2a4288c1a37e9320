// Package testhelpers builds migrated SQLite stores for package tests.
package testhelpers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"climate-api/internal/models"
	"climate-api/migrations"
	"climate-api/pkg/database"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

// Store bundles a migrated database with the collaborators wired to it
type Store struct {
	DB      *database.DB
	Logger  *logging.StructuredLogger
	Metrics *metrics.Collector
	Logs    *observer.ObservedLogs
}

// NewStore opens a file-backed SQLite database under t.TempDir and applies
// the schema. The database is closed on test cleanup.
func NewStore(t *testing.T) *Store {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	logger := logging.NewStructuredLoggerWithCore(core, "climate-api-test", "test")
	collector := metrics.NewCollector("climate_test", prometheus.NewRegistry())

	db, err := database.NewDB(&database.Config{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "hawaii.sqlite"),
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	}, logger, collector)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := migrations.Up()
	if err != nil {
		t.Fatalf("migrations.Up() error = %v", err)
	}
	if _, err := db.ExecContext(context.Background(), "migrate_up", schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return &Store{DB: db, Logger: logger, Metrics: collector, Logs: logs}
}

// Seed inserts stations and measurements in order, assigning ids from 1
func (s *Store) Seed(t *testing.T, stations []models.Station, measurements []models.Measurement) {
	t.Helper()
	ctx := context.Background()

	for i, st := range stations {
		_, err := s.DB.ExecContext(ctx, "seed_station",
			`INSERT INTO station (id, station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?, ?)`,
			i+1, st.Station, st.Name, st.Latitude, st.Longitude, st.Elevation)
		if err != nil {
			t.Fatalf("seed station %s: %v", st.Station, err)
		}
	}

	for i, m := range measurements {
		_, err := s.DB.ExecContext(ctx, "seed_measurement",
			`INSERT INTO measurement (id, station, date, prcp, tobs) VALUES (?, ?, ?, ?, ?)`,
			i+1, m.Station, m.Date, m.Precipitation, m.Temperature)
		if err != nil {
			t.Fatalf("seed measurement %s@%s: %v", m.Station, m.Date, err)
		}
	}
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// HawaiiStations is a small sample of the station table
func HawaiiStations() []models.Station {
	return []models.Station{
		{Station: "USC00519397", Name: "WAIKIKI 717.2, HI US", Latitude: 21.2716, Longitude: -157.8168, Elevation: 3.0},
		{Station: "USC00513117", Name: "KANEOHE 838.1, HI US", Latitude: 21.4234, Longitude: -157.8015, Elevation: 14.6},
		{Station: "USC00519281", Name: "WAIHEE 837.5, HI US", Latitude: 21.45167, Longitude: -157.84889, Elevation: 32.9},
	}
}

// HawaiiMeasurements spans 2010-01-01 to 2017-08-23 with one NULL precipitation.
// Temperatures from 2016-08-23 onwards are 58, 74.2 and 87.
func HawaiiMeasurements() []models.Measurement {
	return []models.Measurement{
		{Station: "USC00519397", Date: "2010-01-01", Precipitation: Float(0.08), Temperature: 65},
		{Station: "USC00513117", Date: "2012-06-15", Precipitation: nil, Temperature: 76},
		{Station: "USC00519281", Date: "2016-08-22", Precipitation: Float(0.4), Temperature: 80},
		{Station: "USC00519397", Date: "2016-08-23", Precipitation: Float(0.0), Temperature: 58},
		{Station: "USC00513117", Date: "2017-01-15", Precipitation: Float(0.15), Temperature: 74.2},
		{Station: "USC00519281", Date: "2017-08-23", Precipitation: Float(0.45), Temperature: 87},
	}
}
