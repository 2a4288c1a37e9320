package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

func newTestDB(t *testing.T) (*DB, *metrics.Collector) {
	t.Helper()

	core, _ := observer.New(zap.DebugLevel)
	logger := logging.NewStructuredLoggerWithCore(core, "database-test", "test")
	collector := metrics.NewCollector("database_test", prometheus.NewRegistry())

	cfg := &Config{
		Driver:       DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 2,
	}

	db, err := NewDB(cfg, logger, collector)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, collector
}

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{
			name: "postgres",
			cfg: Config{
				Driver: DriverPostgres, Host: "localhost", Port: 5432,
				User: "climate", Password: "secret", Database: "hawaii", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=climate password=secret dbname=hawaii sslmode=disable",
		},
		{
			name: "sqlite read only",
			cfg:  Config{Driver: DriverSQLite, Path: "hawaii.sqlite", ReadOnly: true},
			want: "file:hawaii.sqlite?_busy_timeout=5000&mode=ro",
		},
		{
			name: "sqlite uri with params",
			cfg:  Config{Driver: DriverSQLite, Path: "file:hawaii.sqlite?cache=shared", ReadOnly: true},
			want: "file:hawaii.sqlite?cache=shared&_busy_timeout=5000&mode=ro",
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Driver: DriverSQLite},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Driver: "mysql"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.DSN()
			if (err != nil) != tt.wantErr {
				t.Fatalf("DSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DSN() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Name(t *testing.T) {
	sqlite := Config{Driver: DriverSQLite, Path: "hawaii.sqlite"}
	if sqlite.Name() != "hawaii.sqlite" {
		t.Errorf("Name() = %v, want hawaii.sqlite", sqlite.Name())
	}

	pg := Config{Driver: DriverPostgres, Database: "hawaii", Password: "secret"}
	if pg.Name() != "hawaii" {
		t.Errorf("Name() = %v, want hawaii", pg.Name())
	}
}

func TestDB_SessionQueries(t *testing.T) {
	db, collector := newTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "create_table", `CREATE TABLE sample (id INTEGER PRIMARY KEY, label TEXT)`); err != nil {
		t.Fatalf("ExecContext(create) error = %v", err)
	}
	if _, err := db.ExecContext(ctx, "insert", `INSERT INTO sample (id, label) VALUES (?, ?), (?, ?)`, 1, "a", 2, "b"); err != nil {
		t.Fatalf("ExecContext(insert) error = %v", err)
	}

	session, err := db.Session(ctx)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}

	if got := testutil.ToFloat64(collector.DBSessionsOpen); got != 1 {
		t.Errorf("db_sessions_open = %v, want 1", got)
	}

	var labels []string
	if err := session.SelectContext(ctx, "select_labels", &labels, `SELECT label FROM sample WHERE id >= ? ORDER BY id`, 1); err != nil {
		t.Fatalf("SelectContext() error = %v", err)
	}
	if strings.Join(labels, ",") != "a,b" {
		t.Errorf("labels = %v, want [a b]", labels)
	}

	var count int
	if err := session.GetContext(ctx, "count", &count, `SELECT COUNT(*) FROM sample`); err != nil {
		t.Fatalf("GetContext() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if got := testutil.ToFloat64(collector.DBSessionsOpen); got != 0 {
		t.Errorf("db_sessions_open after close = %v, want 0", got)
	}
}

func TestDB_SelectErrorIsCounted(t *testing.T) {
	db, collector := newTestDB(t)
	ctx := context.Background()

	session, err := db.Session(ctx)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	defer session.Close()

	var rows []string
	if err := session.SelectContext(ctx, "missing_table", &rows, `SELECT label FROM missing`); err == nil {
		t.Fatal("SelectContext() on missing table should fail")
	}

	if got := testutil.ToFloat64(collector.DBErrorsTotal.WithLabelValues("select_error")); got != 1 {
		t.Errorf("db_errors_total{select_error} = %v, want 1", got)
	}
}

func TestDB_HealthCheck(t *testing.T) {
	db, _ := newTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestDB_RecordPoolStats(t *testing.T) {
	db, collector := newTestDB(t)

	session, err := db.Session(context.Background())
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	defer session.Close()

	db.recordPoolStats()

	if got := testutil.ToFloat64(collector.DBConnectionPool.WithLabelValues("in_use")); got != 1 {
		t.Errorf("db_connection_pool{in_use} = %v, want 1", got)
	}
}
