package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration
type Config struct {
	Driver string

	// SQLite
	Path     string
	ReadOnly bool

	// PostgreSQL
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN builds the driver-specific connection string
func (c *Config) DSN() (string, error) {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host,
			c.Port,
			c.User,
			c.Password,
			c.Database,
			c.SSLMode,
		), nil
	case DriverSQLite:
		return sqliteDSN(c.Path, c.ReadOnly)
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// Name identifies the database in logs without leaking credentials
func (c *Config) Name() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return c.Database
}

func sqliteDSN(path string, readOnly bool) (string, error) {
	if path == "" {
		return "", errors.New("sqlite path is required")
	}

	params := []string{"_busy_timeout=5000"}
	if readOnly {
		params = append(params, "mode=ro")
	} else if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// DB wraps sqlx.DB with monitoring and metrics
type DB struct {
	db      *sqlx.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	config  *Config
}

// NewDB opens and pings a database connection for the configured driver
func NewDB(cfg *Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info(context.Background(), "[DB_INIT] Database connection established", logging.Fields{
		"driver":            cfg.Driver,
		"database":          cfg.Name(),
		"host":              cfg.Host,
		"read_only":         cfg.ReadOnly,
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})

	return &DB{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
		config:  cfg,
	}, nil
}

// Close closes the database connection
func (p *DB) Close() error {
	p.logger.Info(context.Background(), "[DB_CLOSE] Closing database connection", logging.Fields{
		"database": p.config.Name(),
	})
	return p.db.Close()
}

// ExecContext executes a command with context and metrics
func (p *DB) ExecContext(ctx context.Context, queryType, query string, args ...interface{}) (sql.Result, error) {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		p.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())

		p.logger.Debug(ctx, "[DB_EXEC] Command executed", logging.Fields{
			"query_type":  queryType,
			"duration_ms": duration.Milliseconds(),
		})
	}()

	result, err := p.db.ExecContext(ctx, p.db.Rebind(query), args...)
	if err != nil {
		p.metrics.RecordDBError("exec_error")
		p.logger.Error(ctx, "[DB_EXEC_ERROR] Command failed", logging.Fields{
			"query_type": queryType,
		}, err)
		return nil, err
	}

	return result, nil
}

// BeginTx begins a new transaction
func (p *DB) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		p.metrics.RecordDBError("transaction_begin_error")
		p.logger.Error(ctx, "[DB_TX_ERROR] Failed to begin transaction", logging.Fields{}, err)
		return nil, err
	}

	return tx, nil
}

// Session acquires a dedicated connection from the pool. The caller must
// Close it; every query issued through it runs on the same connection.
func (p *DB) Session(ctx context.Context) (*Session, error) {
	conn, err := p.db.Connx(ctx)
	if err != nil {
		p.metrics.RecordDBError("session_error")
		p.logger.Error(ctx, "[DB_SESSION_ERROR] Failed to acquire session", logging.Fields{}, err)
		return nil, fmt.Errorf("failed to acquire database session: %w", err)
	}

	p.metrics.DBSessionsOpen.Inc()

	return &Session{conn: conn, db: p}, nil
}

// StartPoolMonitor periodically updates connection pool metrics until ctx is done
func (p *DB) StartPoolMonitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.recordPoolStats()
			}
		}
	}()
}

func (p *DB) recordPoolStats() {
	stats := p.db.Stats()

	p.metrics.UpdateDBConnectionPool(
		stats.InUse,
		stats.Idle,
		stats.OpenConnections,
	)

	if stats.MaxOpenConnections <= 0 {
		return
	}

	// Log warning if connection pool is near capacity
	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections)
	if utilization > 0.8 {
		p.logger.Warn(context.Background(), "[DB_POOL_WARNING] Connection pool utilization high", logging.Fields{
			"in_use":      stats.InUse,
			"idle":        stats.Idle,
			"total":       stats.OpenConnections,
			"max_open":    stats.MaxOpenConnections,
			"utilization": fmt.Sprintf("%.2f%%", utilization*100),
		})
	}
}

// HealthCheck performs a database health check
func (p *DB) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Session is a request-scoped handle on one pooled connection
type Session struct {
	conn   *sqlx.Conn
	db     *DB
	closed bool
}

// GetContext executes a query that returns a single row
func (s *Session) GetContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		s.db.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(timer).Seconds())
	}()

	err := s.conn.GetContext(ctx, dest, s.conn.Rebind(query), args...)
	if err != nil && err != sql.ErrNoRows {
		s.db.metrics.RecordDBError("get_error")
		s.db.logger.Error(ctx, "[DB_GET_ERROR] Get query failed", logging.Fields{
			"query_type": queryType,
		}, err)
	}

	return err
}

// SelectContext executes a query that returns multiple rows
func (s *Session) SelectContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		s.db.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())

		s.db.logger.Debug(ctx, "[DB_QUERY] Query executed", logging.Fields{
			"query_type":  queryType,
			"duration_ms": duration.Milliseconds(),
		})
	}()

	err := s.conn.SelectContext(ctx, dest, s.conn.Rebind(query), args...)
	if err != nil {
		s.db.metrics.RecordDBError("select_error")
		s.db.logger.Error(ctx, "[DB_SELECT_ERROR] Select query failed", logging.Fields{
			"query_type": queryType,
		}, err)
		return err
	}

	return nil
}

// Close returns the connection to the pool. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.db.metrics.DBSessionsOpen.Dec()
	return s.conn.Close()
}
