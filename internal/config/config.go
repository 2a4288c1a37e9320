package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"climate-api/pkg/database"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds settings for both supported drivers.
// Driver selects which block is used.
type DatabaseConfig struct {
	Driver string

	SQLitePath string

	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	PoolMonitorInterval time.Duration
}

// ConnectionConfig builds the database connection settings. readOnly opens
// SQLite files in read-only mode and is ignored for PostgreSQL.
func (d DatabaseConfig) ConnectionConfig(readOnly bool) *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		Path:            d.SQLitePath,
		ReadOnly:        readOnly,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

type fileConfig struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
		Pool struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
			ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
			MonitorInterval string `yaml:"monitor_interval"`
		} `yaml:"pool"`
	} `yaml:"database"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads config/{ENV_NAME}.yaml (default dev) relative to the working
// directory, or the file named by CONFIG_FILE, then applies environment overrides.
// A missing default file is not an error; a missing CONFIG_FILE is.
func LoadConfig() (*Config, error) {
	var fc fileConfig

	path, explicit, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults and env only
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config file not found: %s", path)
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := fromFile(&fc)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configPath() (string, bool, error) {
	if p := strings.TrimSpace(os.Getenv("CONFIG_FILE")); p != "" {
		return p, true, nil
	}

	env := strings.TrimSpace(os.Getenv("ENV_NAME"))
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("config: get working directory: %w", err)
	}
	return filepath.Join(cwd, "config", env+".yaml"), false, nil
}

func fromFile(fc *fileConfig) *Config {
	cfg := &Config{}

	cfg.Server.Host = orDefault(fc.Server.Host, "0.0.0.0")
	cfg.Server.Port = fc.Server.Port
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	cfg.Server.ReadTimeout = parseDuration(fc.Server.ReadTimeout, 15*time.Second)
	cfg.Server.WriteTimeout = parseDuration(fc.Server.WriteTimeout, 15*time.Second)
	cfg.Server.IdleTimeout = parseDuration(fc.Server.IdleTimeout, 60*time.Second)
	cfg.Server.ShutdownTimeout = parseDuration(fc.Server.ShutdownTimeout, 30*time.Second)

	db := &cfg.Database
	db.Driver = strings.ToLower(orDefault(fc.Database.Driver, database.DriverSQLite))
	db.SQLitePath = orDefault(fc.Database.SQLite.Path, "Resources/hawaii.sqlite")
	db.Host = orDefault(fc.Database.Postgres.Host, "localhost")
	db.Port = fc.Database.Postgres.Port
	if db.Port == 0 {
		db.Port = 5432
	}
	db.User = fc.Database.Postgres.User
	db.Password = fc.Database.Postgres.Password
	db.Database = fc.Database.Postgres.DBName
	db.SSLMode = orDefault(fc.Database.Postgres.SSLMode, "disable")

	db.MaxOpenConns = fc.Database.Pool.MaxOpenConns
	if db.MaxOpenConns == 0 {
		db.MaxOpenConns = 10
	}
	db.MaxIdleConns = fc.Database.Pool.MaxIdleConns
	if db.MaxIdleConns == 0 {
		db.MaxIdleConns = 5
	}
	db.ConnMaxLifetime = parseDuration(fc.Database.Pool.ConnMaxLifetime, 30*time.Minute)
	db.ConnMaxIdleTime = parseDuration(fc.Database.Pool.ConnMaxIdleTime, 5*time.Minute)
	db.PoolMonitorInterval = parseDuration(fc.Database.Pool.MonitorInterval, 10*time.Second)

	cfg.Logging.Level = strings.ToLower(orDefault(fc.Logging.Level, "info"))

	return cfg
}

func applyEnv(cfg *Config) error {
	if v := env("HTTP_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := env("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	if v := env("DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := env("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := env("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := env("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT %q: %w", v, err)
		}
		cfg.Database.Port = port
	}
	if v := env("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := env("DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := env("DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	return nil
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case database.DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("database.sqlite.path is required for the sqlite3 driver")
		}
	case database.DriverPostgres:
		if c.Database.Host == "" {
			return errors.New("database.postgres.host is required for the postgres driver")
		}
		if c.Database.Database == "" {
			return errors.New("database.postgres.dbname is required for the postgres driver")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database.postgres.port must be between 1 and 65535, got %d", c.Database.Port)
		}
	default:
		return fmt.Errorf("database.driver must be sqlite3 or postgres, got %q", c.Database.Driver)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.pool.max_open_conns must be positive, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.pool.max_idle_conns must not be negative, got %d", c.Database.MaxIdleConns)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
