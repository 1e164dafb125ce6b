// Package db opens the relational store shared by the services.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	defaultSQLitePath     = "portfolio.db"
	defaultConnectTimeout = 60 * time.Second
	retryInterval         = time.Second

	// pgUniqueViolation is the SQLSTATE for unique_violation.
	pgUniqueViolation = "23505"
)

// Config holds database connection settings.
type Config struct {
	URL            string        // Postgres DSN; empty selects SQLite
	SQLitePath     string        // SQLite database file used when URL is empty
	RunMigrations  bool          // AutoMigrate the given models on open
	ConnectTimeout time.Duration // How long to keep retrying the initial connection
}

// Driver returns the dialect selected by cfg.
func (c Config) Driver() string {
	if c.URL != "" {
		return "postgres"
	}
	return "sqlite"
}

// LoadConfigFromEnv reads database settings from environment variables.
func LoadConfigFromEnv() Config {
	cfg := Config{
		URL:            os.Getenv("DATABASE_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		RunMigrations:  os.Getenv("RUN_MIGRATIONS") == "true",
		ConnectTimeout: defaultConnectTimeout,
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = defaultSQLitePath
	}
	return cfg
}

// BuildDSN returns the DSN for the selected driver.
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	path := cfg.SQLitePath
	if path == "" {
		path = defaultSQLitePath
	}
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_foreign_keys=on"
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// PostgresOpener opens a Postgres connection through pgx.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// SQLiteOpener opens a SQLite database file.
func SQLiteOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), gormConfig())
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// OpenDB connects to the configured database and migrates models when enabled.
// SQLite databases are always migrated because they are created on first use.
func OpenDB(cfg Config, models ...any) (*gorm.DB, error) {
	open := SQLiteOpener
	if cfg.Driver() == "postgres" {
		open = PostgresOpener
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, open)
	if err != nil {
		return nil, err
	}
	slog.Info("database connected", "driver", cfg.Driver())

	if cfg.RunMigrations || cfg.Driver() == "sqlite" {
		// マイグレーション（Customer, Portfolio, Investment など）
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
