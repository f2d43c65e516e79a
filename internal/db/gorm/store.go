// Package gorm provides GORM-based database operations for catwalk.
package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver registered as "sqlite"
)

// Store represents the GORM database connection backing cats and walks.
type Store struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// Config holds database configuration.
type Config struct {
	Path     string          // Path to SQLite database file
	MaxConns int             // Maximum number of open connections (default: 1)
	LogLevel logger.LogLevel // GORM log level (logger.Silent for production)
}

// NewStore opens the database file, runs migrations and returns a process-scoped handle.
// Foreign keys, WAL and busy timeout are set per connection through DSN pragmas.
func NewStore(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(cfg.Path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0750); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := cleanPath +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger:      logger.Default.LogMode(cfg.LogLevel),
		PrepareStmt: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	store := &Store{
		DB:    db,
		sqlDB: sqlDB,
	}

	if err := runMigrations(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// CreateSchema applies any pending migrations. Safe to call repeatedly.
func (s *Store) CreateSchema(ctx context.Context) error {
	return runMigrations(s.DB.WithContext(ctx))
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PingContext verifies the database connection is alive.
func (s *Store) PingContext(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Counts returns the number of registered cats and recorded walks.
func (s *Store) Counts(ctx context.Context) (cats, walks int64, err error) {
	if err = s.DB.WithContext(ctx).Model(&Cat{}).Count(&cats).Error; err != nil {
		return 0, 0, fmt.Errorf("count cats: %w", err)
	}
	if err = s.DB.WithContext(ctx).Model(&Walk{}).Count(&walks).Error; err != nil {
		return 0, 0, fmt.Errorf("count walks: %w", err)
	}
	return cats, walks, nil
}

// ClearAll removes every walk and then every cat in one transaction.
// Walks go first because they reference cats.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM walks").Error; err != nil {
			return fmt.Errorf("delete walks: %w", err)
		}
		if err := tx.Exec("DELETE FROM cats").Error; err != nil {
			return fmt.Errorf("delete cats: %w", err)
		}
		return nil
	})
}
