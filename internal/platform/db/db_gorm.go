// Package db opens the application database and applies schema migrations.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// ErrEmptyDSN is returned when DATABASE_URL is not set.
var ErrEmptyDSN = errors.New("database url is empty")

// Opener opens a gorm connection for a DSN. Tests replace it.
type Opener func(dsn string) (*gorm.DB, error)

// Dialector selects the gorm driver from the DSN.
//
//	sqlite://app.db, sqlite:///var/lib/app.db, app.db  -> SQLite
//	postgres://..., postgresql://..., host=... dbname=... -> PostgreSQL
func Dialector(dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, ErrEmptyDSN
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	case strings.Contains(dsn, "host=") && strings.Contains(dsn, "dbname="):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", dsn)
		}
		return sqlite.Open(path), nil
	default:
		return sqlite.Open(dsn), nil
	}
}

// Open connects to dsn with driver errors translated to gorm sentinels
// (gorm.ErrDuplicatedKey for unique violations).
// SQLite is limited to one open connection so writers never see "database is locked".
func Open(dsn string) (*gorm.DB, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}
