package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// Migrator applies the embedded goose migrations for the connection's dialect.
type Migrator struct {
	db      *sql.DB
	dialect string
	dir     string
}

// NewMigrator picks the migration set matching the gorm dialect.
func NewMigrator(gdb *gorm.DB) (*Migrator, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	switch name := gdb.Dialector.Name(); name {
	case "sqlite":
		return &Migrator{db: sqlDB, dialect: "sqlite3", dir: "migrations/sqlite"}, nil
	case "postgres":
		return &Migrator{db: sqlDB, dialect: "postgres", dir: "migrations/postgres"}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", name)
	}
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(func() error { return goose.UpContext(ctx, m.db, m.dir) })
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(func() error { return goose.DownContext(ctx, m.db, m.dir) })
}

// DownTo rolls back migrations until version is the current one.
func (m *Migrator) DownTo(ctx context.Context, version int64) error {
	return m.run(func() error { return goose.DownToContext(ctx, m.db, m.dir, version) })
}

// Status logs the applied state of every migration.
func (m *Migrator) Status(ctx context.Context) error {
	return m.run(func() error { return goose.StatusContext(ctx, m.db, m.dir) })
}

// Version returns the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var v int64
	err := m.run(func() error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, m.db)
		return err
	})
	return v, err
}

func (m *Migrator) run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(m.dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := fn(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// gooseLogger routes goose output to slog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", "migrate")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...), "component", "migrate")
	os.Exit(1)
}
