package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestDialector はDSNの形式から正しいドライバーが選択されることを検証します。
func TestDialector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dsn      string
		expected string
		wantErr  bool
	}{
		{"sqlite url", "sqlite://app.db", "sqlite", false},
		{"sqlite absolute url", "sqlite:///var/lib/app.db", "sqlite", false},
		{"bare path", "users.db", "sqlite", false},
		{"memory", ":memory:", "sqlite", false},
		{"postgres url", "postgres://u:p@localhost:5432/app?sslmode=disable", "postgres", false},
		{"postgresql url", "postgresql://u:p@localhost/app", "postgres", false},
		{"postgres key value", "host=localhost user=u dbname=app sslmode=disable", "postgres", false},
		{"empty", "  ", "", true},
		{"sqlite without path", "sqlite://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := Dialector(tt.dsn)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Name())
		})
	}
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := Open("sqlite://" + path)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.True(t, db.Config.TranslateError)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open("")

	assert.ErrorIs(t, err, ErrEmptyDSN)
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// リトライ間隔のスリープがあるため並列実行しない
	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 2, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, cause
	}

	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)

	assert.ErrorIs(t, err, cause)
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestMigrator(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := NewMigrator(db)
	require.NoError(t, err)

	require.NoError(t, m.Up(ctx))
	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasColumn("users", "badge"))
	assert.True(t, db.Migrator().HasTable("flash_messages"))

	require.NoError(t, m.Up(ctx), "up is idempotent")

	require.NoError(t, m.Down(ctx))
	assert.False(t, db.Migrator().HasTable("flash_messages"))

	require.NoError(t, m.DownTo(ctx, 1))
	assert.True(t, db.Migrator().HasTable("users"))
	assert.False(t, db.Migrator().HasColumn("users", "badge"), "down removes the badge column")

	require.NoError(t, m.Up(ctx))
	assert.True(t, db.Migrator().HasColumn("users", "badge"), "up adds it back")
	assert.NoError(t, m.Status(ctx))
}

func TestMigrator_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "unique.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := NewMigrator(db)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	require.NoError(t, db.Exec(`INSERT INTO users (name, email, password_hash) VALUES ('a', 'a@x.com', 'h')`).Error)
	err = db.Exec(`INSERT INTO users (name, email, password_hash) VALUES ('b', 'a@x.com', 'h')`).Error

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
