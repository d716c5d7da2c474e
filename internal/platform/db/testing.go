package db

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/config"
	timex "github.com/ferdiebergado/friendsystem/internal/pkg/time"
)

// NewTestSQLite returns a migrated in-memory SQLite database that is closed when the test ends.
func NewTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.DB{
		Driver:      string(SQLite),
		Path:        memoryPath,
		PingTimeout: timex.Duration{Duration: 5 * time.Second},
	}

	return newTestDB(t, cfg)
}

// NewTestPostgres connects to the database named by the DB_* variables,
// skipping the test when DB_HOST is not set.
func NewTestPostgres(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST is not set")
	}

	cfg := config.Default().DB
	cfg.Driver = string(Postgres)
	cfg.Host = os.Getenv("DB_HOST")
	cfg.User = os.Getenv("DB_USER")
	cfg.Password = os.Getenv("DB_PASS")
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}

	return newTestDB(t, cfg)
}

func newTestDB(t *testing.T, cfg *config.DB) *sql.DB {
	t.Helper()

	conn, err := Connect(t.Context(), cfg)
	if err != nil {
		t.Fatalf("failed to connect to %s: %v", cfg.Driver, err)
	}

	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})

	if err := NewMigrator(conn, Dialect(cfg.Driver), nil).Up(t.Context()); err != nil {
		t.Fatalf("failed to migrate %s: %v", cfg.Driver, err)
	}

	return conn
}
