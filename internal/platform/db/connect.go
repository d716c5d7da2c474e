package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/ferdiebergado/friendsystem/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Connect opens and validates a pooled connection for cfg.Driver.
func Connect(ctx context.Context, cfg *config.DB) (*sql.DB, error) {
	dialect := Dialect(cfg.Driver)
	slog.Info("Connecting to the database...", "driver", cfg.Driver)

	driverName, err := dialect.DriverName()
	if err != nil {
		return nil, err
	}

	var dsn string
	switch dialect {
	case Postgres:
		dsn = PostgresDSN(cfg)
	case SQLite:
		dsn = SQLiteDSN(cfg.Path)
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	configurePool(conn, dialect, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout.Duration)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	slog.Info("Connected to the database.", "driver", cfg.Driver)

	return conn, nil
}

func configurePool(conn *sql.DB, dialect Dialect, cfg *config.DB) {
	if dialect == SQLite {
		// SQLite allows a single writer and an in-memory database lives
		// only as long as its one connection.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		if cfg.Path != memoryPath {
			conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime.Duration)
			conn.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration)
		}
		return
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime.Duration)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration)
}

func PostgresDSN(cfg *config.DB) string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}

	query := url.Values{}
	if cfg.SSLMode != "" {
		query.Set("sslmode", cfg.SSLMode)
	}
	query.Set("timezone", "UTC")
	dsn.RawQuery = query.Encode()

	return dsn.String()
}

func SQLiteDSN(path string) string {
	query := url.Values{}
	query.Add("_pragma", "busy_timeout(5000)")
	query.Add("_pragma", "foreign_keys(1)")
	if path != memoryPath {
		query.Add("_pragma", "journal_mode(WAL)")
	}
	return path + "?" + query.Encode()
}
