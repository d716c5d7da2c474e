package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations
var migrationsFS embed.FS

const migrationSuffix = ".up.sql"

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS friendsystem_schema_migrations (
    version    VARCHAR(255) NOT NULL PRIMARY KEY,
    applied_at VARCHAR(64) NOT NULL
)`

// Migration is one embedded *.up.sql file.
type Migration struct {
	Version    string
	Statements []string
}

// Migrations returns the embedded migrations of dialect in lexical order.
func Migrations(dialect Dialect) ([]Migration, error) {
	dir := path.Join("migrations", string(dialect))
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, migrationSuffix) {
			continue
		}

		contents, err := fs.ReadFile(migrationsFS, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		migrations = append(migrations, Migration{
			Version:    strings.TrimSuffix(name, migrationSuffix),
			Statements: splitSQLStatements(string(contents)),
		})
	}

	return migrations, nil
}

// Schema renders every migration of dialect as one SQL script.
func Schema(dialect Dialect) (string, error) {
	migrations, err := Migrations(dialect)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, m := range migrations {
		fmt.Fprintf(&b, "-- %s\n", m.Version)
		for _, stmt := range m.Statements {
			b.WriteString(stmt)
			b.WriteString(";\n\n")
		}
	}
	return b.String(), nil
}

// Migrator applies the embedded migrations that a database has not seen yet.
type Migrator struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

func NewMigrator(db *sql.DB, dialect Dialect, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, dialect: dialect, logger: logger}
}

// Up applies pending migrations, each inside its own transaction.
func (m *Migrator) Up(ctx context.Context) error {
	if m.db == nil {
		return errors.New("migrator requires a database handle")
	}

	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	migrations, err := Migrations(m.dialect)
	if err != nil {
		return err
	}

	txMgr := NewSQLTxManager(m.db)
	applied := 0
	for _, migration := range migrations {
		err := txMgr.RunInTx(ctx, func(ctx context.Context) error {
			return m.apply(ctx, migration)
		})
		if errors.Is(err, errAlreadyApplied) {
			continue
		}
		if err != nil {
			return err
		}

		applied++
		m.logger.Info("migration applied", "version", migration.Version)
	}

	if applied == 0 {
		m.logger.Info("no migrations to run")
	}
	return nil
}

var errAlreadyApplied = errors.New("migration already applied")

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx := TxFromContext(ctx)

	var exists int
	query := Rebind(m.dialect, "SELECT COUNT(*) FROM friendsystem_schema_migrations WHERE version = ?")
	if err := tx.QueryRowContext(ctx, query, migration.Version).Scan(&exists); err != nil {
		return fmt.Errorf("check migration %s: %w", migration.Version, err)
	}
	if exists > 0 {
		return errAlreadyApplied
	}

	for i, stmt := range migration.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %s [%d]: %w", migration.Version, i+1, err)
		}
	}

	insert := Rebind(m.dialect, "INSERT INTO friendsystem_schema_migrations (version, applied_at) VALUES (?, ?)")
	if _, err := tx.ExecContext(ctx, insert, migration.Version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record migration %s: %w", migration.Version, err)
	}

	return nil
}

func splitSQLStatements(sqlText string) []string {
	raw := strings.Split(sqlText, ";")
	out := make([]string, 0, len(raw))
	for _, stmt := range raw {
		trimmed := strings.TrimSpace(stmt)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
