package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/friend"
	"github.com/ferdiebergado/friendsystem/internal/platform/db"
)

// Storage bundles the repository and transaction manager of the configured driver.
type Storage struct {
	Repo  friend.Repository
	TxMgr db.TxManager
	conn  *sql.DB
}

// OpenStorage connects to the configured database and applies pending
// migrations when cfg.Migrate is set. The memory driver keeps everything in
// process and needs no migrations.
func OpenStorage(ctx context.Context, cfg *config.DB) (*Storage, error) {
	if cfg.Driver == config.DriverMemory {
		store, err := friend.NewMemDB()
		if err != nil {
			return nil, fmt.Errorf("create memory store: %w", err)
		}
		return &Storage{
			Repo:  friend.NewMemoryRepository(store),
			TxMgr: friend.NewMemoryTxManager(store),
		}, nil
	}

	conn, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dialect := db.Dialect(cfg.Driver)
	if cfg.Migrate {
		if err := db.NewMigrator(conn, dialect, nil).Up(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	return &Storage{
		Repo:  friend.NewSQLRepository(conn, dialect),
		TxMgr: db.NewSQLTxManager(conn),
		conn:  conn,
	}, nil
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}
	return s.conn.PingContext(ctx)
}

func (s *Storage) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
