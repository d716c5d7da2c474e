package friend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/ferdiebergado/friendsystem/internal/platform/db"
	"github.com/google/uuid"
)

// Repository stores requests and friendships. Implementations read the active
// transaction from the context.
type Repository interface {
	FriendshipExists(ctx context.Context, a, b uuid.UUID) (bool, error)
	// FindRequest returns the pending request between a and b in either direction.
	FindRequest(ctx context.Context, a, b uuid.UUID) (*Request, error)
	CreateRequest(ctx context.Context, req Request) error
	// DeleteRequest deletes the pending request between a and b in either direction.
	DeleteRequest(ctx context.Context, a, b uuid.UUID) error
	CreateFriendship(ctx context.Context, f Friendship) error
	DeleteFriendship(ctx context.Context, a, b uuid.UUID) error
	// ListFriendships returns the friendships of player, oldest first.
	ListFriendships(ctx context.Context, player uuid.UUID) ([]Friendship, error)
	CountFriends(ctx context.Context, player uuid.UUID) (int, error)
	// LockPlayers blocks other transactions that lock any of players until
	// the active transaction ends.
	LockPlayers(ctx context.Context, players ...uuid.UUID) error
	// ListRequests returns the pending requests sent or received by player, oldest first.
	ListRequests(ctx context.Context, player uuid.UUID) ([]Request, error)
}

var _ Repository = (*SQLRepository)(nil)

var ErrQueryFailed = errors.New("friend repository: query failed")

const (
	QueryFriendshipExists = "SELECT 1 FROM friendsystem_friends WHERE pair_key = ?"
	QueryFindRequest      = "SELECT requester, requested, created_at FROM friendsystem_requests WHERE pair_key = ?"
	QueryDeleteRequest    = "DELETE FROM friendsystem_requests WHERE pair_key = ?"
	QueryDeleteFriendship = "DELETE FROM friendsystem_friends WHERE pair_key = ?"
	QueryCountFriends     = "SELECT COUNT(*) FROM friendsystem_friends WHERE person1 = ? OR person2 = ?"

	// QueryLockPlayer takes a transaction scoped advisory lock. Hash collisions
	// only serialize unrelated players.
	QueryLockPlayer = "SELECT pg_advisory_xact_lock(hashtext(?))"
)

const QueryCreateRequest = `
INSERT INTO friendsystem_requests (requester, requested, pair_key, created_at)
VALUES (?, ?, ?, ?)`

const QueryCreateFriendship = `
INSERT INTO friendsystem_friends (person1, person2, pair_key, created_at)
VALUES (?, ?, ?, ?)`

const QueryListFriendships = `
SELECT person1, person2, created_at FROM friendsystem_friends
WHERE person1 = ? OR person2 = ?
ORDER BY created_at, pair_key`

const QueryListRequests = `
SELECT requester, requested, created_at FROM friendsystem_requests
WHERE requester = ? OR requested = ?
ORDER BY created_at, pair_key`

type queries struct {
	friendshipExists, findRequest, createRequest, deleteRequest string
	createFriendship, deleteFriendship, listFriendships         string
	countFriends, listRequests                                  string

	// empty when the dialect already serializes writers
	lockPlayer string
}

func newQueries(dialect db.Dialect) queries {
	return queries{
		friendshipExists: db.Rebind(dialect, QueryFriendshipExists),
		findRequest:      db.Rebind(dialect, QueryFindRequest),
		createRequest:    db.Rebind(dialect, QueryCreateRequest),
		deleteRequest:    db.Rebind(dialect, QueryDeleteRequest),
		createFriendship: db.Rebind(dialect, QueryCreateFriendship),
		deleteFriendship: db.Rebind(dialect, QueryDeleteFriendship),
		listFriendships:  db.Rebind(dialect, QueryListFriendships),
		countFriends:     db.Rebind(dialect, QueryCountFriends),
		listRequests:     db.Rebind(dialect, QueryListRequests),
		lockPlayer:       lockPlayerQuery(dialect),
	}
}

// sqlite runs on a single connection, so its transactions never overlap.
func lockPlayerQuery(dialect db.Dialect) string {
	if dialect != db.Postgres {
		return ""
	}
	return db.Rebind(dialect, QueryLockPlayer)
}

// SQLRepository is the Repository for postgres and sqlite.
type SQLRepository struct {
	conn *sql.DB
	q    queries
}

func NewSQLRepository(conn *sql.DB, dialect db.Dialect) *SQLRepository {
	return &SQLRepository{
		conn: conn,
		q:    newQueries(dialect),
	}
}

//nolint:ireturn //Either the active *sql.Tx or the pool.
func (r *SQLRepository) executor(ctx context.Context) db.Executor {
	return db.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLRepository) FriendshipExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var one int
	err := r.executor(ctx).QueryRowContext(ctx, r.q.friendshipExists, PairKey(a, b)).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: friendship exists %s: %w", ErrQueryFailed, PairKey(a, b), err)
	}
	return true, nil
}

func (r *SQLRepository) FindRequest(ctx context.Context, a, b uuid.UUID) (*Request, error) {
	row := r.executor(ctx).QueryRowContext(ctx, r.q.findRequest, PairKey(a, b))
	var req Request
	if err := row.Scan(&req.Requester, &req.Requested, &req.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("%w: find request %s: %w", ErrQueryFailed, PairKey(a, b), err)
	}
	return &req, nil
}

func (r *SQLRepository) CreateRequest(ctx context.Context, req Request) error {
	key := PairKey(req.Requester, req.Requested)
	_, err := r.executor(ctx).ExecContext(ctx, r.q.createRequest, req.Requester, req.Requested, key, req.CreatedAt.UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("create request %s: %w", key, ErrConflict)
		}
		return fmt.Errorf("%w: create request %s: %w", ErrQueryFailed, key, err)
	}
	return nil
}

func (r *SQLRepository) DeleteRequest(ctx context.Context, a, b uuid.UUID) error {
	return r.deleteByPair(ctx, r.q.deleteRequest, PairKey(a, b), ErrRequestNotFound)
}

func (r *SQLRepository) CreateFriendship(ctx context.Context, f Friendship) error {
	key := PairKey(f.PlayerA, f.PlayerB)
	_, err := r.executor(ctx).ExecContext(ctx, r.q.createFriendship, f.PlayerA, f.PlayerB, key, f.CreatedAt.UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("create friendship %s: %w", key, ErrConflict)
		}
		return fmt.Errorf("%w: create friendship %s: %w", ErrQueryFailed, key, err)
	}
	return nil
}

func (r *SQLRepository) DeleteFriendship(ctx context.Context, a, b uuid.UUID) error {
	return r.deleteByPair(ctx, r.q.deleteFriendship, PairKey(a, b), ErrNotFriends)
}

func (r *SQLRepository) deleteByPair(ctx context.Context, query, key string, errNone error) error {
	res, err := r.executor(ctx).ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrQueryFailed, key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected %s: %w", ErrQueryFailed, key, err)
	}

	if n == 0 {
		return errNone
	}
	return nil
}

func (r *SQLRepository) ListFriendships(ctx context.Context, player uuid.UUID) ([]Friendship, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, r.q.listFriendships, player, player)
	if err != nil {
		return nil, fmt.Errorf("%w: list friendships of %s: %w", ErrQueryFailed, player, err)
	}
	defer rows.Close()

	//nolint:prealloc //Cannot identify the length of the rows without running another query.
	var friendships []Friendship
	for rows.Next() {
		var f Friendship
		if err := rows.Scan(&f.PlayerA, &f.PlayerB, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("friend repository: scan friendship row: %w", err)
		}
		friendships = append(friendships, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("friend repository: iterate over friendship rows: %w", err)
	}

	return friendships, nil
}

func (r *SQLRepository) CountFriends(ctx context.Context, player uuid.UUID) (int, error) {
	var count int
	if err := r.executor(ctx).QueryRowContext(ctx, r.q.countFriends, player, player).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count friends of %s: %w", ErrQueryFailed, player, err)
	}
	return count, nil
}

// LockPlayers locks players in a fixed order so that two transactions locking
// the same pair cannot deadlock.
func (r *SQLRepository) LockPlayers(ctx context.Context, players ...uuid.UUID) error {
	if r.q.lockPlayer == "" {
		return nil
	}

	keys := make([]string, 0, len(players))
	for _, p := range players {
		keys = append(keys, p.String())
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	for _, key := range keys {
		if _, err := r.executor(ctx).ExecContext(ctx, r.q.lockPlayer, key); err != nil {
			return fmt.Errorf("%w: lock player %s: %w", ErrQueryFailed, key, err)
		}
	}
	return nil
}

func (r *SQLRepository) ListRequests(ctx context.Context, player uuid.UUID) ([]Request, error) {
	rows, err := r.executor(ctx).QueryContext(ctx, r.q.listRequests, player, player)
	if err != nil {
		return nil, fmt.Errorf("%w: list requests of %s: %w", ErrQueryFailed, player, err)
	}
	defer rows.Close()

	//nolint:prealloc //Cannot identify the length of the rows without running another query.
	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.Requester, &req.Requested, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("friend repository: scan request row: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("friend repository: iterate over request rows: %w", err)
	}

	return requests, nil
}
