package friend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/platform/db"
	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const (
	tableFriendships = "friendships"
	tableRequests    = "requests"

	indexID        = "id"
	indexPlayerA   = "player_a"
	indexPlayerB   = "player_b"
	indexRequester = "requester"
	indexRequested = "requested"
)

type friendshipRecord struct {
	PairKey   string
	PlayerA   string
	PlayerB   string
	CreatedAt time.Time
}

type requestRecord struct {
	PairKey   string
	Requester string
	Requested string
	CreatedAt time.Time
}

func memorySchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableFriendships: {
				Name: tableFriendships,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:      {Name: indexID, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "PairKey"}},
					indexPlayerA: {Name: indexPlayerA, Indexer: &memdb.StringFieldIndex{Field: "PlayerA"}},
					indexPlayerB: {Name: indexPlayerB, Indexer: &memdb.StringFieldIndex{Field: "PlayerB"}},
				},
			},
			tableRequests: {
				Name: tableRequests,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:        {Name: indexID, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "PairKey"}},
					indexRequester: {Name: indexRequester, Indexer: &memdb.StringFieldIndex{Field: "Requester"}},
					indexRequested: {Name: indexRequested, Indexer: &memdb.StringFieldIndex{Field: "Requested"}},
				},
			},
		},
	}
}

// NewMemDB creates the in-memory store used by the memory driver.
func NewMemDB() (*memdb.MemDB, error) {
	store, err := memdb.NewMemDB(memorySchema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return store, nil
}

type memTxnKey struct{}

// MemoryTxManager runs fn inside one go-memdb write transaction.
// Write transactions are serialized, so a transaction sees no concurrent writes.
type MemoryTxManager struct {
	store *memdb.MemDB
}

var _ db.TxManager = (*MemoryTxManager)(nil)

func NewMemoryTxManager(store *memdb.MemDB) *MemoryTxManager {
	return &MemoryTxManager{store: store}
}

func (m *MemoryTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txn := m.store.Txn(true)
	txCtx := context.WithValue(ctx, memTxnKey{}, txn)

	defer func() {
		if r := recover(); r != nil {
			txn.Abort()
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		txn.Abort()
		return err
	}

	txn.Commit()
	return nil
}

// MemoryRepository is the Repository for the memory driver.
type MemoryRepository struct {
	store *memdb.MemDB
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository(store *memdb.MemDB) *MemoryRepository {
	return &MemoryRepository{store: store}
}

// txn returns the transaction started by MemoryTxManager, or a new one that
// the returned done func commits or aborts.
func (r *MemoryRepository) txn(ctx context.Context, write bool) (*memdb.Txn, func(err error)) {
	if txn, ok := ctx.Value(memTxnKey{}).(*memdb.Txn); ok {
		return txn, func(error) {}
	}

	txn := r.store.Txn(write)
	return txn, func(err error) {
		if write && err == nil {
			txn.Commit()
			return
		}
		txn.Abort()
	}
}

func (r *MemoryRepository) FriendshipExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	txn, done := r.txn(ctx, false)
	defer done(nil)

	raw, err := txn.First(tableFriendships, indexID, PairKey(a, b))
	if err != nil {
		return false, fmt.Errorf("%w: friendship exists: %w", ErrQueryFailed, err)
	}
	return raw != nil, nil
}

func (r *MemoryRepository) FindRequest(ctx context.Context, a, b uuid.UUID) (*Request, error) {
	txn, done := r.txn(ctx, false)
	defer done(nil)

	raw, err := txn.First(tableRequests, indexID, PairKey(a, b))
	if err != nil {
		return nil, fmt.Errorf("%w: find request: %w", ErrQueryFailed, err)
	}
	if raw == nil {
		return nil, ErrRequestNotFound
	}

	return toRequest(raw.(*requestRecord))
}

func (r *MemoryRepository) CreateRequest(ctx context.Context, req Request) (err error) {
	txn, done := r.txn(ctx, true)
	defer func() { done(err) }()

	key := PairKey(req.Requester, req.Requested)
	existing, err := txn.First(tableRequests, indexID, key)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrQueryFailed, err)
	}
	if existing != nil {
		return fmt.Errorf("create request %s: %w", key, ErrConflict)
	}

	rec := &requestRecord{
		PairKey:   key,
		Requester: req.Requester.String(),
		Requested: req.Requested.String(),
		CreatedAt: req.CreatedAt.UTC(),
	}
	if err := txn.Insert(tableRequests, rec); err != nil {
		return fmt.Errorf("%w: insert request: %w", ErrQueryFailed, err)
	}
	return nil
}

func (r *MemoryRepository) DeleteRequest(ctx context.Context, a, b uuid.UUID) error {
	return r.deleteByPair(ctx, tableRequests, PairKey(a, b), ErrRequestNotFound)
}

func (r *MemoryRepository) CreateFriendship(ctx context.Context, f Friendship) (err error) {
	txn, done := r.txn(ctx, true)
	defer func() { done(err) }()

	key := PairKey(f.PlayerA, f.PlayerB)
	existing, err := txn.First(tableFriendships, indexID, key)
	if err != nil {
		return fmt.Errorf("%w: create friendship: %w", ErrQueryFailed, err)
	}
	if existing != nil {
		return fmt.Errorf("create friendship %s: %w", key, ErrConflict)
	}

	rec := &friendshipRecord{
		PairKey:   key,
		PlayerA:   f.PlayerA.String(),
		PlayerB:   f.PlayerB.String(),
		CreatedAt: f.CreatedAt.UTC(),
	}
	if err := txn.Insert(tableFriendships, rec); err != nil {
		return fmt.Errorf("%w: insert friendship: %w", ErrQueryFailed, err)
	}
	return nil
}

func (r *MemoryRepository) DeleteFriendship(ctx context.Context, a, b uuid.UUID) error {
	return r.deleteByPair(ctx, tableFriendships, PairKey(a, b), ErrNotFriends)
}

func (r *MemoryRepository) deleteByPair(ctx context.Context, table, key string, errNone error) (err error) {
	txn, done := r.txn(ctx, true)
	defer func() { done(err) }()

	n, err := txn.DeleteAll(table, indexID, key)
	if err != nil {
		return fmt.Errorf("%w: delete %s from %s: %w", ErrQueryFailed, key, table, err)
	}
	if n == 0 {
		return errNone
	}
	return nil
}

func (r *MemoryRepository) ListFriendships(ctx context.Context, player uuid.UUID) ([]Friendship, error) {
	txn, done := r.txn(ctx, false)
	defer done(nil)

	recs, err := collect[friendshipRecord](txn, tableFriendships, player, indexPlayerA, indexPlayerB)
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].PairKey < recs[j].PairKey
	})

	friendships := make([]Friendship, 0, len(recs))
	for _, rec := range recs {
		f, err := toFriendship(rec)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, *f)
	}
	return friendships, nil
}

// LockPlayers is a no-op: memdb write transactions are already serialized.
func (r *MemoryRepository) LockPlayers(context.Context, ...uuid.UUID) error {
	return nil
}

func (r *MemoryRepository) CountFriends(ctx context.Context, player uuid.UUID) (int, error) {
	txn, done := r.txn(ctx, false)
	defer done(nil)

	recs, err := collect[friendshipRecord](txn, tableFriendships, player, indexPlayerA, indexPlayerB)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (r *MemoryRepository) ListRequests(ctx context.Context, player uuid.UUID) ([]Request, error) {
	txn, done := r.txn(ctx, false)
	defer done(nil)

	recs, err := collect[requestRecord](txn, tableRequests, player, indexRequester, indexRequested)
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].PairKey < recs[j].PairKey
	})

	requests := make([]Request, 0, len(recs))
	for _, rec := range recs {
		req, err := toRequest(rec)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, nil
}

// collect gathers the records of table whose indexes match player. A row
// never matches both indexes because both sides of a pair must differ.
func collect[T any](txn *memdb.Txn, table string, player uuid.UUID, indexes ...string) ([]*T, error) {
	var recs []*T
	for _, index := range indexes {
		it, err := txn.Get(table, index, player.String())
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s by %s: %w", ErrQueryFailed, table, index, err)
		}

		for obj := it.Next(); obj != nil; obj = it.Next() {
			rec, ok := obj.(*T)
			if !ok {
				return nil, fmt.Errorf("friend repository: unexpected %s record %T", table, obj)
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func toRequest(rec *requestRecord) (*Request, error) {
	requester, errA := uuid.Parse(rec.Requester)
	requested, errB := uuid.Parse(rec.Requested)
	if err := errors.Join(errA, errB); err != nil {
		slog.Error("corrupt request record", "pair_key", rec.PairKey, "reason", err)
		return nil, fmt.Errorf("friend repository: parse request %s: %w", rec.PairKey, err)
	}
	return &Request{Requester: requester, Requested: requested, CreatedAt: rec.CreatedAt}, nil
}

func toFriendship(rec *friendshipRecord) (*Friendship, error) {
	a, errA := uuid.Parse(rec.PlayerA)
	b, errB := uuid.Parse(rec.PlayerB)
	if err := errors.Join(errA, errB); err != nil {
		slog.Error("corrupt friendship record", "pair_key", rec.PairKey, "reason", err)
		return nil, fmt.Errorf("friend repository: parse friendship %s: %w", rec.PairKey, err)
	}
	return &Friendship{PlayerA: a, PlayerB: b, CreatedAt: rec.CreatedAt}, nil
}
