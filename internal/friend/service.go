package friend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/platform/db"
	"github.com/google/uuid"
)

// Cache holds friend lists by player.
type Cache interface {
	Get(player uuid.UUID) ([]Friend, bool)
	Set(player uuid.UUID, friends []Friend)
	Remove(players ...uuid.UUID)
}

type nopCache struct{}

func (nopCache) Get(uuid.UUID) ([]Friend, bool) { return nil, false }
func (nopCache) Set(uuid.UUID, []Friend) {}
func (nopCache) Remove(...uuid.UUID) {}

var _ Cache = nopCache{}

type Service struct {
	repo       Repository
	txMgr      db.TxManager
	cache      Cache
	publisher  Publisher
	maxFriends int
	now        func() time.Time

	// writes counts committed changes; ListFriends only caches a list when
	// no change committed while it was being read.
	cacheMu sync.Mutex
	writes  uint64
}

func NewService(provider *Provider) *Service {
	svc := &Service{
		repo:      provider.Repo,
		txMgr:     provider.TxMgr,
		cache:     provider.Cache,
		publisher: provider.Publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}

	if provider.Cfg != nil && provider.Cfg.Friends != nil {
		svc.maxFriends = provider.Cfg.Friends.MaxFriends
	}

	if svc.cache == nil {
		svc.cache = nopCache{}
	}

	if svc.publisher == nil {
		svc.publisher = NopPublisher
	}

	return svc
}

// SetClock replaces the time source used for new rows and events.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SendRequest records a request from requester to requested. When requested
// already asked requester, the two become friends instead.
func (s *Service) SendRequest(ctx context.Context, requester, requested uuid.UUID) (*SendResult, error) {
	if requester == requested {
		return nil, ErrSelf
	}

	var res *SendResult
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		var err error
		res, err = s.sendRequest(txCtx, requester, requested)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("send request from %s to %s: %w", requester, requested, err)
	}

	if res.Status == StatusAccepted {
		slog.Info("Crossing request accepted.", "requester", requester, "requested", requested)
		s.committed(EventRequestAccepted, requester, requested)
	} else {
		slog.Info("Friend request sent.", "requester", requester, "requested", requested)
		s.committed(EventRequestSent, requester, requested)
	}

	return res, nil
}

func (s *Service) sendRequest(ctx context.Context, requester, requested uuid.UUID) (*SendResult, error) {
	friends, err := s.repo.FriendshipExists(ctx, requester, requested)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	pending, err := s.repo.FindRequest(ctx, requester, requested)
	switch {
	case err == nil:
		if pending.Requester == requester {
			return nil, ErrRequestExists
		}

		f, err := s.accept(ctx, *pending)
		if err != nil {
			return nil, err
		}
		return &SendResult{Status: StatusAccepted, Friendship: f}, nil
	case errors.Is(err, ErrRequestNotFound):
	default:
		return nil, err
	}

	req := Request{
		Requester: requester,
		Requested: requested,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	return &SendResult{Status: StatusRequested, Request: &req}, nil
}

// AcceptRequest accepts the request requester sent to player.
func (s *Service) AcceptRequest(ctx context.Context, player, requester uuid.UUID) (*Friendship, error) {
	if player == requester {
		return nil, ErrSelf
	}

	var f *Friendship
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		pending, err := s.repo.FindRequest(txCtx, player, requester)
		if err != nil {
			return err
		}

		if pending.Requester != requester {
			return ErrRequestNotFound
		}

		f, err = s.accept(txCtx, *pending)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("accept request from %s to %s: %w", requester, player, err)
	}

	slog.Info("Friend request accepted.", "requester", requester, "player", player)
	s.committed(EventRequestAccepted, player, requester)

	return f, nil
}

// accept turns req into a friendship. It must run inside a transaction.
func (s *Service) accept(ctx context.Context, req Request) (*Friendship, error) {
	if err := s.checkLimit(ctx, req.Requester, req.Requested); err != nil {
		return nil, err
	}

	if err := s.repo.DeleteRequest(ctx, req.Requester, req.Requested); err != nil {
		return nil, err
	}

	f := Friendship{
		PlayerA:   req.Requester,
		PlayerB:   req.Requested,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateFriendship(ctx, f); err != nil {
		return nil, err
	}

	return &f, nil
}

func (s *Service) checkLimit(ctx context.Context, players ...uuid.UUID) error {
	if s.maxFriends <= 0 {
		return nil
	}

	if err := s.repo.LockPlayers(ctx, players...); err != nil {
		return err
	}

	for _, p := range players {
		count, err := s.repo.CountFriends(ctx, p)
		if err != nil {
			return err
		}
		if count >= s.maxFriends {
			return fmt.Errorf("%s has %d friends: %w", p, count, ErrFriendLimit)
		}
	}
	return nil
}

// RemoveRequest deletes the pending request between player and other,
// whichever of them sent it.
func (s *Service) RemoveRequest(ctx context.Context, player, other uuid.UUID) error {
	if player == other {
		return ErrSelf
	}

	if err := s.repo.DeleteRequest(ctx, player, other); err != nil {
		return fmt.Errorf("remove request between %s and %s: %w", player, other, err)
	}

	slog.Info("Friend request removed.", "player", player, "other", other)
	s.committed(EventRequestRemoved, player, other)
	return nil
}

func (s *Service) RemoveFriend(ctx context.Context, player, other uuid.UUID) error {
	if player == other {
		return ErrSelf
	}

	if err := s.repo.DeleteFriendship(ctx, player, other); err != nil {
		return fmt.Errorf("remove friend %s of %s: %w", other, player, err)
	}

	slog.Info("Friend removed.", "player", player, "other", other)
	s.committed(EventFriendRemoved, player, other)
	return nil
}

// ListFriends returns the friends of player, oldest friendship first.
// The returned slice is owned by the caller.
func (s *Service) ListFriends(ctx context.Context, player uuid.UUID) ([]Friend, error) {
	if cached, ok := s.cache.Get(player); ok {
		return slices.Clone(cached), nil
	}

	s.cacheMu.Lock()
	seen := s.writes
	s.cacheMu.Unlock()

	friendships, err := s.repo.ListFriendships(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("list friends of %s: %w", player, err)
	}

	friends := make([]Friend, 0, len(friendships))
	for _, f := range friendships {
		friends = append(friends, Friend{PlayerID: f.Other(player), Since: f.CreatedAt})
	}

	s.cacheMu.Lock()
	if s.writes == seen {
		s.cache.Set(player, slices.Clone(friends))
	}
	s.cacheMu.Unlock()

	return friends, nil
}

func (s *Service) ListRequests(ctx context.Context, player uuid.UUID) (*Requests, error) {
	all, err := s.repo.ListRequests(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("list requests of %s: %w", player, err)
	}

	requests := &Requests{
		Incoming: []Request{},
		Outgoing: []Request{},
	}
	for _, req := range all {
		if req.Requester == player {
			requests.Outgoing = append(requests.Outgoing, req)
		} else {
			requests.Incoming = append(requests.Incoming, req)
		}
	}
	return requests, nil
}

func (s *Service) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if a == b {
		return false, ErrSelf
	}

	friends, err := s.repo.FriendshipExists(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("check friendship of %s and %s: %w", a, b, err)
	}
	return friends, nil
}

// runInTx runs fn in a transaction and runs it once more in a fresh
// transaction when a concurrent writer caused a unique violation.
func (s *Service) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.txMgr.RunInTx(ctx, fn)
	if !errors.Is(err, ErrConflict) {
		return err
	}

	slog.Info("Concurrent write detected, retrying.", "reason", err)
	return s.txMgr.RunInTx(ctx, fn)
}

func (s *Service) committed(typ EventType, actor, target uuid.UUID) {
	s.cacheMu.Lock()
	s.writes++
	s.cache.Remove(actor, target)
	s.cacheMu.Unlock()

	s.publisher.Publish(Event{
		Type:   typ,
		Actor:  actor,
		Target: target,
		At:     s.now(),
	})
}
