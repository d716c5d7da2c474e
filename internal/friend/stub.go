package friend

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var errNotStubbed = errors.New("not implemented by stub")

type StubService struct {
	SendRequestFunc   func(ctx context.Context, requester, requested uuid.UUID) (*SendResult, error)
	AcceptRequestFunc func(ctx context.Context, player, requester uuid.UUID) (*Friendship, error)
	RemoveRequestFunc func(ctx context.Context, player, other uuid.UUID) error
	RemoveFriendFunc  func(ctx context.Context, player, other uuid.UUID) error
	ListFriendsFunc   func(ctx context.Context, player uuid.UUID) ([]Friend, error)
	ListRequestsFunc  func(ctx context.Context, player uuid.UUID) (*Requests, error)
	AreFriendsFunc    func(ctx context.Context, a, b uuid.UUID) (bool, error)
}

var _ FriendService = (*StubService)(nil)

func (s *StubService) SendRequest(ctx context.Context, requester, requested uuid.UUID) (*SendResult, error) {
	if s.SendRequestFunc == nil {
		return nil, errNotStubbed
	}
	return s.SendRequestFunc(ctx, requester, requested)
}

func (s *StubService) AcceptRequest(ctx context.Context, player, requester uuid.UUID) (*Friendship, error) {
	if s.AcceptRequestFunc == nil {
		return nil, errNotStubbed
	}
	return s.AcceptRequestFunc(ctx, player, requester)
}

func (s *StubService) RemoveRequest(ctx context.Context, player, other uuid.UUID) error {
	if s.RemoveRequestFunc == nil {
		return errNotStubbed
	}
	return s.RemoveRequestFunc(ctx, player, other)
}

func (s *StubService) RemoveFriend(ctx context.Context, player, other uuid.UUID) error {
	if s.RemoveFriendFunc == nil {
		return errNotStubbed
	}
	return s.RemoveFriendFunc(ctx, player, other)
}

func (s *StubService) ListFriends(ctx context.Context, player uuid.UUID) ([]Friend, error) {
	if s.ListFriendsFunc == nil {
		return nil, errNotStubbed
	}
	return s.ListFriendsFunc(ctx, player)
}

func (s *StubService) ListRequests(ctx context.Context, player uuid.UUID) (*Requests, error) {
	if s.ListRequestsFunc == nil {
		return nil, errNotStubbed
	}
	return s.ListRequestsFunc(ctx, player)
}

func (s *StubService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if s.AreFriendsFunc == nil {
		return false, errNotStubbed
	}
	return s.AreFriendsFunc(ctx, a, b)
}

// StubRepository delegates to Repository, overriding the calls whose func is set.
type StubRepository struct {
	Repository

	CreateRequestFunc    func(ctx context.Context, req Request) error
	CreateFriendshipFunc func(ctx context.Context, f Friendship) error
	ListFriendshipsFunc  func(ctx context.Context, player uuid.UUID) ([]Friendship, error)
}

func (r *StubRepository) CreateRequest(ctx context.Context, req Request) error {
	if r.CreateRequestFunc != nil {
		return r.CreateRequestFunc(ctx, req)
	}
	return r.Repository.CreateRequest(ctx, req)
}

func (r *StubRepository) CreateFriendship(ctx context.Context, f Friendship) error {
	if r.CreateFriendshipFunc != nil {
		return r.CreateFriendshipFunc(ctx, f)
	}
	return r.Repository.CreateFriendship(ctx, f)
}

func (r *StubRepository) ListFriendships(ctx context.Context, player uuid.UUID) ([]Friendship, error) {
	if r.ListFriendshipsFunc != nil {
		return r.ListFriendshipsFunc(ctx, player)
	}
	return r.Repository.ListFriendships(ctx, player)
}
