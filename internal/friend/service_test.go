package friend_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/friend"
	"github.com/ferdiebergado/friendsystem/internal/platform/cache"
	"github.com/ferdiebergado/friendsystem/internal/platform/db"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type recorder struct {
	mu     sync.Mutex
	events []friend.Event
}

func (r *recorder) Publish(e friend.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []friend.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	var types []friend.EventType
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

type fixture struct {
	svc    *friend.Service
	repo   friend.Repository
	events *recorder
	cache  *cache.LRU[uuid.UUID, []friend.Friend]
}

func newFixture(t *testing.T, maxFriends int) *fixture {
	t.Helper()

	s := newMemoryStorage(t)
	events := &recorder{}
	lru := cache.New[uuid.UUID, []friend.Friend](100, time.Minute)

	svc := friend.NewService(&friend.Provider{
		Cfg:       &config.Config{Friends: &config.Friends{MaxFriends: maxFriends}},
		Repo:      s.repo,
		TxMgr:     s.txMgr,
		Cache:     lru,
		Publisher: events,
	})

	clock := t0
	svc.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	return &fixture{svc: svc, repo: s.repo, events: events, cache: lru}
}

func TestService_SendRequest(t *testing.T) {
	t.Parallel()

	alice, bob := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		setup      func(t *testing.T, f *fixture)
		requester  uuid.UUID
		requested  uuid.UUID
		wantStatus friend.Status
		wantErr    error
		wantEvents []friend.EventType
	}{
		{
			name:       "New request",
			requester:  alice,
			requested:  bob,
			wantStatus: friend.StatusRequested,
			wantEvents: []friend.EventType{friend.EventRequestSent},
		},
		{
			name:      "Request to self",
			requester: alice,
			requested: alice,
			wantErr:   friend.ErrSelf,
		},
		{
			name: "Same direction twice",
			setup: func(t *testing.T, f *fixture) {
				t.Helper()
				mustSend(t, f.svc, alice, bob)
			},
			requester:  alice,
			requested:  bob,
			wantErr:    friend.ErrRequestExists,
			wantEvents: []friend.EventType{friend.EventRequestSent},
		},
		{
			name: "Crossing request is accepted",
			setup: func(t *testing.T, f *fixture) {
				t.Helper()
				mustSend(t, f.svc, bob, alice)
			},
			requester:  alice,
			requested:  bob,
			wantStatus: friend.StatusAccepted,
			wantEvents: []friend.EventType{friend.EventRequestSent, friend.EventRequestAccepted},
		},
		{
			name: "Already friends",
			setup: func(t *testing.T, f *fixture) {
				t.Helper()
				mustSend(t, f.svc, bob, alice)
				mustSend(t, f.svc, alice, bob)
			},
			requester:  alice,
			requested:  bob,
			wantErr:    friend.ErrAlreadyFriends,
			wantEvents: []friend.EventType{friend.EventRequestSent, friend.EventRequestAccepted},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, 0)
			if tc.setup != nil {
				tc.setup(t, f)
			}

			res, err := f.svc.SendRequest(context.Background(), tc.requester, tc.requested)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("svc.SendRequest() = %v, want: %v", err, tc.wantErr)
			}

			if tc.wantErr == nil && res.Status != tc.wantStatus {
				t.Errorf("res.Status = %q, want: %q", res.Status, tc.wantStatus)
			}

			if diff := cmp.Diff(tc.wantEvents, f.events.types()); diff != "" {
				t.Errorf("published events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestService_CrossingRequestLeavesNoRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	mustSend(t, f.svc, bob, alice)
	res := mustSend(t, f.svc, alice, bob)

	if res.Friendship == nil || res.Friendship.PlayerA != bob || res.Friendship.PlayerB != alice {
		t.Errorf("res.Friendship = %+v, want: bob and alice", res.Friendship)
	}

	for _, p := range []uuid.UUID{alice, bob} {
		requests, err := f.svc.ListRequests(ctx, p)
		if err != nil {
			t.Fatal(err)
		}
		if n := len(requests.Incoming) + len(requests.Outgoing); n != 0 {
			t.Errorf("svc.ListRequests(%s) returned %d requests, want: 0", p, n)
		}
	}
}

func TestService_AcceptRequest(t *testing.T) {
	t.Parallel()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name       string
		maxFriends int
		setup      func(t *testing.T, f *fixture)
		player     uuid.UUID
		requester  uuid.UUID
		wantErr    error
	}{
		{
			name: "Incoming request",
			setup: func(t *testing.T, f *fixture) {
				t.Helper()
				mustSend(t, f.svc, bob, alice)
			},
			player:    alice,
			requester: bob,
		},
		{
			name: "Own outgoing request",
			setup: func(t *testing.T, f *fixture) {
				t.Helper()
				mustSend(t, f.svc, alice, bob)
			},
			player:    alice,
			requester: bob,
			wantErr:   friend.ErrRequestNotFound,
		},
		{
			name:      "No request",
			player:    alice,
			requester: bob,
			wantErr:   friend.ErrRequestNotFound,
		},
		{
			name:      "Self",
			player:    alice,
			requester: alice,
			wantErr:   friend.ErrSelf,
		},
		{
			name:       "Friend limit reached",
			maxFriends: 1,
			setup: func(t *testing.T, f *fixture) {
				t.Helper()
				mustSend(t, f.svc, carol, alice)
				mustSend(t, f.svc, alice, carol)
				mustSend(t, f.svc, bob, alice)
			},
			player:    alice,
			requester: bob,
			wantErr:   friend.ErrFriendLimit,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tc.maxFriends)
			if tc.setup != nil {
				tc.setup(t, f)
			}

			got, err := f.svc.AcceptRequest(context.Background(), tc.player, tc.requester)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("svc.AcceptRequest() = %v, want: %v", err, tc.wantErr)
			}

			if tc.wantErr != nil {
				return
			}

			if got.PlayerA != tc.requester || got.PlayerB != tc.player {
				t.Errorf("svc.AcceptRequest() = %+v, want requester as PlayerA", got)
			}

			friends, err := f.svc.AreFriends(context.Background(), tc.player, tc.requester)
			if err != nil || !friends {
				t.Errorf("svc.AreFriends() = %v, %v, want: true, nil", friends, err)
			}
		})
	}
}

func TestService_FriendLimitKeepsRequestPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1)
	ctx := context.Background()
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	mustSend(t, f.svc, carol, alice)
	mustSend(t, f.svc, alice, carol)
	mustSend(t, f.svc, bob, alice)

	if _, err := f.svc.SendRequest(ctx, alice, bob); !errors.Is(err, friend.ErrFriendLimit) {
		t.Fatalf("svc.SendRequest() = %v, want: %v", err, friend.ErrFriendLimit)
	}

	requests, err := f.svc.ListRequests(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(requests.Incoming) != 1 || requests.Incoming[0].Requester != bob {
		t.Errorf("requests.Incoming = %+v, want the request from bob", requests.Incoming)
	}
}

func TestService_RemoveRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	mustSend(t, f.svc, alice, bob)

	// the receiver declines
	if err := f.svc.RemoveRequest(ctx, bob, alice); err != nil {
		t.Fatalf("svc.RemoveRequest(bob, alice) = %v", err)
	}

	if err := f.svc.RemoveRequest(ctx, alice, bob); !errors.Is(err, friend.ErrRequestNotFound) {
		t.Errorf("svc.RemoveRequest(alice, bob) = %v, want: %v", err, friend.ErrRequestNotFound)
	}

	want := []friend.EventType{friend.EventRequestSent, friend.EventRequestRemoved}
	if diff := cmp.Diff(want, f.events.types()); diff != "" {
		t.Errorf("published events mismatch (-want +got):\n%s", diff)
	}
}

func TestService_RemoveFriend(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	mustSend(t, f.svc, alice, bob)
	if _, err := f.svc.AcceptRequest(ctx, bob, alice); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.RemoveFriend(ctx, bob, alice); err != nil {
		t.Fatalf("svc.RemoveFriend(bob, alice) = %v", err)
	}

	if err := f.svc.RemoveFriend(ctx, alice, bob); !errors.Is(err, friend.ErrNotFriends) {
		t.Errorf("svc.RemoveFriend(alice, bob) = %v, want: %v", err, friend.ErrNotFriends)
	}

	friends, err := f.svc.AreFriends(ctx, alice, bob)
	if err != nil || friends {
		t.Errorf("svc.AreFriends() = %v, %v, want: false, nil", friends, err)
	}
}

func TestService_ListFriends(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	ctx := context.Background()
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	mustSend(t, f.svc, bob, alice)
	mustSend(t, f.svc, alice, bob)
	mustSend(t, f.svc, alice, carol)
	if _, err := f.svc.AcceptRequest(ctx, carol, alice); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.ListFriends(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}

	gotIDs := make([]uuid.UUID, 0, len(got))
	for _, fr := range got {
		gotIDs = append(gotIDs, fr.PlayerID)
	}
	if diff := cmp.Diff([]uuid.UUID{bob, carol}, gotIDs); diff != "" {
		t.Errorf("svc.ListFriends(alice) mismatch (-want +got):\n%s", diff)
	}

	if _, ok := f.cache.Get(alice); !ok {
		t.Error("friend list of alice was not cached")
	}

	if err := f.svc.RemoveFriend(ctx, carol, alice); err != nil {
		t.Fatal(err)
	}

	if _, ok := f.cache.Get(alice); ok {
		t.Error("friend list of alice is still cached after a removal")
	}

	got, err = f.svc.ListFriends(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PlayerID != bob {
		t.Errorf("svc.ListFriends(alice) = %+v, want: [bob]", got)
	}
}

func TestService_ListFriendsServedFromCache(t *testing.T) {
	t.Parallel()

	s := newMemoryStorage(t)
	calls := 0
	repo := &friend.StubRepository{
		Repository: s.repo,
		ListFriendshipsFunc: func(_ context.Context, _ uuid.UUID) ([]friend.Friendship, error) {
			calls++
			return nil, nil
		},
	}

	svc := friend.NewService(&friend.Provider{
		Repo:  repo,
		TxMgr: s.txMgr,
		Cache: cache.New[uuid.UUID, []friend.Friend](10, time.Minute),
	})

	player := uuid.New()
	for range 3 {
		if _, err := svc.ListFriends(context.Background(), player); err != nil {
			t.Fatal(err)
		}
	}

	if calls != 1 {
		t.Errorf("repo.ListFriendships called %d times, want: 1", calls)
	}
}

func TestService_ListFriendsSkipsCacheAfterConcurrentWrite(t *testing.T) {
	t.Parallel()

	s := newMemoryStorage(t)
	alice, bob := uuid.New(), uuid.New()

	var svc *friend.Service
	calls := 0
	repo := &friend.StubRepository{
		Repository: s.repo,
		ListFriendshipsFunc: func(ctx context.Context, player uuid.UUID) ([]friend.Friendship, error) {
			calls++
			stale, err := s.repo.ListFriendships(ctx, player)
			if calls == 1 {
				mustSend(t, svc, bob, alice)
				mustSend(t, svc, alice, bob)
			}
			return stale, err
		},
	}

	svc = friend.NewService(&friend.Provider{
		Repo:  repo,
		TxMgr: s.txMgr,
		Cache: cache.New[uuid.UUID, []friend.Friend](10, 0),
	})

	ctx := context.Background()
	if _, err := svc.ListFriends(ctx, alice); err != nil {
		t.Fatal(err)
	}

	friends, err := svc.ListFriends(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}

	if calls != 2 {
		t.Errorf("repo.ListFriendships called %d times, want: 2", calls)
	}
	if len(friends) != 1 || friends[0].PlayerID != bob {
		t.Errorf("svc.ListFriends() = %+v, want bob as the only friend", friends)
	}
}

func TestService_SendRequestRetriesConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		conflicts int
		wantErr   error
		wantCalls int
	}{
		{"Retry succeeds", 1, nil, 2},
		{"Retry conflicts again", 2, friend.ErrConflict, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newMemoryStorage(t)
			attempts := 0
			repo := &friend.StubRepository{
				Repository: s.repo,
				CreateRequestFunc: func(ctx context.Context, req friend.Request) error {
					attempts++
					if attempts <= tc.conflicts {
						return friend.ErrConflict
					}
					return s.repo.CreateRequest(ctx, req)
				},
			}

			txMgr := &db.StubTxManager{RunInTxFunc: s.txMgr.RunInTx}
			svc := friend.NewService(&friend.Provider{Repo: repo, TxMgr: txMgr})

			_, err := svc.SendRequest(context.Background(), uuid.New(), uuid.New())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("svc.SendRequest() = %v, want: %v", err, tc.wantErr)
			}

			if txMgr.Calls != tc.wantCalls {
				t.Errorf("txMgr.Calls = %d, want: %d", txMgr.Calls, tc.wantCalls)
			}
		})
	}
}

func mustSend(t *testing.T, svc *friend.Service, requester, requested uuid.UUID) *friend.SendResult {
	t.Helper()

	res, err := svc.SendRequest(context.Background(), requester, requested)
	if err != nil {
		t.Fatalf("svc.SendRequest(%s, %s) = %v", requester, requested, err)
	}
	return res
}
