package friend_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferdiebergado/friendsystem/internal/auth"
	"github.com/ferdiebergado/friendsystem/internal/friend"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

var (
	testPlayer = uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	testOther  = uuid.MustParse("853c80ef-3c37-49fd-aa49-938b674adae6")
)

func newHandlerRequest(method, target, pathID string, params any) *http.Request {
	ctx := auth.ContextWithPlayer(context.Background(), testPlayer)
	if params != nil {
		ctx = web.NewContextWithParams(ctx, params)
	}

	req := httptest.NewRequestWithContext(ctx, method, target, http.NoBody)
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	return req
}

func TestHandler_SendRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		params     any
		sendFunc   func(ctx context.Context, requester, requested uuid.UUID) (*friend.SendResult, error)
		code       int
		wantStatus friend.Status
	}{
		{
			name:   "Request sent",
			params: friend.SendRequestRequest{PlayerID: testOther.String()},
			sendFunc: func(_ context.Context, requester, requested uuid.UUID) (*friend.SendResult, error) {
				req := friend.Request{Requester: requester, Requested: requested, CreatedAt: t0}
				return &friend.SendResult{Status: friend.StatusRequested, Request: &req}, nil
			},
			code:       http.StatusCreated,
			wantStatus: friend.StatusRequested,
		},
		{
			name:   "Crossing request accepted",
			params: friend.SendRequestRequest{PlayerID: testOther.String()},
			sendFunc: func(_ context.Context, requester, requested uuid.UUID) (*friend.SendResult, error) {
				f := friend.Friendship{PlayerA: requested, PlayerB: requester, CreatedAt: t0}
				return &friend.SendResult{Status: friend.StatusAccepted, Friendship: &f}, nil
			},
			code:       http.StatusOK,
			wantStatus: friend.StatusAccepted,
		},
		{
			name:   "Already friends",
			params: friend.SendRequestRequest{PlayerID: testOther.String()},
			sendFunc: func(_ context.Context, _, _ uuid.UUID) (*friend.SendResult, error) {
				return nil, fmt.Errorf("send: %w", friend.ErrAlreadyFriends)
			},
			code: http.StatusConflict,
		},
		{
			name:   "Friend limit",
			params: friend.SendRequestRequest{PlayerID: testOther.String()},
			sendFunc: func(_ context.Context, _, _ uuid.UUID) (*friend.SendResult, error) {
				return nil, friend.ErrFriendLimit
			},
			code: http.StatusConflict,
		},
		{
			name:   "Self",
			params: friend.SendRequestRequest{PlayerID: testPlayer.String()},
			sendFunc: func(_ context.Context, _, _ uuid.UUID) (*friend.SendResult, error) {
				return nil, friend.ErrSelf
			},
			code: http.StatusBadRequest,
		},
		{
			name:   "Malformed player id",
			params: friend.SendRequestRequest{PlayerID: "notch"},
			code:   http.StatusBadRequest,
		},
		{
			name:   "Proxy gave up",
			params: friend.SendRequestRequest{PlayerID: testOther.String()},
			sendFunc: func(_ context.Context, _, _ uuid.UUID) (*friend.SendResult, error) {
				return nil, fmt.Errorf("send: %w", context.Canceled)
			},
			code: http.StatusRequestTimeout,
		},
		{
			name:   "Storage failure",
			params: friend.SendRequestRequest{PlayerID: testOther.String()},
			sendFunc: func(_ context.Context, _, _ uuid.UUID) (*friend.SendResult, error) {
				return nil, friend.ErrQueryFailed
			},
			code: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := friend.NewHandler(&friend.StubService{SendRequestFunc: tc.sendFunc})

			req := newHandlerRequest(http.MethodPost, "/requests", "", tc.params)
			rec := httptest.NewRecorder()
			handler.SendRequest(rec, req)

			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tc.code {
				t.Errorf("res.StatusCode = %d, want: %d", res.StatusCode, tc.code)
			}

			web.AssertContentType(t, res)

			if tc.wantStatus != "" {
				body := web.DecodeJSONResponse[web.OKResponse[*friend.SendRequestResponse]](t, res)
				if body.Data.Status != tc.wantStatus {
					t.Errorf("body.Data.Status = %q, want: %q", body.Data.Status, tc.wantStatus)
				}
			}
		})
	}
}

func TestHandler_ListFriends(t *testing.T) {
	t.Parallel()

	svc := &friend.StubService{
		ListFriendsFunc: func(_ context.Context, player uuid.UUID) ([]friend.Friend, error) {
			if player != testPlayer {
				return nil, fmt.Errorf("unexpected player %s", player)
			}
			return []friend.Friend{{PlayerID: testOther, Since: t0}}, nil
		},
	}
	handler := friend.NewHandler(svc)

	req := newHandlerRequest(http.MethodGet, "/friends", "", nil)
	rec := httptest.NewRecorder()
	handler.ListFriends(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("res.StatusCode = %d, want: %d", res.StatusCode, http.StatusOK)
	}

	body := web.DecodeJSONResponse[web.OKResponse[*friend.ListFriendsResponse]](t, res)
	want := &friend.ListFriendsResponse{Friends: []friend.FriendData{{PlayerID: testOther.String(), Since: t0}}}
	if diff := cmp.Diff(want, body.Data); diff != "" {
		t.Errorf("body.Data mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_ListRequests(t *testing.T) {
	t.Parallel()

	incoming := friend.Request{Requester: testOther, Requested: testPlayer, CreatedAt: t0}
	svc := &friend.StubService{
		ListRequestsFunc: func(_ context.Context, _ uuid.UUID) (*friend.Requests, error) {
			return &friend.Requests{Incoming: []friend.Request{incoming}}, nil
		},
	}
	handler := friend.NewHandler(svc)

	req := newHandlerRequest(http.MethodGet, "/requests", "", nil)
	rec := httptest.NewRecorder()
	handler.ListRequests(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	body := web.DecodeJSONResponse[web.OKResponse[*friend.ListRequestsResponse]](t, res)
	want := &friend.ListRequestsResponse{
		Incoming: []friend.RequestData{{Requester: testOther.String(), Requested: testPlayer.String(), CreatedAt: t0}},
		Outgoing: []friend.RequestData{},
	}
	if diff := cmp.Diff(want, body.Data); diff != "" {
		t.Errorf("body.Data mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_PathRoutes(t *testing.T) {
	t.Parallel()

	svc := &friend.StubService{
		AcceptRequestFunc: func(_ context.Context, player, requester uuid.UUID) (*friend.Friendship, error) {
			if requester != testOther {
				return nil, friend.ErrRequestNotFound
			}
			return &friend.Friendship{PlayerA: requester, PlayerB: player, CreatedAt: t0}, nil
		},
		RemoveRequestFunc: func(_ context.Context, _, other uuid.UUID) error {
			if other != testOther {
				return friend.ErrRequestNotFound
			}
			return nil
		},
		RemoveFriendFunc: func(_ context.Context, _, other uuid.UUID) error {
			if other != testOther {
				return friend.ErrNotFriends
			}
			return nil
		},
		AreFriendsFunc: func(_ context.Context, _, other uuid.UUID) (bool, error) {
			return other == testOther, nil
		},
	}
	handler := friend.NewHandler(svc)
	stranger := uuid.New().String()

	tests := []struct {
		name    string
		method  string
		target  string
		id      string
		handler http.HandlerFunc
		code    int
	}{
		{"Accept request", http.MethodPost, "/requests/x/accept", testOther.String(), handler.AcceptRequest, http.StatusOK},
		{"Accept missing request", http.MethodPost, "/requests/x/accept", stranger, handler.AcceptRequest, http.StatusNotFound},
		{"Remove request", http.MethodDelete, "/requests/x", testOther.String(), handler.RemoveRequest, http.StatusOK},
		{"Remove missing request", http.MethodDelete, "/requests/x", stranger, handler.RemoveRequest, http.StatusNotFound},
		{"Remove friend", http.MethodDelete, "/friends/x", testOther.String(), handler.RemoveFriend, http.StatusOK},
		{"Remove stranger", http.MethodDelete, "/friends/x", stranger, handler.RemoveFriend, http.StatusNotFound},
		{"Are friends", http.MethodGet, "/friends/x", testOther.String(), handler.AreFriends, http.StatusOK},
		{"Malformed id", http.MethodGet, "/friends/x", "notch", handler.AreFriends, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := newHandlerRequest(tc.method, tc.target, tc.id, nil)
			rec := httptest.NewRecorder()
			tc.handler(rec, req)

			if rec.Code != tc.code {
				t.Errorf("rec.Code = %d, want: %d", rec.Code, tc.code)
			}
		})
	}
}

func TestHandler_RequiresPlayer(t *testing.T) {
	t.Parallel()

	handler := friend.NewHandler(&friend.StubService{})

	req := httptest.NewRequest(http.MethodGet, "/friends", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ListFriends(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("rec.Code = %d, want: %d", rec.Code, http.StatusUnauthorized)
	}
}
