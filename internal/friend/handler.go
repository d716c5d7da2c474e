package friend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/auth"
	errx "github.com/ferdiebergado/friendsystem/internal/pkg/error"
	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
	"github.com/google/uuid"
)

const pathID = "id"

type FriendService interface {
	SendRequest(ctx context.Context, requester, requested uuid.UUID) (*SendResult, error)
	AcceptRequest(ctx context.Context, player, requester uuid.UUID) (*Friendship, error)
	RemoveRequest(ctx context.Context, player, other uuid.UUID) error
	RemoveFriend(ctx context.Context, player, other uuid.UUID) error
	ListFriends(ctx context.Context, player uuid.UUID) ([]Friend, error)
	ListRequests(ctx context.Context, player uuid.UUID) (*Requests, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

var _ FriendService = (*Service)(nil)

type Handler struct {
	svc FriendService
}

func NewHandler(svc FriendService) *Handler {
	return &Handler{svc: svc}
}

type FriendData struct {
	PlayerID string    `json:"player_id"`
	Since    time.Time `json:"since"`
}

type ListFriendsResponse struct {
	Friends []FriendData `json:"friends"`
}

type AreFriendsResponse struct {
	Friends bool `json:"friends"`
}

type RequestData struct {
	Requester string    `json:"requester"`
	Requested string    `json:"requested"`
	CreatedAt time.Time `json:"created_at"`
}

type ListRequestsResponse struct {
	Incoming []RequestData `json:"incoming"`
	Outgoing []RequestData `json:"outgoing"`
}

type FriendshipData struct {
	PlayerA   string    `json:"player_a"`
	PlayerB   string    `json:"player_b"`
	CreatedAt time.Time `json:"created_at"`
}

type SendRequestRequest struct {
	PlayerID string `json:"player_id" validate:"required,uuid"`
}

type SendRequestResponse struct {
	Status     Status          `json:"status"`
	Request    *RequestData    `json:"request,omitempty"`
	Friendship *FriendshipData `json:"friendship,omitempty"`
}

// ListFriends handles GET /friends.
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	player, ok := playerOrFail(w, r)
	if !ok {
		return
	}

	friends, err := h.svc.ListFriends(r.Context(), player)
	if err != nil {
		respondError(w, err)
		return
	}

	data := &ListFriendsResponse{Friends: make([]FriendData, 0, len(friends))}
	for _, f := range friends {
		data.Friends = append(data.Friends, FriendData{PlayerID: f.PlayerID.String(), Since: f.Since})
	}
	web.RespondOK(w, nil, data)
}

// AreFriends handles GET /friends/{id}.
func (h *Handler) AreFriends(w http.ResponseWriter, r *http.Request) {
	player, other, ok := pairOrFail(w, r)
	if !ok {
		return
	}

	friends, err := h.svc.AreFriends(r.Context(), player, other)
	if err != nil {
		respondError(w, err)
		return
	}

	web.RespondOK(w, nil, &AreFriendsResponse{Friends: friends})
}

// RemoveFriend handles DELETE /friends/{id}.
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	player, other, ok := pairOrFail(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveFriend(r.Context(), player, other); err != nil {
		respondError(w, err)
		return
	}

	msg := MsgFriendRemoved
	web.RespondOK[struct{}](w, &msg, nil)
}

// ListRequests handles GET /requests.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	player, ok := playerOrFail(w, r)
	if !ok {
		return
	}

	requests, err := h.svc.ListRequests(r.Context(), player)
	if err != nil {
		respondError(w, err)
		return
	}

	data := &ListRequestsResponse{
		Incoming: transformRequests(requests.Incoming),
		Outgoing: transformRequests(requests.Outgoing),
	}
	web.RespondOK(w, nil, data)
}

// SendRequest handles POST /requests. A new request answers 201 and a
// crossing request that became a friendship answers 200.
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	player, ok := playerOrFail(w, r)
	if !ok {
		return
	}

	req, err := web.ParamsFromContext[SendRequestRequest](r.Context())
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidInput, nil)
		return
	}

	requested, err := uuid.Parse(req.PlayerID)
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidPlayerID, nil)
		return
	}

	res, err := h.svc.SendRequest(r.Context(), player, requested)
	if err != nil {
		respondError(w, err)
		return
	}

	data := &SendRequestResponse{Status: res.Status}
	if res.Request != nil {
		reqData := transformRequest(*res.Request)
		data.Request = &reqData
	}
	if res.Friendship != nil {
		data.Friendship = transformFriendship(*res.Friendship)
	}

	if res.Status == StatusAccepted {
		msg := MsgRequestAccepted
		web.RespondOK(w, &msg, data)
		return
	}

	msg := MsgRequestSent
	web.RespondCreated(w, &msg, data)
}

// AcceptRequest handles POST /requests/{id}/accept.
func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	player, requester, ok := pairOrFail(w, r)
	if !ok {
		return
	}

	f, err := h.svc.AcceptRequest(r.Context(), player, requester)
	if err != nil {
		respondError(w, err)
		return
	}

	msg := MsgRequestAccepted
	web.RespondOK(w, &msg, transformFriendship(*f))
}

// RemoveRequest handles DELETE /requests/{id}.
func (h *Handler) RemoveRequest(w http.ResponseWriter, r *http.Request) {
	player, other, ok := pairOrFail(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveRequest(r.Context(), player, other); err != nil {
		respondError(w, err)
		return
	}

	msg := MsgRequestRemoved
	web.RespondOK[struct{}](w, &msg, nil)
}

func playerOrFail(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	player, err := auth.PlayerFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return uuid.Nil, false
	}
	return player, true
}

func pairOrFail(w http.ResponseWriter, r *http.Request) (player, other uuid.UUID, ok bool) {
	player, ok = playerOrFail(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	other, err := web.PathUUID(r, pathID)
	if err != nil {
		web.RespondBadRequest(w, err, message.InvalidPlayerID, nil)
		return uuid.Nil, uuid.Nil, false
	}
	return player, other, true
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSelf):
		web.RespondBadRequest(w, err, MsgSelf, nil)
	case errors.Is(err, ErrAlreadyFriends):
		web.RespondConflict(w, err, MsgAlreadyFriends, nil)
	case errors.Is(err, ErrRequestExists):
		web.RespondConflict(w, err, MsgRequestExists, nil)
	case errors.Is(err, ErrFriendLimit):
		web.RespondConflict(w, err, MsgFriendLimit, nil)
	case errors.Is(err, ErrConflict):
		web.RespondConflict(w, err, MsgConflict, nil)
	case errors.Is(err, ErrRequestNotFound):
		web.RespondNotFound(w, err, MsgRequestNotFound, nil)
	case errors.Is(err, ErrNotFriends):
		web.RespondNotFound(w, err, MsgNotFriends, nil)
	case errx.IsContextError(err):
		web.RespondRequestTimeout(w, err, message.RequestGone, nil)
	default:
		web.RespondInternalServerError(w, err)
	}
}

func transformRequest(req Request) RequestData {
	return RequestData{
		Requester: req.Requester.String(),
		Requested: req.Requested.String(),
		CreatedAt: req.CreatedAt,
	}
}

func transformRequests(requests []Request) []RequestData {
	data := make([]RequestData, 0, len(requests))
	for _, req := range requests {
		data = append(data, transformRequest(req))
	}
	return data
}

func transformFriendship(f Friendship) *FriendshipData {
	return &FriendshipData{
		PlayerA:   f.PlayerA.String(),
		PlayerB:   f.PlayerB.String(),
		CreatedAt: f.CreatedAt,
	}
}
