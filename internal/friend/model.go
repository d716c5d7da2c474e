package friend

import (
	"time"

	"github.com/google/uuid"
)

// Request is a pending friend request from Requester to Requested.
type Request struct {
	Requester uuid.UUID
	Requested uuid.UUID
	CreatedAt time.Time
}

// Involves reports whether p is either side of the request.
func (r Request) Involves(p uuid.UUID) bool {
	return r.Requester == p || r.Requested == p
}

// Friendship links two players. PlayerA is the player who sent the accepted request.
type Friendship struct {
	PlayerA   uuid.UUID
	PlayerB   uuid.UUID
	CreatedAt time.Time
}

func (f Friendship) Involves(p uuid.UUID) bool {
	return f.PlayerA == p || f.PlayerB == p
}

// Other returns the partner of p, or uuid.Nil when p is not part of the friendship.
func (f Friendship) Other(p uuid.UUID) uuid.UUID {
	switch p {
	case f.PlayerA:
		return f.PlayerB
	case f.PlayerB:
		return f.PlayerA
	default:
		return uuid.Nil
	}
}

// Friend is one entry of a player's friend list.
type Friend struct {
	PlayerID uuid.UUID
	Since    time.Time
}

// Requests holds the pending requests of one player.
type Requests struct {
	Incoming []Request
	Outgoing []Request
}

type Status string

const (
	StatusRequested Status = "requested"
	StatusAccepted  Status = "accepted"
)

// SendResult tells whether SendRequest stored a new request or completed a friendship.
// Exactly one of Request and Friendship is set.
type SendResult struct {
	Status     Status
	Request    *Request
	Friendship *Friendship
}

// PairKey identifies the unordered pair {a, b}: the two UUID strings in
// ascending order joined by a hyphen.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + "-" + bs
}
