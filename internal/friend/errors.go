package friend

import "errors"

var (
	ErrSelf            = errors.New("friend: a player cannot befriend themselves")
	ErrAlreadyFriends  = errors.New("friend: players are already friends")
	ErrRequestExists   = errors.New("friend: request already sent")
	ErrRequestNotFound = errors.New("friend: request not found")
	ErrNotFriends      = errors.New("friend: players are not friends")
	ErrFriendLimit     = errors.New("friend: friend limit reached")

	// ErrConflict means a concurrent writer stored the same pair first.
	// The operation can be retried.
	ErrConflict = errors.New("friend: concurrent modification")
)
