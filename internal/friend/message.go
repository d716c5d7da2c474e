package friend

const (
	MsgRequestSent     = "Friend request sent."
	MsgRequestAccepted = "Friend request accepted."
	MsgRequestRemoved  = "Friend request removed."
	MsgFriendRemoved   = "Friend removed."

	MsgSelf            = "You cannot befriend yourself."
	MsgAlreadyFriends  = "You are already friends."
	MsgRequestExists   = "Friend request already sent."
	MsgRequestNotFound = "Friend request not found."
	MsgNotFriends      = "You are not friends."
	MsgFriendLimit     = "Friend limit reached."
	MsgConflict        = "Please try again."
)
