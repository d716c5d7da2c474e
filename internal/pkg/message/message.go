package message

const (
	InvalidUser     = "Invalid or expired token."
	InvalidClient   = "Invalid client credentials."
	InvalidInput    = "Invalid input."
	InvalidPlayerID = "Invalid player id."
	UnknownField    = "Unknown field in payload."
	ServerError     = "An error occurred."
	RequestGone     = "Request cancelled or timed out."
	EnvErrFmt       = "environment variable is not set: %s"
)
