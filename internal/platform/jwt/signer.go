package jwt

import "time"

// Claims is what a verified access token says about its bearer.
type Claims struct {
	PlayerID  string
	ExpiresAt time.Time
}

// Signer issues and checks the access tokens handed to the proxy.
type Signer interface {
	// Sign returns a token for subject that is valid for duration.
	Sign(subject string, audience []string, duration time.Duration) (token string, err error)
	Verify(token string) (*Claims, error)
}
