package jwt

import (
	"errors"
	"time"
)

var errNotStubbed = errors.New("jwt: method not stubbed")

type StubSigner struct {
	SignFunc   func(subject string, audience []string, duration time.Duration) (string, error)
	VerifyFunc func(token string) (*Claims, error)
}

var _ Signer = (*StubSigner)(nil)

func (s *StubSigner) Sign(subject string, audience []string, duration time.Duration) (string, error) {
	if s.SignFunc == nil {
		return "", errNotStubbed
	}
	return s.SignFunc(subject, audience, duration)
}

func (s *StubSigner) Verify(token string) (*Claims, error) {
	if s.VerifyFunc == nil {
		return nil, errNotStubbed
	}
	return s.VerifyFunc(token)
}
