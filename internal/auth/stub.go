package auth

import (
	"context"
	"errors"
)

type StubService struct {
	IssueTokenFunc func(ctx context.Context, params IssueTokenParams) (*Token, error)
}

var _ TokenIssuer = (*StubService)(nil)

func (s *StubService) IssueToken(ctx context.Context, params IssueTokenParams) (*Token, error) {
	if s.IssueTokenFunc == nil {
		return nil, errors.New("IssueToken not implemented by stub")
	}
	return s.IssueTokenFunc(ctx, params)
}
