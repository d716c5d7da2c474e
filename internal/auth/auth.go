package auth

import (
	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/platform/hash"
	"github.com/ferdiebergado/friendsystem/internal/platform/jwt"
)

type Provider struct {
	Cfg    *config.Config
	Hasher hash.Hasher
	Signer jwt.Signer
}

type Module struct {
	svc     *Service
	handler *Handler
}

func (m *Module) Handler() *Handler {
	return m.handler
}

func (m *Module) Service() *Service {
	return m.svc
}

func NewModule(provider *Provider) *Module {
	svc := NewService(provider)
	handler := NewHandler(svc)
	return &Module{
		handler: handler,
		svc:     svc,
	}
}
