package friend

import (
	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/platform/db"
)

type Provider struct {
	Cfg       *config.Config
	Repo      Repository
	TxMgr     db.TxManager
	Cache     Cache
	Publisher Publisher
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
		svc:     svc,
		handler: handler,
	}
}
