package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/ferdiebergado/friendsystem/internal/auth"
	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/friend"
	"github.com/ferdiebergado/friendsystem/internal/notify"
	"github.com/ferdiebergado/friendsystem/internal/platform/router"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	router   router.Router
	provider *Provider
	hub      *notify.Hub
}

// New wires the modules on top of provider and mounts every route.
func New(cfg *config.Config, provider *Provider, middlewares []router.Middleware) *App {
	a := &App{
		cfg:      cfg,
		router:   provider.Router,
		provider: provider,
	}

	for _, mw := range middlewares {
		a.router.Use(mw)
	}

	var publisher friend.Publisher = friend.NopPublisher
	if cfg.Notify.Enabled {
		a.hub = notify.NewHub(cfg.Notify)
		publisher = a.hub
	}

	a.setupRoutes(publisher)

	serverCfg := cfg.Server
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", serverCfg.Port),
		Handler:      a.router,
		ReadTimeout:  serverCfg.ReadTimeout.Duration,
		WriteTimeout: serverCfg.WriteTimeout.Duration,
		IdleTimeout:  serverCfg.IdleTimeout.Duration,
	}

	return a
}

func (a *App) setupRoutes(publisher friend.Publisher) {
	maxBodySize := a.cfg.Server.MaxBodyBytes
	requireToken := auth.RequireToken(a.provider.Signer)

	mountHealthRoutes(a.router, a.provider.Storage)

	authModule := auth.NewModule(&auth.Provider{
		Cfg:    a.cfg,
		Hasher: a.provider.Hasher,
		Signer: a.provider.Signer,
	})
	mountAuthRoutes(a.router, authModule.Handler(), a.provider.Validator, maxBodySize)

	friendModule := friend.NewModule(&friend.Provider{
		Cfg:       a.cfg,
		Repo:      a.provider.Storage.Repo,
		TxMgr:     a.provider.Storage.TxMgr,
		Cache:     a.provider.Cache,
		Publisher: publisher,
	})
	mountFriendRoutes(a.router, friendModule.Handler(), a.provider.Validator, requireToken, maxBodySize)

	if a.hub != nil {
		mountEventRoutes(a.router, a.hub, requireToken)
	}
}

// Handler returns the root handler with every route mounted.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run listens on the configured port and serves until ctx ends.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln and runs the notification hub until ctx
// ends, then shuts the server down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	// In-flight requests keep their context until Shutdown has drained them.
	serverCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()
	a.server.BaseContext = func(net.Listener) context.Context {
		return serverCtx
	}

	g.Go(func() error {
		slog.Info("Server listening...", "address", ln.Addr().String())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		slog.Info("Server has stopped.")
		return nil
	})

	if a.hub != nil {
		g.Go(func() error {
			return a.hub.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
