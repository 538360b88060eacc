package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	server "github.com/yungbote/collections-backend/internal/http"
	"github.com/yungbote/collections-backend/internal/observability"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Handlers Handlers
	Server   *server.Server
	Router   *gin.Engine

	otelShutdown func(context.Context) error
	started      bool
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

// NewWithConfig wires every component from cfg without starting anything.
func NewWithConfig(log *logger.Logger, cfg Config) (*App, error) {
	log.Info("Configuration loaded", cfg.LogFields()...)
	if cfg.LogMode != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfigFromEnv(cfg.ServiceName, cfg.Environment))

	clients, err := wireClients(log, cfg)
	if err != nil {
		return nil, err
	}
	reposet := wireRepos(clients.DB.DB(), log)
	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		clients.Close()
		return nil, err
	}
	handlerset := wireHandlers(log, cfg, clients, serviceset)
	srv := wireServer(log, cfg, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Handlers:     handlerset,
		Server:       srv,
		Router:       srv.Engine,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background workers.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.started {
		return
	}
	a.started = true
	a.Services.JobWorker.Start(ctx)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully:
// the listener stops, live channels close, and accepted jobs drain within
// the configured timeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Start(ctx)
	addr := net.JoinHostPort("", a.Cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("Server listening", "addr", addr)
		return a.Server.Run(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		a.Services.Gateway.Shutdown()
		if err := a.Services.JobWorker.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("worker drain: %w", err))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.JobWorker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		_ = a.Services.JobWorker.Stop(ctx)
		cancel()
	}
	if a.Services.Bus != nil {
		_ = a.Services.Bus.Close()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
