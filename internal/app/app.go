package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"google-auth-service/internal/config"
	"google-auth-service/internal/logger"
)

type App struct {
	httpServer *http.Server
	infra      *Infra
	log        *slog.Logger
}

// New connects the configured user store and builds the HTTP server.
// ctx bounds start-up and the lifetime of background key refresh.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}

	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	router, err := setupHTTP(ctx, cfg, log, infra.Users)
	if err != nil {
		_ = infra.Close(context.Background())
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		httpServer: server,
		infra:      infra,
		log:        log,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return a.infra.Close(ctx)
}
