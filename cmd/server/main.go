package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google-auth-service/internal/app"
	"google-auth-service/internal/config"
	"google-auth-service/internal/logger"
)

const serviceName = "google-auth-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(os.Getenv("APP_ENV"), serviceName, os.Stdout)
		log.Error("invalid configuration", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(cfg.AppEnv, serviceName, os.Stdout)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", logger.Error(err))
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- application.Run()
	}()

	log.Info("auth service started", "port", cfg.AppPort, "user_store", cfg.UserStore)

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("http server failed", logger.Error(err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info("auth service stopped cleanly")
}
