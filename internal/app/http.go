package app

import (
	"context"
	"log/slog"
	"net/http"

	"google-auth-service/internal/auth/handler"
	"google-auth-service/internal/auth/provider/google"
	"google-auth-service/internal/config"
	"google-auth-service/internal/middleware"
	"google-auth-service/internal/session"
	"google-auth-service/internal/user"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config, log *slog.Logger, users user.Store) (*gin.Engine, error) {
	providerCfg := google.Config{
		ClientID:    cfg.GoogleClientID,
		Issuer:      cfg.GoogleIssuer,
		UserInfoURL: cfg.GoogleUserInfoURL,
		CertsURL:    cfg.GoogleCertsURL,
		Timeout:     cfg.GoogleProviderTimeout,
	}

	// refreshed in the background until ctx is done
	keys, err := google.NewJWKSKeySource(ctx, cfg.GoogleCertsURL)
	if err != nil {
		return nil, err
	}

	idTokens, err := google.NewIDTokenVerifier(providerCfg, keys)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	authHandler, err := handler.NewHandler(handler.Config{
		AccessTokens:    google.NewAccessTokenVerifier(providerCfg),
		IDTokens:        idTokens,
		Users:           user.NewService(users),
		Sessions:        sessions,
		Logger:          log,
		ProviderTimeout: cfg.GoogleProviderTimeout,
		StoreTimeout:    cfg.UserStoreTimeout,
	})
	if err != nil {
		return nil, err
	}

	authMiddleware := middleware.NewAuthMiddleware(sessions)

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(middleware.ContextUserIDKey),
		})
	})

	for _, route := range router.Routes() {
		log.Debug("route registered", slog.String("method", route.Method), slog.String("path", route.Path))
	}

	return router, nil
}
