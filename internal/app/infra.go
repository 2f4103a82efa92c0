package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google-auth-service/internal/config"
	"google-auth-service/internal/db"
	"google-auth-service/internal/redis"
	"google-auth-service/internal/user"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Infra holds the backing services selected by configuration.
type Infra struct {
	Users user.Store

	closers []func(context.Context) error
}

func (i *Infra) Close(ctx context.Context) error {
	var errs []error
	for j := len(i.closers) - 1; j >= 0; j-- {
		errs = append(errs, i.closers[j](ctx))
	}
	return errors.Join(errs...)
}

func setupInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*Infra, error) {
	infra := &Infra{}

	switch cfg.UserStore {
	case config.StoreMemory:
		infra.Users = user.NewMemoryStore()
		log.Warn("using in-memory user store; users are lost on restart")

	case config.StorePostgres:
		pg, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		infra.closers = append(infra.closers, func(context.Context) error { return pg.Close() })
		infra.Users = user.NewPostgresStore(pg)
		log.Info("database ready")

	case config.StoreMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURL))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		infra.closers = append(infra.closers, client.Disconnect)

		store, err := user.NewMongoStore(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			_ = infra.Close(context.Background())
			return nil, err
		}
		infra.Users = store
		log.Info("mongo ready", slog.String("database", cfg.MongoDatabase))

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		infra.closers = append(infra.closers, func(context.Context) error { return client.Close() })
		infra.Users = user.NewRedisStore(client.Client)
		log.Info("redis ready", slog.String("addr", cfg.RedisAddr))

	default:
		return nil, fmt.Errorf("unknown user store %q", cfg.UserStore)
	}

	return infra, nil
}
