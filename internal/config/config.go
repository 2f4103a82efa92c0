package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreRedis    = "redis"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	GoogleClientID        string        `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleIssuer          string        `env:"GOOGLE_ISSUER" envDefault:"https://accounts.google.com"`
	GoogleUserInfoURL     string        `env:"GOOGLE_USERINFO_URL" envDefault:"https://www.googleapis.com/oauth2/v3/userinfo"`
	GoogleCertsURL        string        `env:"GOOGLE_CERTS_URL" envDefault:"https://www.googleapis.com/oauth2/v3/certs"`
	GoogleProviderTimeout time.Duration `env:"GOOGLE_PROVIDER_TIMEOUT" envDefault:"10s"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	UserStore        string        `env:"USER_STORE" envDefault:"memory"`
	UserStoreTimeout time.Duration `env:"USER_STORE_TIMEOUT" envDefault:"5s"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	MongoURL      string `env:"MONGODB_URL"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"auth"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load reads the configuration from the environment, after an optional
// .env file in the working directory. It is called once at start-up.
func Load() (Config, error) {
	// the .env file is optional
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Production reports whether AppEnv names a production environment.
func (c Config) Production() bool {
	switch strings.ToLower(c.AppEnv) {
	case "production", "prod":
		return true
	}
	return false
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.GoogleProviderTimeout <= 0 {
		errs = append(errs, errors.New("GOOGLE_PROVIDER_TIMEOUT must be positive"))
	}
	if c.UserStoreTimeout <= 0 {
		errs = append(errs, errors.New("USER_STORE_TIMEOUT must be positive"))
	}

	switch c.UserStore {
	case StoreMemory:
		if c.Production() {
			errs = append(errs, errors.New("USER_STORE=memory is not allowed in production"))
		}
	case StorePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for the postgres user store"))
		}
	case StoreMongo:
		if c.MongoURL == "" {
			errs = append(errs, errors.New("MONGODB_URL is required for the mongo user store"))
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis user store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown USER_STORE %q", c.UserStore))
	}

	return errors.Join(errs...)
}
