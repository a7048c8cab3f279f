package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const EnvDevelopment = "development"

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	LogFile   string `env:"LOG_FILE"`

	// DevStorageFallback turns on fabricated responses when storage fails.
	// Honoured only when Env is development.
	DevStorageFallback bool `env:"DEV_STORAGE_FALLBACK, default=false"`

	Auth     AuthConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Mongo    MongoConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL,    default=24h"`
	SessionCookie string        `env:"SESSION_COOKIE, default=session-token"`
	Username      string        `env:"AUTH_USERNAME,  default=admin"`
	Password      string        `env:"AUTH_PASSWORD,  default=password123"`
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"POSTGRES_HOST,      default=localhost"`
	Port     int    `env:"POSTGRES_PORT,      default=5432"`
	Database string `env:"POSTGRES_DB,        default=authpractice"`
	User     string `env:"POSTGRES_USER,      default=postgres"`
	Password string `env:"POSTGRES_PASSWORD,  default=postgres123"`
	SSLMode  string `env:"POSTGRES_SSLMODE,   default=disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS, default=10"`
}

// RedisConfig: an empty Addr disables the list cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,  default=0"`
	TTL      time.Duration `env:"CACHE_TTL, default=1m"`
}

// MongoConfig: an empty URI disables the audit trail.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=todo_service"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// DevFallbackEnabled reports whether storage failures should be masked.
func (c *Config) DevFallbackEnabled() bool {
	return c.IsDevelopment() && c.DevStorageFallback
}

// Validate enforces the settings production cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Auth.SessionCookie == "" {
		errs = append(errs, errors.New("SESSION_COOKIE must not be empty"))
	}
	if c.Postgres.MaxConns <= 0 {
		errs = append(errs, errors.New("POSTGRES_MAX_CONNS must be positive"))
	}
	if !c.IsDevelopment() {
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
		if c.DevStorageFallback {
			errs = append(errs, errors.New("DEV_STORAGE_FALLBACK is only allowed in development"))
		}
	}
	return errors.Join(errs...)
}

// DSN returns DATABASE_URL when set, otherwise a URL assembled from the
// POSTGRES_* parts.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}
