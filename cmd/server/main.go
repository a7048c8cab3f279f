// @title           Todo Service API
// @version         1.0
// @description     Authenticated todo list backed by PostgreSQL.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/authpractice/todo-service/internal/api"
	"github.com/authpractice/todo-service/internal/api/handler"
	"github.com/authpractice/todo-service/internal/core/ports"
	"github.com/authpractice/todo-service/internal/core/service"
	"github.com/authpractice/todo-service/internal/infrastructure/db/mongo"
	"github.com/authpractice/todo-service/internal/infrastructure/db/postgres"
	"github.com/authpractice/todo-service/internal/infrastructure/db/redis"
	"github.com/authpractice/todo-service/internal/infrastructure/http/handlers"
	"github.com/authpractice/todo-service/internal/pkg/config"
	"github.com/authpractice/todo-service/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	devJWTSecret    = "development-only-secret"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		File:    cfg.LogFile,
		Service: "todo-service",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := openPostgres(ctx, cfg, log)
	defer pool.Close()

	var repo ports.TodoRepository = postgres.NewTodoRepository(pool)
	readiness := []handlers.Dependency{{Name: "postgres", Check: handlers.PostgresCheck(pool)}}

	if rdb := openRedis(ctx, cfg, log); rdb != nil {
		defer rdb.Close()
		repo = redis.NewCachedRepository(repo, redis.NewTodoCache(rdb, cfg.Redis.TTL), log)
		readiness = append(readiness, handlers.Dependency{Name: "redis", Check: handlers.RedisCheck(rdb), Optional: true})
	}

	if cfg.DevFallbackEnabled() {
		log.Warn().Msg("DEV_STORAGE_FALLBACK enabled: storage failures will be answered with mock data")
		repo = service.NewFallbackRepository(repo, log)
	}

	var audit ports.AuditRepository
	if client, db := openMongo(ctx, cfg, log); db != nil {
		defer func() { _ = client.Disconnect(context.Background()) }()
		auditRepo := mongo.NewAuditRepository(db)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit index creation failed")
		}
		audit = auditRepo
		readiness = append(readiness, handlers.Dependency{Name: "mongodb", Check: handlers.MongoCheck(db), Optional: true})
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set; using the development secret")
		secret = devJWTSecret
	}
	gate, err := service.NewAuthGate(service.AuthGateConfig{
		Username:  cfg.Auth.Username,
		Password:  cfg.Auth.Password,
		JWTSecret: secret,
		TokenTTL:  cfg.Auth.SessionTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("auth gate")
	}

	e := api.NewRouter(api.Deps{
		Logger:    log,
		Todos:     service.NewTodoService(repo, audit, log),
		Gate:      gate,
		Cookie:    handler.CookieConfig{Name: cfg.Auth.SessionCookie, Secure: !cfg.IsDevelopment()},
		Readiness: readiness,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openPostgres builds the pool and applies the schema. An unreachable
// database is fatal in production; development keeps serving so requests
// report unavailability (or mock data when the fallback is on).
func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) *pgxpool.Pool {
	pool, err := postgres.Open(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres config")
	}

	if err := postgres.Ping(ctx, pool, 0); err != nil {
		if !cfg.IsDevelopment() {
			log.Fatal().Err(err).Msg("postgres unreachable")
		}
		log.Warn().Err(err).Msg("postgres unreachable; continuing in development mode")
		return pool
	}

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		if !cfg.IsDevelopment() {
			log.Fatal().Err(err).Msg("schema")
		}
		log.Error().Err(err).Msg("schema setup failed; continuing in development mode")
	} else {
		log.Info().Msg("postgres ready")
	}
	return pool
}

func openRedis(ctx context.Context, cfg *config.Config, log zerolog.Logger) *goredis.Client {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set; list cache disabled")
		return nil
	}
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; list cache disabled")
		return nil
	}
	return rdb
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gomongo.Client, *gomongo.Database) {
	if cfg.Mongo.URI == "" {
		log.Info().Msg("MONGO_URI not set; audit trail disabled")
		return nil, nil
	}
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Warn().Err(err).Msg("mongodb unavailable; audit trail disabled")
		return nil, nil
	}
	return client, db
}
