package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/api"
	"github.com/energycompany/energy-registry/internal/core/ports"
	"github.com/energycompany/energy-registry/internal/core/service"
	"github.com/energycompany/energy-registry/internal/infrastructure/db/memory"
	mongodb "github.com/energycompany/energy-registry/internal/infrastructure/db/mongo"
	redisdb "github.com/energycompany/energy-registry/internal/infrastructure/db/redis"
	infrahttp "github.com/energycompany/energy-registry/internal/infrastructure/http"
	"github.com/energycompany/energy-registry/internal/infrastructure/http/handlers"
	"github.com/energycompany/energy-registry/internal/pkg/config"
	"github.com/energycompany/energy-registry/internal/web"
	"github.com/energycompany/energy-registry/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores groups the persistence adapters selected by configuration.
type stores struct {
	objects   ports.EnergyObjectRepository
	users     ports.UserRepository
	tokens    ports.TokenStore
	readiness *handlers.HealthDependenciesHandler
	closers   []func(context.Context) error
}

func main() {
	// A missing .env file is fine: the process environment is used as is.
	_ = godotenv.Load()

	cfg := config.Load()
	log, logFile := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		File:   logger.FileOptions{Path: cfg.LogFile},
	})

	err := run(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	} else {
		log.Info().Msg("server stopped")
	}
	_ = logFile.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	objectService := service.NewEnergyObjectService(st.objects, log)
	authService := service.NewAuthService(st.users, st.tokens, cfg.JWTSecret, cfg.TokenTTL, log)
	userService := service.NewUserService(st.users, st.tokens, cfg.TokenTTL, log)

	if cfg.Seed.Enabled {
		seed := service.NewBootstrap(st.objects, st.users, service.SeedPasswords{
			Admin:     cfg.Seed.AdminPassword,
			Moderator: cfg.Seed.ModeratorPassword,
			User:      cfg.Seed.UserPassword,
		}, log)
		if err := seed.Run(ctx); err != nil {
			return err
		}
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	e := infrahttp.NewRouter(log, st.readiness)
	api.NewRouter(e, api.Dependencies{
		Objects:       objectService,
		Auth:          authService,
		Users:         userService,
		Renderer:      renderer,
		FlashSecret:   cfg.JWTSecret,
		SecureCookies: cfg.IsProduction(),
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("energy registry listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	st := &stores{readiness: handlers.NewHealthDependenciesHandler()}

	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, client.Disconnect)

		store, err := mongodb.NewStore(ctx, db)
		if err != nil {
			st.close(log)
			return nil, err
		}
		st.objects, st.users = store.EnergyObjects, store.Users
		st.readiness.With("mongodb", handlers.MongoCheck(db))
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	default:
		st.objects, st.users = memory.NewEnergyObjectRepository(), memory.NewUserRepository()
		st.readiness.With("mongodb", nil)
		log.Warn().Msg("using in-memory storage, data is lost on restart")
	}

	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			st.close(log)
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { return rdb.Close() })
		st.tokens = redisdb.NewTokenStore(rdb)
		st.readiness.With("redis", handlers.RedisCheck(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	} else {
		st.tokens = memory.NewTokenStore()
		st.readiness.With("redis", nil)
	}

	return st, nil
}

func (s *stores) close(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}
}
