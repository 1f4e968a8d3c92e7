// Package server defines the Server container that owns the application's
// shared resources and their lifecycle.
//
// It owns:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the key-value store and whatever client backs it (redis, postgres)
//   - Prometheus metrics
//   - the http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deppfellow/go-kv-crud/internal/config"
	"github.com/deppfellow/go-kv-crud/internal/database"
	"github.com/deppfellow/go-kv-crud/internal/kv"
	loggerPkg "github.com/deppfellow/go-kv-crud/internal/logger"
	"github.com/deppfellow/go-kv-crud/internal/metrics"
)

// RedisPingTimeout bounds the startup ping of the redis driver.
const RedisPingTimeout = 5 * time.Second

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// Store is the instrumented store every request goes through.
	Store kv.Store

	// Redis is set for the redis driver only.
	Redis *redis.Client

	// DB is set for the postgres driver only.
	DB *database.Database

	Metrics *metrics.Metrics

	httpServer *http.Server
}

// New opens the store selected by cfg.Store.Driver and builds the
// container around it.
//
// A redis server that does not answer the startup ping is logged and
// tolerated; /status reports it until it comes up. Postgres and sqlite
// failures abort startup.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Metrics:       metrics.New(),
	}

	store, err := s.openStore(ctx)
	if err != nil {
		s.closeBackends()
		return nil, err
	}

	s.Store = kv.Instrument(store, cfg.Store.Driver, s.Metrics, logger, cfg.Observability.Logging.SlowQueryThreshold)

	logger.Info().
		Str("driver", cfg.Store.Driver).
		Strs("resources", cfg.Resources).
		Msg("store ready")

	return s, nil
}

// NewWithStore builds a container around an already open store. The store
// is used as is, without instrumentation.
func NewWithStore(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, store kv.Store) *Server {
	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Store:         store,
		Metrics:       metrics.New(),
	}
}

func (s *Server) openStore(ctx context.Context) (kv.Store, error) {
	cfg := s.Config

	switch cfg.Store.Driver {
	case config.DriverMemory:
		return kv.NewMemoryStore(), nil

	case config.DriverRedis:
		s.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if s.LoggerService.GetApplication() != nil {
			s.Redis.AddHook(nrredis.NewHook(s.Redis.Options()))
		}

		pingCtx, cancel := context.WithTimeout(ctx, RedisPingTimeout)
		defer cancel()
		if err := s.Redis.Ping(pingCtx).Err(); err != nil {
			s.Logger.Error().Err(err).Str("address", cfg.Redis.Address).Msg("failed to connect to redis, continuing")
		}

		return kv.NewRedisStore(s.Redis), nil

	case config.DriverPostgres:
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, s.Logger, cfg); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		db, err := database.New(ctx, cfg, s.Logger, s.LoggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.DB = db

		return kv.NewPostgresStore(db.Pool), nil

	case config.DriverSQLite:
		store, err := kv.NewSQLiteStore(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// SetupHTTPServer configures the http.Server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("driver", s.Config.Store.Driver).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then closes the store, its clients and New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}

	errs = append(errs, s.closeBackends()...)

	s.LoggerService.Shutdown()

	return errors.Join(errs...)
}

// closeBackends closes the redis client and the database pool if open.
func (s *Server) closeBackends() []error {
	var errs []error

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
		s.Redis = nil
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
		s.DB = nil
	}

	return errs
}
