package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/cutgame/internal/config"
	"github.com/mcoot/cutgame/internal/dependencies/clock"
	"github.com/mcoot/cutgame/internal/dependencies/identity"
	"github.com/mcoot/cutgame/internal/dependencies/random"
	"github.com/mcoot/cutgame/internal/dispatch"
	"github.com/mcoot/cutgame/internal/realtime"
	"github.com/mcoot/cutgame/internal/rooms"
	"github.com/mcoot/cutgame/internal/services/registry"
	"github.com/mcoot/cutgame/internal/services/round"
	"github.com/mcoot/cutgame/internal/services/scheduler"
	"github.com/mcoot/cutgame/internal/storage"
	"github.com/mcoot/cutgame/internal/storage/memory"
	redisstorage "github.com/mcoot/cutgame/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageMemory
	StorageTypeRedis  = config.StorageRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Random   random.Random
	Identity identity.Provider

	// Game state and services
	Table           *rooms.Table
	Scheduler       *scheduler.Scheduler
	RoundController *round.Controller
	Registry        *registry.Registry
	Dispatcher      *dispatch.Dispatcher

	// Transport
	HubManager *realtime.HubManager
	Gateway    *realtime.Gateway

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// Service configs; zero values fall back to each service's DefaultConfig
	Round     round.Config
	Registry  registry.Config
	Scheduler scheduler.Config
	Gateway   realtime.Config
}

// ConfigFromEnv maps process configuration onto the factory config
func ConfigFromEnv(env config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:      logger,
		StorageType: env.StorageType,
		Round:       round.DefaultConfig(),
		Registry:    registry.DefaultConfig(),
		Scheduler:   scheduler.DefaultConfig(),
		Gateway:     realtime.DefaultConfig(),
	}

	if env.StorageType == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = env.RedisURL
		cfg.RedisConfig = &redisCfg
	}

	cfg.Round.TurnSeconds = env.TurnSeconds
	cfg.Round.TimeoutPenalty = env.TimeoutPenalty
	cfg.Round.DuplicateSecrets = env.DuplicateSecrets
	cfg.Registry.DefaultRange = env.DefaultRange
	cfg.Gateway.ActionsPerSecond = env.ActionsPerSecond
	cfg.Gateway.ActionBurst = env.ActionBurst
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), identity.New(), withDefaults(cfg), logger), nil
}

// withDefaults fills in any service config left at its zero value
func withDefaults(cfg Config) Config {
	if cfg.Round.TurnSeconds == 0 {
		cfg.Round = round.DefaultConfig()
	}
	if cfg.Registry.DefaultRange == 0 {
		cfg.Registry = registry.DefaultConfig()
	}
	if cfg.Scheduler.TickInterval == 0 {
		cfg.Scheduler = scheduler.DefaultConfig()
	}
	if cfg.Gateway.ActionsPerSecond == 0 {
		cfg.Gateway = realtime.DefaultConfig()
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, ids identity.Provider, cfg Config, logger *slog.Logger) *App {
	table := rooms.NewTable()
	hubManager := realtime.NewHubManager(logger)
	sched := scheduler.New(clk, logger, cfg.Scheduler)
	roundController := round.NewController(table, sched, hubManager, store, clk, logger, cfg.Round)
	reg := registry.New(table, roundController, hubManager, store, clk, rnd, logger, cfg.Registry)
	dispatcher := dispatch.New(reg, roundController, hubManager, logger)
	gateway := realtime.NewGateway(hubManager, dispatcher, ids, logger, cfg.Gateway)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Identity:        ids,
		Table:           table,
		Scheduler:       sched,
		RoundController: roundController,
		Registry:        reg,
		Dispatcher:      dispatcher,
		HubManager:      hubManager,
		Gateway:         gateway,
		logger:          logger,
	}
}

// Close stops timers, ends open connections, and flushes pending history
func (a *App) Close() error {
	a.Scheduler.Stop()
	a.HubManager.Close()
	a.RoundController.WaitForHistory()

	if closer, ok := a.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error("failed to close storage", slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}
