package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mcoot/cutgame/internal/services/round"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the process configuration read from the environment
type Config struct {
	Host     string
	Port     int
	LogLevel slog.Level

	StorageType string
	RedisURL    string

	TurnSeconds      int
	DefaultRange     int
	TimeoutPenalty   bool
	DuplicateSecrets round.DuplicateSecretPolicy

	ActionsPerSecond float64
	ActionBurst      int
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Port:             8080,
		LogLevel:         slog.LevelInfo,
		StorageType:      StorageMemory,
		TurnSeconds:      15,
		DefaultRange:     20,
		DuplicateSecrets: round.DuplicateTwoPlayers,
		ActionsPerSecond: 5,
		ActionBurst:      10,
	}
}

// Load reads an optional .env file and then the environment
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Existing variables win over file values
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	cfg.Host = p.str("CUTGAME_HOST", cfg.Host)
	cfg.Port = p.integer("CUTGAME_PORT", cfg.Port)
	cfg.LogLevel = p.level("CUTGAME_LOG_LEVEL", cfg.LogLevel)
	cfg.StorageType = strings.ToLower(p.str("STORAGE_TYPE", cfg.StorageType))
	cfg.RedisURL = p.str("REDIS_URL", cfg.RedisURL)
	cfg.TurnSeconds = p.integer("CUTGAME_TURN_SECONDS", cfg.TurnSeconds)
	cfg.DefaultRange = p.integer("CUTGAME_DEFAULT_RANGE", cfg.DefaultRange)
	cfg.TimeoutPenalty = p.boolean("CUTGAME_TIMEOUT_PENALTY", cfg.TimeoutPenalty)
	cfg.DuplicateSecrets = p.policy("CUTGAME_DUPLICATE_SECRETS", cfg.DuplicateSecrets)
	cfg.ActionsPerSecond = p.float("CUTGAME_ACTIONS_PER_SECOND", cfg.ActionsPerSecond)
	cfg.ActionBurst = p.integer("CUTGAME_ACTION_BURST", cfg.ActionBurst)

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	var errs []error
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("CUTGAME_PORT out of range: %d", c.Port))
	}
	if c.TurnSeconds <= 0 {
		errs = append(errs, fmt.Errorf("CUTGAME_TURN_SECONDS must be positive: %d", c.TurnSeconds))
	}
	if c.DefaultRange < 2 {
		errs = append(errs, fmt.Errorf("CUTGAME_DEFAULT_RANGE must be at least 2: %d", c.DefaultRange))
	}
	if c.ActionsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("CUTGAME_ACTIONS_PER_SECOND must be positive: %v", c.ActionsPerSecond))
	}
	if c.ActionBurst <= 0 {
		errs = append(errs, fmt.Errorf("CUTGAME_ACTION_BURST must be positive: %d", c.ActionBurst))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// parser collects every malformed variable instead of stopping at the first
type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (p *parser) level(key string, def slog.Level) slog.Level {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid log level %q", key, v))
		return def
	}
	return lvl
}

func (p *parser) policy(key string, def round.DuplicateSecretPolicy) round.DuplicateSecretPolicy {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	policy, err := round.ParseDuplicateSecretPolicy(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return policy
}
