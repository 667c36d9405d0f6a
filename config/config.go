// Package config centralizes startup configuration for the protection layer:
// which store backs the rate limiter, the budget presets, and the path prefix
// sets. All of it is fixed at process start; nothing here is runtime-mutable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"

	"github.com/openmics/shield/limit"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Redis carries connection settings for the redis store.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Limits holds the preset budgets, most to least permissive: public pages,
// general API, auth endpoints, sensitive operations.
type Limits struct {
	Auth      limit.Config `mapstructure:"auth" validate:"required"`
	API       limit.Config `mapstructure:"api" validate:"required"`
	Public    limit.Config `mapstructure:"public" validate:"required"`
	Sensitive limit.Config `mapstructure:"sensitive" validate:"required"`
}

// Config is the full startup configuration.
type Config struct {
	Store        string   `mapstructure:"store" validate:"required,oneof=memory redis"`
	Redis        Redis    `mapstructure:"redis"`
	Limits       Limits   `mapstructure:"limits"`
	AuthPrefixes []string `mapstructure:"auth_prefixes" validate:"required,min=1"`
	APIPrefixes  []string `mapstructure:"api_prefixes" validate:"required,min=1"`
}

// Default returns the configuration used when nothing is overridden:
// in-memory store and the limit package presets.
func Default() Config {
	return Config{
		Store: StoreMemory,
		Limits: Limits{
			Auth:      limit.Auth,
			API:       limit.API,
			Public:    limit.Public,
			Sensitive: limit.Sensitive,
		},
		AuthPrefixes: []string{"/api/auth/", "/login", "/signup", "/password-reset"},
		APIPrefixes:  []string{"/api/"},
	}
}

var validate = validator.New()

// Validate checks the config at startup. Invalid config is a startup error;
// there are no lenient fallbacks at request time.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store == StoreRedis && c.Redis.Addr == "" {
		return fmt.Errorf("invalid config: redis store selected but no redis address")
	}
	return nil
}

// Load reads configuration from the environment, with a .env file honored
// when present. Unset variables keep their defaults.
//
// Recognized variables: SHIELD_STORE, SHIELD_REDIS_ADDR,
// SHIELD_REDIS_PASSWORD, SHIELD_REDIS_DB, SHIELD_<SCOPE>_MAX_REQUESTS and
// SHIELD_<SCOPE>_WINDOW_SECONDS for AUTH, API, PUBLIC, SENSITIVE, and
// SHIELD_AUTH_PREFIXES / SHIELD_API_PREFIXES as comma-separated lists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Store = getEnv("SHIELD_STORE", cfg.Store)
	cfg.Redis.Addr = getEnv("SHIELD_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = os.Getenv("SHIELD_REDIS_PASSWORD")

	db, err := intEnv("SHIELD_REDIS_DB", cfg.Redis.DB)
	if err != nil {
		return Config{}, err
	}
	cfg.Redis.DB = db

	for name, dst := range map[string]*limit.Config{
		"AUTH":      &cfg.Limits.Auth,
		"API":       &cfg.Limits.API,
		"PUBLIC":    &cfg.Limits.Public,
		"SENSITIVE": &cfg.Limits.Sensitive,
	} {
		if err := loadLimit(name, dst); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("SHIELD_AUTH_PREFIXES"); v != "" {
		cfg.AuthPrefixes = splitList(v)
	}
	if v := os.Getenv("SHIELD_API_PREFIXES"); v != "" {
		cfg.APIPrefixes = splitList(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMap decodes a generic map (e.g. parsed from a config file by the host)
// over the defaults. Duration fields accept Go duration strings ("90s").
func FromMap(m map[string]any) (Config, error) {
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &cfg,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BuildStore constructs the configured rate-limit store. The caller owns the
// returned store and should Close it on shutdown.
func (c Config) BuildStore() (limit.Store, error) {
	switch c.Store {
	case StoreRedis:
		return limit.NewRedisStore(limit.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
	case StoreMemory:
		return limit.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", c.Store)
	}
}

func loadLimit(scope string, dst *limit.Config) error {
	maxReq, err := intEnv("SHIELD_"+scope+"_MAX_REQUESTS", dst.MaxRequests)
	if err != nil {
		return err
	}
	winSec, err := intEnv("SHIELD_"+scope+"_WINDOW_SECONDS", int(dst.Interval/time.Second))
	if err != nil {
		return err
	}
	dst.MaxRequests = maxReq
	dst.Interval = time.Duration(winSec) * time.Second
	return nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
