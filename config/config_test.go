package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmics/shield/limit"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SHIELD_STORE", "redis")
	t.Setenv("SHIELD_REDIS_ADDR", "localhost:6379")
	t.Setenv("SHIELD_REDIS_DB", "2")
	t.Setenv("SHIELD_AUTH_MAX_REQUESTS", "7")
	t.Setenv("SHIELD_AUTH_WINDOW_SECONDS", "30")
	t.Setenv("SHIELD_API_PREFIXES", "/api/, /v2/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, limit.Config{Interval: 30 * time.Second, MaxRequests: 7}, cfg.Limits.Auth)
	assert.Equal(t, []string{"/api/", "/v2/"}, cfg.APIPrefixes)
	// Unset scopes keep their presets.
	assert.Equal(t, limit.API, cfg.Limits.API)
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Setenv("SHIELD_REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRedisRequiresAddr(t *testing.T) {
	t.Setenv("SHIELD_STORE", "redis")
	_, err := Load()
	assert.Error(t, err)
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"store": "memory",
		"limits": map[string]any{
			"sensitive": map[string]any{
				"interval":     "90s",
				"max_requests": 2,
			},
		},
		"auth_prefixes": []string{"/account/"},
	})
	require.NoError(t, err)
	assert.Equal(t, limit.Config{Interval: 90 * time.Second, MaxRequests: 2}, cfg.Limits.Sensitive)
	assert.Equal(t, []string{"/account/"}, cfg.AuthPrefixes)
	// Untouched presets survive the overlay.
	assert.Equal(t, limit.Auth, cfg.Limits.Auth)
}

func TestFromMapRejectsUnknownStore(t *testing.T) {
	_, err := FromMap(map[string]any{"store": "dynamo"})
	assert.Error(t, err)
}

func TestValidateRejectsZeroBudget(t *testing.T) {
	cfg := Default()
	cfg.Limits.API.MaxRequests = 0
	assert.Error(t, cfg.Validate())
}

func TestBuildStoreMemory(t *testing.T) {
	store, err := Default().BuildStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
