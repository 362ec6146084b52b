package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://digi-api.com/api/v1", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1000, cfg.CatalogSize)
	assert.Equal(t, 9, cfg.LevelCount)
	assert.Equal(t, 30, cfg.TypeCount)
	assert.Equal(t, 20, cfg.LevelPageSize)
	assert.Equal(t, 50, cfg.TypePageSize)
	assert.Equal(t, 10, cfg.DetailBatchSize)
	assert.True(t, cfg.DetailCache)
	assert.Empty(t, cfg.RedisURL)
	assert.Zero(t, cfg.Client().RateLimit, "pacing is opt-in")
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, ":8080", cfg.Server().Addr)
	assert.Equal(t, 30*time.Minute, cfg.Server().SessionTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DIGI_BASE_URL", "http://localhost:3000/api/v1")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("TYPE_PAGE_SIZE", "25")
	t.Setenv("DETAIL_CACHE", "false")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,https://digi.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2.5, cfg.Client().RateLimit)
	assert.Equal(t, "http://localhost:3000/api/v1", cfg.Client().BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client().Timeout)

	opts := cfg.Browse()
	assert.Equal(t, 25, opts.TypeFeed.PageSize)
	assert.Equal(t, 10, opts.TypeFeed.BatchSize)
	assert.Equal(t, 3*time.Second, opts.LevelFeed.Timeout)
	assert.False(t, opts.DetailCache)

	assert.Equal(t, "debug", string(cfg.Logging().Level))
	assert.Equal(t, []string{"http://localhost:5173", "https://digi.example"}, cfg.Server().AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unparsable int", key: "CATALOG_SIZE", value: "many"},
		{name: "zero page size", key: "LEVEL_PAGE_SIZE", value: "0"},
		{name: "negative count", key: "TYPE_COUNT", value: "-1"},
		{name: "zero timeout", key: "REQUEST_TIMEOUT", value: "0s"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "loud"},
		{name: "negative rate", key: "RATE_LIMIT", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
