package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Redis.CatalogTTL)
	assert.Equal(t, "https://api.sleeper.app/v1", cfg.Sleeper.BaseURL)
	assert.InDelta(t, 2.0, cfg.Sleeper.RateLimit, 1e-9)
	assert.InDelta(t, 0.80, cfg.Match.Threshold, 1e-9)
	assert.InDelta(t, 0.60, cfg.Match.SearchThreshold, 1e-9)
	assert.False(t, cfg.Match.SurnameFallback)
	assert.False(t, cfg.Authentik.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_FILE", "/tmp/leagues.sqlite")
	t.Setenv("MATCH_THRESHOLD", "0.9")
	t.Setenv("MATCH_SURNAME_FALLBACK", "true")
	t.Setenv("CATALOG_CACHE_TTL", "30m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/leagues.sqlite", cfg.Database.DSN())
	assert.InDelta(t, 0.9, cfg.Match.Threshold, 1e-9)
	assert.True(t, cfg.Match.SurnameFallback)
	assert.Equal(t, 30*time.Minute, cfg.Redis.CatalogTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("CATALOG_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 12*time.Hour, cfg.Redis.CatalogTTL)
}

func TestPostgresWithoutURLInDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Database.DSN())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad environment", map[string]string{"ENVIRONMENT": "staging"}},
		{"bad driver", map[string]string{"DB_DRIVER": "mongo"}},
		{"postgres without url in production", map[string]string{
			"ENVIRONMENT": "production", "AUTHENTIK_URL": "https://auth.example.com", "AUTHENTIK_CLIENT_ID": "draftaid",
			"DB_DRIVER": "postgres", "DATABASE_URL": "",
		}},
		{"threshold out of range", map[string]string{"MATCH_THRESHOLD": "1.5"}},
		{"production without auth", map[string]string{"ENVIRONMENT": "production", "AUTHENTIK_URL": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
