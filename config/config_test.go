package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/roastsync?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.BindAddr)
	assert.Equal(t, "change-me", cfg.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []int32{250, 340, 500, 2500}, cfg.BagSizes)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/roastsync?sslmode=disable")
	t.Setenv("BIND_ADDR", ":9090")
	t.Setenv("TOKEN_TTL_MINUTES", "90")
	t.Setenv("BAG_SIZES", "250, 1000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.BindAddr)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []int32{250, 1000}, cfg.BagSizes)
}

func TestLoadRejectsBadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/roastsync?sslmode=disable")

	t.Setenv("TOKEN_TTL_MINUTES", "zero")
	_, err := Load()
	assert.Error(t, err)
	t.Setenv("TOKEN_TTL_MINUTES", "")

	t.Setenv("BAG_SIZES", "250,-1")
	_, err = Load()
	assert.Error(t, err)
}
