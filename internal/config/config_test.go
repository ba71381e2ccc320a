// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "Xk9#mP2$vL5nQ8wR3tY6uI1oA4sD7fG0"

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("POF_SESSION_SECRET", testSecret)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "./data/pileoffame.db", cfg.DBPath)
		assert.Equal(t, "localhost:8080", cfg.ServerAddr())
		assert.True(t, cfg.IsDevelopment())
		assert.Equal(t, 30, cfg.HomeCacheTTL)
		assert.False(t, cfg.DoSeed)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("POF_SESSION_SECRET", testSecret)
		t.Setenv("POF_SERVER_PORT", "9999")
		t.Setenv("POF_ENV", "production")
		t.Setenv("POF_REDIS_URL", "redis://localhost:6379/0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "localhost:9999", cfg.ServerAddr())
		assert.False(t, cfg.IsDevelopment())
		assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("short secret rejected", func(t *testing.T) {
		t.Setenv("POF_SESSION_SECRET", "too-short")
		_, err := Load()
		assert.ErrorContains(t, err, "at least 32 bytes")
	})

	t.Run("known weak secret rejected", func(t *testing.T) {
		t.Setenv("POF_SESSION_SECRET", "change-me-to-32-byte-secret-key!")
		_, err := Load()
		assert.ErrorContains(t, err, "known default")
	})
}

func TestHasMinimumEntropy(t *testing.T) {
	assert.True(t, hasMinimumEntropy("Abc123!@#"))
	assert.False(t, hasMinimumEntropy("alllowercase"))
	assert.False(t, hasMinimumEntropy("lower1234"))
}
