// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/config"
)

/*
TestLoadClient_Defaults verifies the zero-configuration client settings.
*/
func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := config.LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, config.StoreFile, cfg.TokenStore)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, "fr-FR", cfg.Locale)
	assert.Equal(t, 1500*time.Millisecond, cfg.AssistantDelay)
	assert.Zero(t, cfg.TokenTTL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

/*
TestLoadClient_Overrides reads prefixed variables.
*/
func TestLoadClient_Overrides(t *testing.T) {
	t.Setenv("POSTDECK_API_BASE_URL", "https://id.example.com")
	t.Setenv("POSTDECK_REQUEST_TIMEOUT", "3s")
	t.Setenv("POSTDECK_TOKEN_STORE", "redis")
	t.Setenv("POSTDECK_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("POSTDECK_TIMEZONE", "Europe/Paris")

	cfg, err := config.LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "https://id.example.com", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, config.StoreRedis, cfg.TokenStore)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

/*
TestLoadClient_RedisWithoutURL rejects an incomplete redis setup.
*/
func TestLoadClient_RedisWithoutURL(t *testing.T) {
	t.Setenv("POSTDECK_TOKEN_STORE", "redis")

	_, err := config.LoadClient()
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "POSTDECK_REDIS_URL", ae.Details[0].Field)
}

/*
TestLoadClient_UnknownStore rejects backends outside the supported set.
*/
func TestLoadClient_UnknownStore(t *testing.T) {
	t.Setenv("POSTDECK_TOKEN_STORE", "sqlite")

	_, err := config.LoadClient()
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestLoadServer_RequiresSecret fails fast without a signing secret.
*/
func TestLoadServer_RequiresSecret(t *testing.T) {
	t.Setenv("IDENTITYD_JWT_SECRET", "")

	_, err := config.LoadServer()
	assert.Error(t, err)
}

/*
TestLoadServer_Defaults verifies the stub server defaults.
*/
func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("IDENTITYD_JWT_SECRET", "0123456789abcdef-secret")
	t.Setenv("IDENTITYD_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	cfg, err := config.LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.SeedDemoUser)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
}
