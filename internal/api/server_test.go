// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/postdeck/internal/api"
	"github.com/taibuivan/postdeck/internal/auth"
	"github.com/taibuivan/postdeck/internal/identity"
	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/config"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/platform/logger"
	"github.com/taibuivan/postdeck/internal/platform/metrics"
	"github.com/taibuivan/postdeck/internal/platform/sec"
	"github.com/taibuivan/postdeck/internal/session"
)

func newTestServer(t *testing.T, checks ...api.Check) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Server{
		Port:           "0",
		Environment:    "test",
		JWTSecret:      "test-secret-0123456789",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"http://localhost:5173"},
	}

	tokens, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	service := auth.NewService(
		auth.NewMemoryRepository(),
		sec.BcryptHasher{Cost: bcrypt.MinCost},
		tokens,
		cfg.TokenTTL,
		auth.WithRecorder(collector),
		auth.WithLogger(logger.Discard()),
	)
	require.NoError(t, service.SeedDemoUser(ctx))

	liveness, readiness := api.NewHealthHandlers(logger.Discard(), checks...)
	server := api.NewServer(ctx, cfg, logger.Discard(), tokens, collector, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metrics.Handler(registry),
		Auth:      auth.NewHandler(service),
	})

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return httpServer
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	response, err := http.Get(url)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, string(body)
}

/*
TestServer_Health covers liveness and both readiness outcomes.
*/
func TestServer_Health(t *testing.T) {
	healthy := newTestServer(t, api.Check{Name: "signer", Probe: func(context.Context) error { return nil }})

	status, body := get(t, healthy.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	status, body = get(t, healthy.URL+"/ready")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"ready"`)

	degraded := newTestServer(t, api.Check{Name: "signer", Probe: func(context.Context) error { return errors.New("down") }})

	status, body = get(t, degraded.URL+"/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, `"degraded"`)
	assert.Contains(t, body, `"down"`)
}

/*
TestServer_SessionLifecycle drives the real identity client and session
manager against the stub server: login, verify, restore, logout.
*/
func TestServer_SessionLifecycle(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	client, err := identity.NewClient(server.Client(), server.URL, logger.Discard())
	require.NoError(t, err)

	store := session.NewMemoryStore("")
	manager, err := session.NewManager(ctx, client, store, logger.Discard())
	require.NoError(t, err)

	// 1. Login with the seeded demo account
	user, err := manager.Login(ctx, constants.DemoEmail, constants.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, constants.DemoName, user.Name)
	assert.Equal(t, identity.ID("1"), user.ID)

	token, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// 2. A fresh manager restores the session from the store
	restored, err := session.NewManager(ctx, client, store, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, session.StateUnverified, restored.Snapshot().State)

	me, err := restored.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, constants.DemoEmail, me.Email)
	assert.True(t, restored.Snapshot().IsAuthenticated)

	// 3. Logout forgets the token
	restored.Logout(ctx)
	assert.False(t, restored.Snapshot().IsAuthenticated)

	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

/*
TestServer_RegisterThenLogin checks that registering does not log in and
that the new account can authenticate afterwards.
*/
func TestServer_RegisterThenLogin(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	client, err := identity.NewClient(server.Client(), server.URL, logger.Discard())
	require.NoError(t, err)

	manager, err := session.NewManager(ctx, client, session.NewMemoryStore(""), logger.Discard())
	require.NoError(t, err)

	message, err := manager.Register(ctx, "Ada", "ada@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", message)
	assert.False(t, manager.Snapshot().IsAuthenticated)

	_, err = manager.Register(ctx, "Ada", "ada@example.com", "longenough")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Equal(t, "User already exists", err.Error())

	_, err = manager.Login(ctx, "ada@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	user, err := manager.Login(ctx, "ada@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
}

/*
TestServer_Metrics exposes auth attempts and HTTP series after traffic.
*/
func TestServer_Metrics(t *testing.T) {
	server := newTestServer(t)

	status, _ := get(t, server.URL+"/api/auth/me")
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := get(t, server.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "identityd_auth_attempts_total")
	assert.Contains(t, body, "identityd_http_requests_total")
	assert.Contains(t, body, `route="/api/auth/me"`)
}
