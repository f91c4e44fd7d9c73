// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command identityd is a development stand-in for the identity API that
// postdeck talks to.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from IDENTITYD_* environment variables.
//  3. Build the token service and the in-memory account store.
//  4. Seed the demo account.
//  5. Wire HTTP handlers and the Prometheus registry.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/postdeck/internal/api"
	"github.com/taibuivan/postdeck/internal/auth"
	"github.com/taibuivan/postdeck/internal/platform/config"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/platform/logger"
	"github.com/taibuivan/postdeck/internal/platform/metrics"
	"github.com/taibuivan/postdeck/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := logger.New(os.Stdout, constants.ServerAppName, false)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadServer()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = logger.New(os.Stdout, constants.ServerAppName, true)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.Port),
		slog.Duration("token_ttl", cfg.TokenTTL),
	)

	// Root context lives until a shutdown signal; it also stops the rate
	// limiter's cleanup goroutine.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer rootCancel()

	// ── 3. Security ───────────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 4. Metrics ────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewMemoryRepository()
	authService := auth.NewService(
		userRepository,
		sec.NewBcryptHasher(),
		tokenService,
		cfg.TokenTTL,
		auth.WithRecorder(collector),
		auth.WithLogger(log),
	)

	if cfg.SeedDemoUser {
		must(log, authService.SeedDemoUser(rootCtx), "seed demo user")
		log.Info("demo_user_seeded", slog.String("email", constants.DemoEmail))
	}

	// ── 6. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(log, api.Check{
		Name:  "signer",
		Probe: signerProbe(tokenService),
	})

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, tokenService, collector, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metrics.Handler(registry),
		Auth:      auth.NewHandler(authService),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// signerProbe checks that the token service can still sign and verify.
func signerProbe(tokens *sec.TokenService) func(context.Context) error {
	return func(context.Context) error {
		token, err := tokens.GenerateAccessToken("0", "probe@identityd.local", "probe", time.Minute)
		if err != nil {
			return err
		}
		if _, err := tokens.VerifyToken(token); err != nil {
			return fmt.Errorf("verify probe token: %w", err)
		}
		return nil
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
