// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/taibuivan/postdeck/internal/identity"
	"github.com/taibuivan/postdeck/internal/platform/config"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/platform/ctxutil"
	"github.com/taibuivan/postdeck/internal/platform/logger"
	"github.com/taibuivan/postdeck/internal/platform/metrics"
	redisstore "github.com/taibuivan/postdeck/internal/platform/redis"
	"github.com/taibuivan/postdeck/internal/session"
)

// app holds the per-invocation dependencies. Everything is built on first
// use so commands that never touch the network never dial anything.
type app struct {
	opts   *globalOptions
	stderr io.Writer

	cfg       *config.Client
	log       *slog.Logger
	location  *time.Location
	registry  *prometheus.Registry
	collector *metrics.Collector
	manager   *session.Manager
	closers   []func() error
}

// run loads configuration, scopes a request ID to the command and releases
// everything once fn returns.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	// ── 1. Configuration & Logging ────────────────────────────────────────
	if err := a.load(); err != nil {
		return err
	}

	// ── 2. Command Scope ──────────────────────────────────────────────────
	ctx := ctxutil.EnsureRequestID(cmd.Context())
	scoped := a.log.With(slog.String("request_id", ctxutil.GetRequestID(ctx)), slog.String("command", cmd.Name()))
	ctx = ctxutil.WithLogger(ctx, scoped)

	defer a.close(ctx)
	return fn(ctx)
}

func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.opts.ephemeral {
		cfg.TokenStore = config.StoreMemory
	}

	location, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	a.cfg = cfg
	a.location = location
	a.log = logger.New(a.stderr, constants.AppName, cfg.Debug || a.opts.debug)
	a.registry = prometheus.NewRegistry()
	a.collector = metrics.NewCollector(a.registry)
	return nil
}

// session returns the session manager, restoring the stored token.
func (a *app) session(ctx context.Context) (*session.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}

	store, err := a.tokenStore(ctx)
	if err != nil {
		return nil, err
	}

	client, err := identity.NewClient(
		&http.Client{Timeout: a.cfg.RequestTimeout},
		a.cfg.APIBaseURL,
		ctxutil.GetLogger(ctx),
		identity.WithMetrics(a.collector),
	)
	if err != nil {
		return nil, err
	}

	manager, err := session.NewManager(ctx, client, store, ctxutil.GetLogger(ctx),
		session.WithMetrics(a.collector),
		session.WithRequestTimeout(a.cfg.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	a.manager = manager
	return manager, nil
}

// tokenStore picks the backend named by POSTDECK_TOKEN_STORE.
func (a *app) tokenStore(ctx context.Context) (session.TokenStore, error) {
	switch a.cfg.TokenStore {
	case config.StoreMemory:
		return session.NewMemoryStore(""), nil

	case config.StoreRedis:
		client, err := redisstore.NewClient(ctx, a.cfg.RedisURL, ctxutil.GetLogger(ctx))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return session.NewRedisStore(client, a.cfg.Profile, a.cfg.TokenTTL), nil

	default:
		path := a.cfg.TokenFile
		if path == "" {
			var err error
			if path, err = session.DefaultFilePath(a.cfg.Profile); err != nil {
				return nil, err
			}
		}
		return session.NewFileStore(path), nil
	}
}

// close dumps client metrics in debug mode and releases connections.
func (a *app) close(ctx context.Context) {
	log := ctxutil.GetLogger(ctx)

	if a.opts.debug || a.cfg.Debug {
		if families, err := a.registry.Gather(); err == nil {
			for _, family := range families {
				_, _ = expfmt.MetricFamilyToText(a.stderr, family)
			}
		}
	}

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Warn("close_failed", slog.Any("error", err))
		}
	}
	a.closers = nil
}
