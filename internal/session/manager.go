// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the authentication state of one postdeck instance.

A [Manager] holds the bearer token, the verified user and the state machine:

	Unverified ──Verify──► Verifying ──ok──► Authenticated
	                            └──fail──► Anonymous
	Authenticated ──Logout──► Anonymous ──Login──► Authenticated

There is no package-level session. Callers build one Manager per process and
pass it where it is needed.

# Concurrency

State-mutating operations (Verify, Login, Logout) run one at a time per
Manager; operations never interleave. Concurrent Verify calls share a single
request, which outlives any one caller. [Manager.Snapshot] never waits on
network I/O.
*/
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/postdeck/internal/identity"
	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/platform/metrics"
	"github.com/taibuivan/postdeck/internal/platform/validate"
)

// State is a node of the session state machine.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateUnverified    State = "unverified"
	StateVerifying     State = "verifying"
	StateAuthenticated State = "authenticated"
)

// IdentityClient is the subset of [identity.Client] the manager needs.
type IdentityClient interface {
	Me(ctx context.Context, token string) (*identity.User, error)
	Login(ctx context.Context, email, password string) (*identity.LoginResult, error)
	Register(ctx context.Context, name, email, password string) (*identity.RegisterResult, error)
}

// Snapshot is a consistent, copy-on-read view of the session.
type Snapshot struct {
	State           State
	User            *identity.User
	IsAuthenticated bool
	Loading         bool
}

// Manager is the session of one application instance.
type Manager struct {
	client  IdentityClient
	store   TokenStore
	logger  *slog.Logger
	metrics metrics.SessionRecorder

	// operation serialises Verify, Login and Logout.
	operation sync.Mutex
	verifying singleflight.Group

	// flight is the context of the shared Verify request.
	flightMu       sync.Mutex
	flight         *flight
	requestTimeout time.Duration

	mu      sync.RWMutex
	token   string
	user    *identity.User
	state   State
	loading bool
}

// flight bounds one shared Verify request. It is canceled once every waiter has left.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Option customises a [Manager].
type Option func(*Manager)

// WithRequestTimeout bounds the shared Verify request. Non-positive values are ignored.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.requestTimeout = d
		}
	}
}

// WithMetrics records state transitions.
func WithMetrics(recorder metrics.SessionRecorder) Option {
	return func(m *Manager) { m.metrics = recorder }
}

// NewManager reads the stored token once. The session starts Unverified when
// a token exists and Anonymous otherwise.
//
// An unreadable token file ([ErrCorruptStore]) is removed and the session
// starts Anonymous. Other store failures are returned as INTERNAL_ERROR.
func NewManager(ctx context.Context, client IdentityClient, store TokenStore, logger *slog.Logger, opts ...Option) (*Manager, error) {
	token, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptStore):
		logger.WarnContext(ctx, "session_store_corrupt", slog.String("error", err.Error()))
		if clearErr := store.Clear(ctx); clearErr != nil {
			logger.WarnContext(ctx, "session_store_clear_failed", slog.String("error", clearErr.Error()))
		}
		token = ""
	case err != nil:
		return nil, apperr.Internal(err)
	}

	manager := &Manager{
		client:         client,
		store:          store,
		logger:         logger,
		metrics:        metrics.Nop{},
		requestTimeout: constants.DefaultRequestTimeout,
		token:          token,
		state:          StateAnonymous,
	}
	for _, opt := range opts {
		opt(manager)
	}

	if token != "" {
		manager.state = StateUnverified
	}

	logger.DebugContext(ctx, "session_restored", slog.String("state", string(manager.state)))
	return manager, nil
}

// Snapshot returns the current state without blocking on in-flight requests.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := Snapshot{
		State:           m.state,
		IsAuthenticated: m.state == StateAuthenticated,
		Loading:         m.loading,
	}
	if m.user != nil {
		user := *m.user
		snapshot.User = &user
	}
	return snapshot
}

// # Operations

// Verify checks the stored token against the identity API.
//
// On success the user is replaced and the session is Authenticated. On any
// rejection or network failure the session is cleared, exactly as [Manager.Logout]
// would, and UNAUTHORIZED is returned. A failed request is never retried.
//
// Concurrent callers share one request bounded by the manager's request
// timeout, not by any caller's context. A caller that gives up gets CANCELED
// while the others keep waiting; the request itself is only abandoned, and the
// session left as it was, once every caller has given up. A caller that
// joins a request already abandoned that way starts a fresh one.
func (m *Manager) Verify(ctx context.Context) (*identity.User, error) {
	for attempt := 0; ; attempt++ {
		shared := m.joinFlight(ctx)
		results := m.verifying.DoChan("verify", func() (any, error) {
			return m.verify(shared.ctx)
		})

		select {
		case result := <-results:
			m.leaveFlight(shared)

			// Joined a request its previous waiters had already abandoned
			if apperr.HasCode(result.Err, apperr.CodeCanceled) && ctx.Err() == nil && attempt == 0 {
				continue
			}
			if result.Err != nil {
				return nil, result.Err
			}

			user := *result.Val.(*identity.User)
			return &user, nil

		case <-ctx.Done():
			// The last waiter out lets the request unwind before returning
			if m.leaveFlight(shared) {
				<-results
			}
			return nil, apperr.Canceled(ctx.Err())
		}
	}
}

// joinFlight registers a waiter on the shared Verify context, starting one if needed.
func (m *Manager) joinFlight(ctx context.Context) *flight {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	if m.flight == nil {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.requestTimeout)
		m.flight = &flight{ctx: shared, cancel: cancel}
	}
	m.flight.waiters++
	return m.flight
}

// leaveFlight drops a waiter and reports whether it was the last one.
func (m *Manager) leaveFlight(f *flight) bool {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return false
	}

	f.cancel()
	if m.flight == f {
		m.flight = nil
	}
	return true
}

func (m *Manager) verify(ctx context.Context) (*identity.User, error) {
	m.operation.Lock()
	defer m.operation.Unlock()

	m.mu.RLock()
	token, previous := m.token, m.state
	m.mu.RUnlock()

	// ── 1. Nothing to verify ──────────────────────────────────────────────
	if token == "" {
		return nil, apperr.Unauthorized("No stored session")
	}

	m.transition(previous, StateVerifying, func() { m.loading = true })

	// ── 2. Ask the identity API ───────────────────────────────────────────
	user, err := m.client.Me(ctx, token)

	// ── 3. Every waiter gave up: keep what we had ─────────────────────────
	if apperr.HasCode(err, apperr.CodeCanceled) {
		m.transition(StateVerifying, previous, func() { m.loading = false })
		return nil, err
	}

	// ── 4. Any other failure demotes to Anonymous ─────────────────────────
	if err != nil {
		m.logger.InfoContext(ctx, "session_verification_failed", slog.String("error", err.Error()))
		m.clear(ctx, StateVerifying)

		rejected := apperr.Unauthorized("Session expired or invalid")
		rejected.Cause = err
		return nil, rejected
	}

	m.transition(StateVerifying, StateAuthenticated, func() {
		m.user = user
		m.loading = false
	})
	return user, nil
}

// Login exchanges credentials for a token, persists it and authenticates.
//
// A rejection returns the server's message (or "Login failed"); a transport
// failure returns NETWORK_ERROR. Neither changes the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*identity.User, error) {
	m.operation.Lock()
	defer m.operation.Unlock()

	result, err := m.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		m.logger.InfoContext(ctx, "session_login_failed", slog.String("error", err.Error()))
		return nil, err
	}

	if err := m.store.Save(ctx, result.Token); err != nil {
		return nil, apperr.Internal(err)
	}

	m.mu.RLock()
	previous := m.state
	m.mu.RUnlock()

	user := result.User
	m.transition(previous, StateAuthenticated, func() {
		m.token = result.Token
		m.user = &user
		m.loading = false
	})

	m.logger.InfoContext(ctx, "session_login_succeeded", slog.String("user_id", user.ID.String()))
	return &user, nil
}

// Register creates an account and returns the server's message.
// It never touches the session: registering does not log in.
func (m *Manager) Register(ctx context.Context, name, email, password string) (string, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)

	v := &validate.Validator{}
	v.Required("name", name).
		MaxLen("name", name, 100).
		Email("email", email).
		MinLen("password", password, constants.MinPasswordLength)
	if err := v.Err(); err != nil {
		return "", err
	}

	result, err := m.client.Register(ctx, name, email, password)
	if err != nil {
		return "", err
	}

	if result.Message == "" {
		return "Registration successful", nil
	}
	return result.Message, nil
}

// Logout clears the session and removes the stored token. It always succeeds;
// a store failure is logged.
func (m *Manager) Logout(ctx context.Context) {
	m.operation.Lock()
	defer m.operation.Unlock()

	m.mu.RLock()
	previous := m.state
	m.mu.RUnlock()

	m.clear(ctx, previous)
}

// # State Helpers

// clear drops token and user, then removes the stored token. Callers hold m.operation.
func (m *Manager) clear(ctx context.Context, from State) {
	m.transition(from, StateAnonymous, func() {
		m.token = ""
		m.user = nil
		m.loading = false
	})

	// Removal runs even when the caller's context is already done.
	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.WarnContext(ctx, "session_store_clear_failed", slog.String("error", err.Error()))
	}
}

// transition applies mutate and moves to the next state under the write lock.
func (m *Manager) transition(from, to State, mutate func()) {
	m.mu.Lock()
	mutate()
	m.state = to
	m.mu.Unlock()

	if from != to {
		m.metrics.RecordTransition(string(from), string(to))
	}
}
