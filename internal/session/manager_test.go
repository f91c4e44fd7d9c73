// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/postdeck/internal/identity"
	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/logger"
	"github.com/taibuivan/postdeck/internal/session"
)

// newManager wires a Manager to an httptest identity stub.
func newManager(t *testing.T, store session.TokenStore, handler http.HandlerFunc) *session.Manager {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := identity.NewClient(server.Client(), server.URL, logger.Discard())
	require.NoError(t, err)

	manager, err := session.NewManager(context.Background(), client, store, logger.Discard())
	require.NoError(t, err)
	return manager
}

func storedToken(t *testing.T, store session.TokenStore) string {
	t.Helper()
	token, err := store.Load(context.Background())
	require.NoError(t, err)
	return token
}

/*
TestNewManager_InitialState is Unverified with a stored token and Anonymous without.
*/
func TestNewManager_InitialState(t *testing.T) {
	withToken := newManager(t, session.NewMemoryStore("abc"), nil)
	assert.Equal(t, session.StateUnverified, withToken.Snapshot().State)
	assert.False(t, withToken.Snapshot().IsAuthenticated)

	without := newManager(t, session.NewMemoryStore(""), nil)
	assert.Equal(t, session.StateAnonymous, without.Snapshot().State)
}

/*
TestNewManager_StoreFailure surfaces a store that cannot be read.
*/
func TestNewManager_StoreFailure(t *testing.T) {
	_, err := session.NewManager(context.Background(), nil, failingStore{}, logger.Discard())
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
}

/*
TestNewManager_CorruptStore starts Anonymous and removes an unreadable token file.
*/
func TestNewManager_CorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	manager, err := session.NewManager(context.Background(), newFakeClient(), session.NewFileStore(path), logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

/*
TestManager_LoginDemo authenticates and persists the token.
*/
func TestManager_LoginDemo(t *testing.T) {
	store := session.NewMemoryStore("")
	manager := newManager(t, store, func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/api/auth/login", request.URL.Path)
		_, _ = writer.Write([]byte(`{"token":"abc","user":{"id":1,"name":"Demo"}}`))
	})

	user, err := manager.Login(context.Background(), "demo@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "Demo", user.Name)

	snapshot := manager.Snapshot()
	assert.True(t, snapshot.IsAuthenticated)
	assert.Equal(t, session.StateAuthenticated, snapshot.State)
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "Demo", snapshot.User.Name)
	assert.Equal(t, "abc", storedToken(t, store))
}

/*
TestManager_LoginRejected returns the server message and changes nothing.
*/
func TestManager_LoginRejected(t *testing.T) {
	store := session.NewMemoryStore("")
	manager := newManager(t, store, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"message":"Invalid email or password"}`))
	})

	_, err := manager.Login(context.Background(), "demo@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)
	assert.Empty(t, storedToken(t, store))
}

/*
TestManager_LoginNetworkError never mutates state.
*/
func TestManager_LoginNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := identity.NewClient(nil, baseURL, logger.Discard())
	require.NoError(t, err)

	store := session.NewMemoryStore("old-token")
	manager, err := session.NewManager(context.Background(), client, store, logger.Discard())
	require.NoError(t, err)

	_, err = manager.Login(context.Background(), "demo@example.com", "password")
	assert.True(t, apperr.HasCode(err, apperr.CodeNetwork))
	assert.Equal(t, "Network error", err.Error())

	assert.Equal(t, session.StateUnverified, manager.Snapshot().State)
	assert.Equal(t, "old-token", storedToken(t, store))
}

/*
TestManager_VerifySuccess replaces the user and authenticates.
*/
func TestManager_VerifySuccess(t *testing.T) {
	manager := newManager(t, session.NewMemoryStore("abc"), func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer abc", request.Header.Get("Authorization"))
		_, _ = writer.Write([]byte(`{"id":1,"name":"Demo","email":"demo@example.com"}`))
	})

	user, err := manager.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", user.Email)

	snapshot := manager.Snapshot()
	assert.True(t, snapshot.IsAuthenticated)
	assert.False(t, snapshot.Loading)
}

/*
TestManager_VerifyUnauthorized clears the session and the stored token.
*/
func TestManager_VerifyUnauthorized(t *testing.T) {
	store := session.NewMemoryStore("abc")
	manager := newManager(t, store, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"message":"Invalid token"}`))
	})

	_, err := manager.Verify(context.Background())
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	snapshot := manager.Snapshot()
	assert.False(t, snapshot.IsAuthenticated)
	assert.Nil(t, snapshot.User)
	assert.Equal(t, session.StateAnonymous, snapshot.State)
	assert.Empty(t, storedToken(t, store))
}

/*
TestManager_VerifyNetworkFailure is treated like a rejection.
*/
func TestManager_VerifyNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := identity.NewClient(nil, baseURL, logger.Discard())
	require.NoError(t, err)

	store := session.NewMemoryStore("abc")
	manager, err := session.NewManager(context.Background(), client, store, logger.Discard())
	require.NoError(t, err)

	_, err = manager.Verify(context.Background())
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
	assert.True(t, apperr.HasCode(errors.Unwrap(err), apperr.CodeNetwork))

	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)
	assert.Empty(t, storedToken(t, store))
}

/*
TestManager_VerifyWithoutToken changes nothing.
*/
func TestManager_VerifyWithoutToken(t *testing.T) {
	manager := newManager(t, session.NewMemoryStore(""), func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := manager.Verify(context.Background())
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)
}

/*
TestManager_VerifyCanceled keeps the stored session.
*/
func TestManager_VerifyCanceled(t *testing.T) {
	client := newFakeClient()
	store := session.NewMemoryStore("abc")
	manager, err := session.NewManager(context.Background(), client, store, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := manager.Verify(ctx)
		done <- err
	}()

	<-client.meEntered
	snapshot := manager.Snapshot()
	assert.Equal(t, session.StateVerifying, snapshot.State)
	assert.True(t, snapshot.Loading)

	cancel()
	err = <-done
	assert.True(t, apperr.HasCode(err, apperr.CodeCanceled))

	assert.Equal(t, session.StateUnverified, manager.Snapshot().State)
	assert.False(t, manager.Snapshot().Loading)
	assert.Equal(t, "abc", storedToken(t, store))
}

/*
TestManager_VerifyDeduplicates sends one request for concurrent callers.
*/
func TestManager_VerifyDeduplicates(t *testing.T) {
	client := newFakeClient()
	manager, err := session.NewManager(context.Background(), client, session.NewMemoryStore("abc"), logger.Discard())
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := manager.Verify(context.Background())
		errs <- err
	}()
	<-client.meEntered

	for range callers - 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Verify(context.Background())
			errs <- err
		}()
	}

	// Give the followers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(client.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, client.meCalls.Load())
	assert.True(t, manager.Snapshot().IsAuthenticated)
}

/*
TestManager_VerifyLeaderCancelKeepsFollower lets the remaining callers finish
when the caller that started the shared request gives up.
*/
func TestManager_VerifyLeaderCancelKeepsFollower(t *testing.T) {
	client := newFakeClient()
	store := session.NewMemoryStore("abc")
	manager, err := session.NewManager(context.Background(), client, store, logger.Discard())
	require.NoError(t, err)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := manager.Verify(leaderCtx)
		leaderDone <- err
	}()
	<-client.meEntered

	type outcome struct {
		user *identity.User
		err  error
	}
	followerDone := make(chan outcome, 1)
	go func() {
		user, err := manager.Verify(context.Background())
		followerDone <- outcome{user, err}
	}()

	// Give the follower time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	cancelLeader()
	assert.True(t, apperr.HasCode(<-leaderDone, apperr.CodeCanceled))
	assert.Equal(t, session.StateVerifying, manager.Snapshot().State)

	close(client.release)
	follower := <-followerDone
	require.NoError(t, follower.err)
	assert.Equal(t, "Demo", follower.user.Name)

	assert.EqualValues(t, 1, client.meCalls.Load())
	assert.True(t, manager.Snapshot().IsAuthenticated)
	assert.Equal(t, "abc", storedToken(t, store))
}

/*
TestManager_VerifyCallerDeadline returns CANCELED and keeps the stored session
when the caller's own deadline passes first.
*/
func TestManager_VerifyCallerDeadline(t *testing.T) {
	client := newFakeClient()
	store := session.NewMemoryStore("abc")
	manager, err := session.NewManager(context.Background(), client, store, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = manager.Verify(ctx)
	assert.True(t, apperr.HasCode(err, apperr.CodeCanceled))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	assert.Equal(t, session.StateUnverified, manager.Snapshot().State)
	assert.Equal(t, "abc", storedToken(t, store))
}

/*
TestManager_VerifyRequestTimeout clears the session when the shared request
outlives the manager's request timeout.
*/
func TestManager_VerifyRequestTimeout(t *testing.T) {
	client := newFakeClient()
	store := session.NewMemoryStore("abc")
	manager, err := session.NewManager(context.Background(), client, store, logger.Discard(),
		session.WithRequestTimeout(20*time.Millisecond),
	)
	require.NoError(t, err)

	_, err = manager.Verify(context.Background())
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)
	assert.Empty(t, storedToken(t, store))
}

/*
TestManager_ConcurrentLogins never interleaves logins: the second one waits
for the first and decides the final state.
*/
func TestManager_ConcurrentLogins(t *testing.T) {
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})

	store := session.NewMemoryStore("")
	manager := newManager(t, store, func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(request.Body).Decode(&body)

		if body["email"] == "first@example.com" {
			close(firstEntered)
			<-releaseFirst
			_, _ = writer.Write([]byte(`{"token":"first","user":{"id":1,"name":"First"}}`))
			return
		}
		_, _ = writer.Write([]byte(`{"token":"second","user":{"id":2,"name":"Second"}}`))
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = manager.Login(context.Background(), "first@example.com", "password")
	}()

	<-firstEntered
	go func() {
		defer wg.Done()
		_, _ = manager.Login(context.Background(), "second@example.com", "password")
	}()

	// The second login is queued behind the first; the first answers late.
	time.Sleep(20 * time.Millisecond)
	close(releaseFirst)
	wg.Wait()

	snapshot := manager.Snapshot()
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "Second", snapshot.User.Name)
	assert.Equal(t, "second", storedToken(t, store))
}

/*
TestManager_Register never mutates the session.
*/
func TestManager_Register(t *testing.T) {
	var calls atomic.Int32
	store := session.NewMemoryStore("")
	manager := newManager(t, store, func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(request.Body).Decode(&body)

		if body["email"] == "taken@example.com" {
			writer.WriteHeader(http.StatusConflict)
			_, _ = writer.Write([]byte(`{"message":"Email already registered"}`))
			return
		}
		writer.WriteHeader(http.StatusCreated)
		_, _ = writer.Write([]byte(`{"message":"User registered successfully","user":{"id":5,"name":"New"}}`))
	})

	message, err := manager.Register(context.Background(), "New", "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", message)
	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)
	assert.Empty(t, storedToken(t, store))

	_, err = manager.Register(context.Background(), "New", "taken@example.com", "password123")
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Equal(t, "Email already registered", err.Error())
	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)

	assert.EqualValues(t, 2, calls.Load())
}

/*
TestManager_RegisterValidation rejects bad input before any request.
*/
func TestManager_RegisterValidation(t *testing.T) {
	manager := newManager(t, session.NewMemoryStore(""), func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := manager.Register(context.Background(), " ", "not-an-email", "short")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
	assert.Len(t, ae.Details, 3)
}

/*
TestManager_Logout clears everything, even when the store fails.
*/
func TestManager_Logout(t *testing.T) {
	store := session.NewMemoryStore("")
	manager := newManager(t, store, func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(`{"token":"abc","user":{"id":1,"name":"Demo"}}`))
	})

	_, err := manager.Login(context.Background(), "demo@example.com", "password")
	require.NoError(t, err)

	manager.Logout(context.Background())
	assert.Equal(t, session.StateAnonymous, manager.Snapshot().State)
	assert.Nil(t, manager.Snapshot().User)
	assert.Empty(t, storedToken(t, store))

	broken, err := session.NewManager(context.Background(), newFakeClient(), &clearFailingStore{MemoryStore: session.NewMemoryStore("abc")}, logger.Discard())
	require.NoError(t, err)
	assert.NotPanics(t, func() { broken.Logout(context.Background()) })
	assert.Equal(t, session.StateAnonymous, broken.Snapshot().State)
}

// # Test Doubles

type fakeClient struct {
	meCalls   atomic.Int32
	meEntered chan struct{}
	release   chan struct{}
	once      sync.Once
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		meEntered: make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (c *fakeClient) Me(ctx context.Context, _ string) (*identity.User, error) {
	c.meCalls.Add(1)
	c.once.Do(func() { close(c.meEntered) })

	select {
	case <-c.release:
		return &identity.User{ID: "1", Name: "Demo", Email: "demo@example.com"}, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperr.Network("Request timed out", ctx.Err())
		}
		return nil, apperr.Canceled(ctx.Err())
	}
}

func (c *fakeClient) Login(context.Context, string, string) (*identity.LoginResult, error) {
	return nil, apperr.Unauthorized("Login failed")
}

func (c *fakeClient) Register(context.Context, string, string, string) (*identity.RegisterResult, error) {
	return &identity.RegisterResult{}, nil
}

type failingStore struct{}

func (failingStore) Load(context.Context) (string, error) { return "", errors.New("disk on fire") }
func (failingStore) Save(context.Context, string) error { return errors.New("disk on fire") }
func (failingStore) Clear(context.Context) error { return errors.New("disk on fire") }

type clearFailingStore struct {
	*session.MemoryStore
}

func (*clearFailingStore) Clear(context.Context) error { return errors.New("read-only") }
