// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity is the HTTP client for the three identity endpoints the
session manager depends on:

	GET  /api/auth/me        Authorization: Bearer <token>
	POST /api/auth/login     {email, password}
	POST /api/auth/register  {name, email, password}

Every failure is returned as an [*apperr.AppError]. Transport errors are never
passed through raw: the caller sees NETWORK_ERROR, CANCELED or a code mapped
from the HTTP status, with the server's message when it sent one.
*/
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/platform/ctxutil"
	"github.com/taibuivan/postdeck/internal/platform/metrics"
)

// Operation names, used for fallback messages, logs and metrics.
const (
	OpMe       = "me"
	OpLogin    = "login"
	OpRegister = "register"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

var fallbackMessages = map[string]string{
	OpMe:       "Session verification failed",
	OpLogin:    "Login failed",
	OpRegister: "Registration failed",
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// RegisterResult is the body of a successful registration.
type RegisterResult struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// Client calls the identity API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    metrics.SessionRecorder
}

// Option customises a [Client].
type Option func(*Client)

// WithMetrics records per-call latency and result codes.
func WithMetrics(recorder metrics.SessionRecorder) Option {
	return func(c *Client) { c.metrics = recorder }
}

// NewClient builds a client rooted at baseURL. The http.Client's Timeout is
// the per-request budget; a nil httpClient gets [constants.DefaultRequestTimeout].
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("identity: invalid base URL %q", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.DefaultRequestTimeout}
	}

	client := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		metrics:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Me returns the account that owns token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, OpMe, http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result LoginResult
	if err := c.do(ctx, OpLogin, http.MethodPost, "/api/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, apperr.FromStatus(http.StatusBadGateway, "Login response carried no token")
	}
	return &result, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var result RegisterResult
	if err := c.do(ctx, OpRegister, http.MethodPost, "/api/auth/register", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do performs one request. It never retries.
func (c *Client) do(ctx context.Context, operation, method, path, token string, payload, target any) (err error) {
	startTime := time.Now()
	defer func() {
		code := "OK"
		if ae := apperr.As(err); ae != nil {
			code = ae.Code
		}
		c.metrics.RecordIdentityCall(operation, code, time.Since(startTime))
	}()

	// ── 1. Build Request ──────────────────────────────────────────────────
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return apperr.Internal(fmt.Errorf("identity: encode %s request: %w", operation, err))
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperr.Internal(fmt.Errorf("identity: build %s request: %w", operation, err))
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", constants.UserAgent)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		request.Header.Set(constants.HeaderXRequestID, requestID)
	}

	// ── 2. Send ───────────────────────────────────────────────────────────
	response, err := c.httpClient.Do(request)
	if err != nil {
		return c.transportError(ctx, operation, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return c.transportError(ctx, operation, err)
	}

	c.logger.DebugContext(ctx, "identity_call_finished",
		slog.String("operation", operation),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	// ── 3. Map Status ─────────────────────────────────────────────────────
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return apperr.FromStatus(response.StatusCode, serverMessage(raw, fallbackMessages[operation]))
	}

	// ── 4. Decode ─────────────────────────────────────────────────────────
	if target != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, target); err != nil {
			return &apperr.AppError{
				Code:       apperr.CodeRequestFailed,
				Message:    "Unexpected response from the identity server",
				HTTPStatus: response.StatusCode,
				Cause:      fmt.Errorf("identity: decode %s response: %w", operation, err),
			}
		}
	}

	return nil
}

// transportError classifies a failure that produced no usable response.
// The caller's own cancellation wins over the client timeout.
func (c *Client) transportError(ctx context.Context, operation string, err error) error {
	c.logger.DebugContext(ctx, "identity_call_failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return apperr.Network("Request timed out", err)
		}
		return apperr.Canceled(ctxErr)
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return apperr.Network("Request timed out", err)
	}

	return apperr.Network("Network error", err)
}

// serverMessage extracts "message" (or "error") from a JSON error body.
func serverMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fallback
}
