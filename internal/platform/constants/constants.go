// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between the postdeck client and the identity stub server.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and token lifetimes.
  - Session Storage: The well-known token key and storage prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName       = "postdeck"
	ServerAppName = "identityd"
	AppVersion    = "0.1.0-dev"

	// UserAgent is sent with every outbound request from the client.
	UserAgent = "postdeck/" + AppVersion
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// DefaultRequestTimeout bounds every outbound identity call from the client.
	DefaultRequestTimeout = 10 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "identityd.postdeck.local"

	// DefaultTokenTTL matches the one-day expiry of the original backend.
	DefaultTokenTTL = 24 * time.Hour

	// MinPasswordLength is enforced at registration, client and server side.
	MinPasswordLength = 8

	// DemoEmail and DemoPassword are the seeded quick-login credentials.
	DemoEmail    = "demo@example.com"
	DemoPassword = "password"
	DemoName     = "Demo"
)

// # Session Storage

const (
	// TokenStorageKey is the single well-known key the session token lives under.
	TokenStorageKey = "token"

	// TokenFileName is the file name used by the file-backed token store.
	TokenFileName = "session.json"

	// RedisPrefixSession namespaces client session tokens in Redis.
	RedisPrefixSession = "postdeck:session:"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)
