// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
	"github.com/taibuivan/postdeck/internal/platform/constants"
	"github.com/taibuivan/postdeck/internal/platform/metrics"
	"github.com/taibuivan/postdeck/internal/platform/sec"
	"github.com/taibuivan/postdeck/internal/platform/validate"
)

// Operation labels recorded on [metrics.AuthRecorder].
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpMe       = "me"
)

// errInvalidCredentials is shared by the unknown-email and wrong-password
// branches so callers cannot tell them apart.
var errInvalidCredentials = apperr.Unauthorized("Invalid email or password")

// Service implements the identity use cases.
type Service struct {
	userRepository UserRepository
	hasher         sec.PasswordHasher
	tokenIssuer    sec.TokenIssuer
	recorder       metrics.AuthRecorder
	tokenTTL       time.Duration
	logger         *slog.Logger
}

// Option customizes a [Service].
type Option func(*Service)

// WithRecorder records every register, login and me attempt.
func WithRecorder(recorder metrics.AuthRecorder) Option {
	return func(service *Service) { service.recorder = recorder }
}

// WithLogger sets the logger used for audit lines.
func WithLogger(logger *slog.Logger) Option {
	return func(service *Service) { service.logger = logger }
}

// NewService constructs a [Service]. A non-positive ttl falls back to
// [constants.DefaultTokenTTL].
func NewService(
	userRepo UserRepository,
	hasher sec.PasswordHasher,
	issuer sec.TokenIssuer,
	tokenTTL time.Duration,
	opts ...Option,
) *Service {
	if tokenTTL <= 0 {
		tokenTTL = constants.DefaultTokenTTL
	}
	service := &Service{
		userRepository: userRepo,
		hasher:         hasher,
		tokenIssuer:    issuer,
		tokenTTL:       tokenTTL,
		recorder:       metrics.Nop{},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register validates, hashes and persists a brand new account.
//
// # Returns
//   - The created [*User].
//   - [apperr.ValidationError] for missing or malformed fields.
//   - [apperr.Conflict] if the email is already registered.
func (service *Service) Register(ctx context.Context, input RegisterInput) (user *User, err error) {
	defer func() { service.recorder.RecordAuthAttempt(OpRegister, err == nil) }()

	// ── 1. Validation ─────────────────────────────────────────────────────

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.
		Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		Required("email", input.Email).
		Email("email", input.Email).
		MinLen("password", input.Password, constants.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness ─────────────────────────────────────────────────────

	if _, err := service.userRepository.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("User already exists")
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	user = &User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "account_registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a successfully established session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Login checks credentials and issues a signed session token.
//
// # Flow
//  1. Lookup user by email.
//  2. Verify password hash.
//  3. Sign an HS256 token valid for the configured TTL.
func (service *Service) Login(ctx context.Context, input LoginInput) (result *LoginResult, err error) {
	defer func() { service.recorder.RecordAuthAttempt(OpLogin, err == nil) }()

	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, apperr.ValidationError("Missing email or password")
	}

	// ── 1. Fetch Account ──────────────────────────────────────────────────

	user, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	// ── 2. Credential Check ───────────────────────────────────────────────

	if !service.hasher.Compare(input.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	token, err := service.tokenIssuer.GenerateAccessToken(user.Subject(), user.Email, user.Name, service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(service.tokenTTL),
		User:      user,
	}, nil
}

// Me resolves the account behind verified token claims.
//
// Returns [apperr.NotFound] when the account no longer exists.
func (service *Service) Me(ctx context.Context, claims *sec.AuthClaims) (user *User, err error) {
	defer func() { service.recorder.RecordAuthAttempt(OpMe, err == nil) }()

	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token")
	}

	return service.userRepository.FindByID(ctx, id)
}

// SeedDemoUser registers the quick-login account. Running it twice is harmless.
func (service *Service) SeedDemoUser(ctx context.Context) error {
	_, err := service.Register(ctx, RegisterInput{
		Name:     constants.DemoName,
		Email:    constants.DemoEmail,
		Password: constants.DemoPassword,
	})
	if err != nil && !apperr.HasCode(err, apperr.CodeConflict) {
		return fmt.Errorf("auth: seed demo user: %w", err)
	}
	return nil
}
