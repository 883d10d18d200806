package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-posts-api/app/observability/metrics"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

// MsgInvalidCredentials is the only message a failed login ever returns.
const MsgInvalidCredentials = "invalid email or password"

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: %s", types.ErrUnauthenticated, MsgInvalidCredentials)

// ErrEmailTaken is returned by Signup when the email is already registered.
var ErrEmailTaken = fmt.Errorf("%w: email already registered", types.ErrConflict)

const (
	msgCredentialsRequired = "Email and Password are required."
	timingEqualiser        = "timing-equaliser-not-a-real-password"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	Signup(ctx context.Context, req types.SignupRequest) (*types.SignupResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error)
	// Logout revokes token when revocation is enabled; otherwise it is a no-op
	// and the client is expected to discard the token.
	Logout(ctx context.Context, token string) error
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	TokenIssuer
	TokenVerifier
}

type AuthServiceImpl struct {
	logger      *slog.Logger
	repo        AuthRepo
	hasher      SecretHasher
	tokens      TokenService
	denylist    *Denylist
	defaultRole types.Role
	dummyHash   string
}

// NewAuthService builds the signup/login/logout orchestration. denylist may
// be nil, in which case logout is advisory.
func NewAuthService(repo AuthRepo, hasher SecretHasher, tokens TokenService, denylist *Denylist, defaultRole types.Role, logger *slog.Logger) *AuthServiceImpl {
	if defaultRole == "" {
		defaultRole = types.RoleUser
	}
	dummyHash, err := hasher.Hash(timingEqualiser)
	if err != nil {
		logger.Warn("Could not precompute dummy hash", slog.Any("error", err))
	}
	return &AuthServiceImpl{
		logger:      logger,
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		denylist:    denylist,
		defaultRole: defaultRole,
		dummyHash:   dummyHash,
	}
}

// Signup creates an account and returns it with a freshly issued token.
func (s *AuthServiceImpl) Signup(ctx context.Context, req types.SignupRequest) (*types.SignupResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Signup")
	defer span.End()

	l := s.logger.With(slog.String("method", "Signup"))

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, types.NewValidationError(msgCredentialsRequired)
	}

	role := s.defaultRole
	if req.Role != "" {
		parsed, err := types.ParseRole(req.Role.String())
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		l.InfoContext(ctx, "Signup rejected, email already registered")
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, types.ErrNotFound):
		l.ErrorContext(ctx, "Failed to check existing email", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Email lookup failed")
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Hashing failed")
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Username, email, hash, role)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			return nil, ErrEmailTaken
		}
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create user failed")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issue failed")
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	metrics.RecordSignup(ctx)
	l.InfoContext(ctx, "User signed up", slog.String("userID", user.ID.String()), slog.String("role", user.Role.String()))
	span.SetStatus(codes.Ok, "User signed up")
	return &types.SignupResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Token:    token,
	}, nil
}

// Login checks credentials and issues a token. An unknown email and a wrong
// password both yield ErrInvalidCredentials, and both run a hash comparison.
func (s *AuthServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		metrics.RecordLogin(ctx, "bad_request")
		return nil, types.NewValidationError(msgCredentialsRequired)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.hasher.Verify(req.Password, s.dummyHash)
			l.InfoContext(ctx, "Login failed")
			metrics.RecordLogin(ctx, "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		metrics.RecordLogin(ctx, "error")
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		l.InfoContext(ctx, "Login failed")
		metrics.RecordLogin(ctx, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issue failed")
		metrics.RecordLogin(ctx, "error")
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID.String()))
	metrics.RecordLogin(ctx, "success")
	span.SetStatus(codes.Ok, "User logged in")
	return &types.LoginResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	}, nil
}

// Logout implements AuthService. Invalid or absent tokens are ignored.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if s.denylist == nil || token == "" {
		return nil
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.DebugContext(ctx, "Logout with unusable token", slog.String("method", "Logout"), slog.Any("error", err))
		return nil
	}
	s.denylist.Revoke(claims)
	s.logger.InfoContext(ctx, "Token revoked", slog.String("method", "Logout"), slog.String("jti", claims.ID))
	return nil
}
