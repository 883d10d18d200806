package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-posts-api/config"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

// Verification failures. Each is an ErrUnauthenticated.
var (
	ErrTokenMalformed    = fmt.Errorf("%w: malformed token", types.ErrUnauthenticated)
	ErrTokenBadSignature = fmt.Errorf("%w: token signature mismatch", types.ErrUnauthenticated)
	ErrTokenExpired      = fmt.Errorf("%w: token expired", types.ErrUnauthenticated)
)

// Claims is the payload of an access token. Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenIssuer produces signed bearer tokens for a user.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// TokenVerifier checks a presented token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

var (
	_ TokenIssuer   = (*TokenManager)(nil)
	_ TokenVerifier = (*TokenManager)(nil)
)

// TokenManager issues and verifies HS256 tokens with a server-held secret.
// It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager fails with types.ErrConfiguration when the secret is empty.
// Callers are expected to treat that as fatal at startup.
func NewTokenManager(cfg config.JWTConfig, opts ...TokenOption) (*TokenManager, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("%w: jwt signing secret is empty", types.ErrConfiguration)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	m := &TokenManager{
		secret: []byte(cfg.SecretKey),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL is the lifetime given to issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for userID that expires after the configured TTL.
func (m *TokenManager) Issue(userID uuid.UUID) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token, or ErrTokenMalformed,
// ErrTokenBadSignature or ErrTokenExpired. A token past its expiry reports
// ErrTokenExpired whether or not its signature is valid.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, m.classify(token, err)
	}

	if _, err := claims.UserID(); err != nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (m *TokenManager) classify(token string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		if m.expiredUnverified(token) {
			return ErrTokenExpired
		}
		return ErrTokenBadSignature
	default:
		return ErrTokenMalformed
	}
}

// expiredUnverified reads exp without checking the signature. It only decides
// which rejection to report; the token is rejected either way.
func (m *TokenManager) expiredUnverified(token string) bool {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !m.now().Before(claims.ExpiresAt.Time)
}
