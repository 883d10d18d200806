package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-posts-api/app/observability/metrics"
	"github.com/FACorreiaa/go-posts-api/internal/api"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

// Rejection reasons written in 401 bodies.
const (
	MsgNoToken      = "no token provided"
	MsgInvalidToken = "invalid token"
	MsgTokenExpired = "token expired"
	MsgUserNotFound = "user not found"
)

const bearerPrefix = "Bearer "

type contextKey string

const userContextKey contextKey = "authUser"

// UserFinder resolves a token subject to a stored user, without the hash.
// A missing user must be reported as types.ErrNotFound.
type UserFinder interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

// ContextWithUser attaches the authenticated user.
func ContextWithUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user attached by Authenticate.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(userContextKey).(types.User)
	return user, ok
}

// AuthenticatedHandlerFunc is a handler that receives the resolved identity
// as a parameter.
type AuthenticatedHandlerFunc func(w http.ResponseWriter, r *http.Request, user types.User)

// WithUser adapts h for routes behind Authenticate.
func WithUser(h AuthenticatedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			slog.ErrorContext(r.Context(), "Authenticated handler reached without identity", slog.String("path", r.URL.Path))
			api.ErrorResponse(w, r, http.StatusUnauthorized, MsgNoToken)
			return
		}
		h(w, r, user)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-sensitive and must be followed by one space.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// Authenticate verifies the bearer token, loads its subject and attaches the
// user to the request context. Every rejection ends the request; nothing is
// attached unless the request proceeds. denylist may be nil.
func Authenticate(logger *slog.Logger, verifier TokenVerifier, users UserFinder, denylist *Denylist) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"), slog.String("path", r.URL.Path))

			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				l.DebugContext(ctx, "Missing or malformed Authorization header")
				reject(w, r, MsgNoToken)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
				if errors.Is(err, ErrTokenExpired) {
					reject(w, r, MsgTokenExpired)
				} else {
					reject(w, r, MsgInvalidToken)
				}
				return
			}

			if denylist.IsRevoked(claims.ID) {
				l.WarnContext(ctx, "Revoked token presented", slog.String("jti", claims.ID))
				reject(w, r, MsgInvalidToken)
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				reject(w, r, MsgInvalidToken)
				return
			}

			user, err := users.GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					l.WarnContext(ctx, "Token subject no longer exists", slog.String("userID", userID.String()))
					reject(w, r, MsgUserNotFound)
					return
				}
				l.ErrorContext(ctx, "Failed to load authenticated user", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}

			user.PasswordHash = ""
			l.DebugContext(ctx, "Authentication successful", slog.String("userID", user.ID.String()))
			next.ServeHTTP(w, r.WithContext(ContextWithUser(ctx, *user)))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, reason string) {
	metrics.RecordRejection(r.Context(), reason)
	api.ErrorResponse(w, r, http.StatusUnauthorized, reason)
}
