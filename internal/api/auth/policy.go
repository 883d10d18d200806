package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-posts-api/app/observability/metrics"
	"github.com/FACorreiaa/go-posts-api/internal/api"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

// Rejection reasons written in 403 bodies.
const (
	MsgRoleNotPermitted = "role not permitted"
	MsgNotOwner         = "not resource owner"
)

var (
	ErrRoleNotPermitted = fmt.Errorf("%w: %s", types.ErrForbidden, MsgRoleNotPermitted)
	ErrNotOwner         = fmt.Errorf("%w: %s", types.ErrForbidden, MsgNotOwner)
)

// CheckRole allows actual only if it is one of allowed.
func CheckRole(allowed []types.Role, actual types.Role) error {
	if slices.Contains(allowed, actual) {
		return nil
	}
	return ErrRoleNotPermitted
}

// CheckOwnership allows only the recorded owner.
func CheckOwnership(ownerID, requesterID uuid.UUID) error {
	if ownerID != uuid.Nil && ownerID == requesterID {
		return nil
	}
	return ErrNotOwner
}

// RequireRole rejects requests whose authenticated user is not in one of
// roles. It must run after Authenticate.
func RequireRole(logger *slog.Logger, roles ...types.Role) func(next http.Handler) http.Handler {
	allowed := slices.Clone(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user, ok := UserFromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "RequireRole used without Authenticate", slog.String("path", r.URL.Path))
				api.ErrorResponse(w, r, http.StatusUnauthorized, MsgNoToken)
				return
			}
			if err := CheckRole(allowed, user.Role); err != nil {
				logger.WarnContext(ctx, "Role check failed",
					slog.String("userID", user.ID.String()),
					slog.String("role", user.Role.String()),
					slog.Any("allowed", allowed))
				metrics.RecordRejection(ctx, MsgRoleNotPermitted)
				api.ErrorResponse(w, r, http.StatusForbidden, MsgRoleNotPermitted)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
