package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-posts-api/internal/types"
)

func TestCheckRole(t *testing.T) {
	admins := []types.Role{types.RoleAdmin}
	both := []types.Role{types.RoleUser, types.RoleAdmin}

	assert.NoError(t, CheckRole(admins, types.RoleAdmin))
	assert.NoError(t, CheckRole(both, types.RoleUser))

	err := CheckRole(admins, types.RoleUser)
	assert.ErrorIs(t, err, ErrRoleNotPermitted)
	assert.ErrorIs(t, err, types.ErrForbidden)

	assert.ErrorIs(t, CheckRole(nil, types.RoleAdmin), ErrRoleNotPermitted)
}

func TestCheckOwnership(t *testing.T) {
	owner := uuid.New()

	assert.NoError(t, CheckOwnership(owner, owner))

	err := CheckOwnership(owner, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, err, types.ErrForbidden)

	assert.ErrorIs(t, CheckOwnership(uuid.Nil, uuid.Nil), ErrNotOwner)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole(slog.Default(), types.RoleAdmin)(next)

	serveAs := func(role types.Role) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req = req.WithContext(ContextWithUser(req.Context(), types.User{ID: uuid.New(), Role: role}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, serveAs(types.RoleAdmin).Code)

	w := serveAs(types.RoleUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, MsgRoleNotPermitted, decodeResponse(t, w).Error)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
