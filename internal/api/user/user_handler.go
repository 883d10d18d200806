package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-posts-api/internal/api"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

// Handler methods receive the identity resolved by auth.Authenticate; mount
// them with auth.WithUser.
type Handler interface {
	GetUserProfile(w http.ResponseWriter, r *http.Request, user types.User)
	UpdateUserProfile(w http.ResponseWriter, r *http.Request, user types.User)
	ListUsers(w http.ResponseWriter, r *http.Request, user types.User)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// GetUserProfile godoc
// @Summary      Get User Profile
// @Description  Retrieves the authenticated user's profile information.
// @Tags         User
// @Produce      json
// @Success      200 {object} types.User "User Profile"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /auth/profile [get]
func (h *HandlerImpl) GetUserProfile(w http.ResponseWriter, r *http.Request, user types.User) {
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// UpdateUserProfile godoc
// @Summary      Update User Profile
// @Description  Updates bio, profile picture and username of the authenticated user.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        profile body types.UpdateProfileParams true "Profile Update Parameters"
// @Success      200 {object} types.ProfileUpdatedResponse "Profile Updated Successfully"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "User Not Found"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /auth/profile [put]
func (h *HandlerImpl) UpdateUserProfile(w http.ResponseWriter, r *http.Request, user types.User) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateUserProfile"))

	var params types.UpdateProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	updated, err := h.userService.UpdateUserProfile(ctx, user.ID, params)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found.")
			return
		}
		l.ErrorContext(ctx, "Failed to update user profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error during profile update.")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.ProfileUpdatedResponse{
		Message: "Profile updated successfully.",
		User:    updated,
	})
}

// ListUsers godoc
// @Summary      List Users
// @Description  Lists every account. Admin only.
// @Tags         Admin
// @Produce      json
// @Success      200 {array} types.User "Users"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Forbidden"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *HandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request, user types.User) {
	ctx := r.Context()
	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list users",
			slog.String("HandlerImpl", "ListUsers"),
			slog.String("adminID", user.ID.String()),
			slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list users")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, users)
}
