package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-posts-api/internal/api"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

const (
	msgInvalidRequest = "Invalid request format"
	msgEmailTaken     = "User with this email already exists."
	msgLogout         = "Logout successful. Please clear the token from client storage."
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Signup godoc
// @Summary      Sign up
// @Description  Creates an account and returns a bearer token. Role defaults to "user".
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.SignupRequest true "Signup Request"
// @Success      201 {object} types.SignupResponse "Account created"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      409 {object} types.Response "Email Already Registered"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /auth/signup [post]
func (h *HandlerImpl) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Signup"))

	var req types.SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, api.ValidationMessage(err, msgInvalidRequest))
		return
	}

	resp, err := h.authService.Signup(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, msgEmailTaken)
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, api.ValidationMessage(err, msgInvalidRequest))
		default:
			l.ErrorContext(ctx, "Signup failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error during signup.")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges email and password for a bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Login Request"
// @Success      200 {object} types.LoginResponse "Logged in"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Invalid Credentials"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, api.ValidationMessage(err, msgInvalidRequest))
		return
	}

	resp, err := h.authService.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, MsgInvalidCredentials)
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, api.ValidationMessage(err, msgInvalidRequest))
		default:
			l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error during login.")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Logout godoc
// @Summary      Log out
// @Description  Tells the client to discard its token. Revokes the presented token when revocation is enabled.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.Response "Logged out"
// @Router       /auth/logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, _ := BearerToken(r.Header.Get("Authorization"))
	if err := h.authService.Logout(ctx, token); err != nil {
		h.logger.WarnContext(ctx, "Logout failed", slog.String("HandlerImpl", "Logout"), slog.Any("error", err))
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: msgLogout,
	})
}
