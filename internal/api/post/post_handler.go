package post

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-posts-api/internal/api"
	"github.com/FACorreiaa/go-posts-api/internal/api/auth"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

const msgInvalidPostID = "Invalid post ID format."

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListPosts(w http.ResponseWriter, r *http.Request)
	GetPost(w http.ResponseWriter, r *http.Request)
	CreatePost(w http.ResponseWriter, r *http.Request, user types.User)
	UpdatePost(w http.ResponseWriter, r *http.Request, user types.User)
	DeletePost(w http.ResponseWriter, r *http.Request, user types.User)
}

type HandlerImpl struct {
	postService PostService
	logger      *slog.Logger
}

func NewHandlerImpl(postService PostService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		postService: postService,
		logger:      logger,
	}
}

func postIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// writeMutationError maps service errors of update and delete.
func (h *HandlerImpl) writeMutationError(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	switch {
	case errors.Is(err, types.ErrBadRequest):
		api.ErrorResponse(w, r, http.StatusBadRequest, api.ValidationMessage(err, "Invalid request format"))
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, notFound)
	case errors.Is(err, auth.ErrNotOwner):
		api.ErrorResponse(w, r, http.StatusForbidden, auth.MsgNotOwner)
	default:
		h.logger.ErrorContext(r.Context(), "Post mutation failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, fallback)
	}
}

// ListPosts godoc
// @Summary      List Posts
// @Tags         Posts
// @Produce      json
// @Success      200 {array} types.Post "Posts"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /posts [get]
func (h *HandlerImpl) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPosts(r.Context())
	if err != nil {
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch posts.")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get Post
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} types.Post "Post"
// @Failure      400 {object} types.Response "Invalid ID"
// @Failure      404 {object} types.Response "Not Found"
// @Router       /posts/{id} [get]
func (h *HandlerImpl) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := postIDParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, msgInvalidPostID)
		return
	}

	p, err := h.postService.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Post not found.")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to fetch post", slog.String("HandlerImpl", "GetPost"), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch post.")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// CreatePost godoc
// @Summary      Create Post
// @Description  Creates a post owned by the authenticated user.
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        body body types.CreatePostParams true "Post"
// @Success      201 {object} types.PostCreatedResponse "Created"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /posts [post]
func (h *HandlerImpl) CreatePost(w http.ResponseWriter, r *http.Request, user types.User) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreatePost"))

	var params types.CreatePostParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	p, err := h.postService.CreatePost(ctx, user, params)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, api.ValidationMessage(err, "Invalid request format"))
			return
		}
		l.ErrorContext(ctx, "Failed to create post", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error: Failed to create new post.")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, types.PostCreatedResponse{
		Status:  types.StatusSuccess,
		ID:      p.ID,
		Message: "New Post created successfully.",
	})
}

// UpdatePost godoc
// @Summary      Update Post
// @Description  Updates a post. Only the owner may update it.
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        body body types.UpdatePostParams true "Fields to update"
// @Success      200 {object} types.PostUpdatedResponse "Updated"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Not Owner"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /posts/{id} [put]
func (h *HandlerImpl) UpdatePost(w http.ResponseWriter, r *http.Request, user types.User) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdatePost"))

	var params types.UpdatePostParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if params.IsEmpty() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "No fields provided for update.")
		return
	}

	id, ok := postIDParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, msgInvalidPostID)
		return
	}

	p, err := h.postService.UpdatePost(ctx, user, id, params)
	if err != nil {
		h.writeMutationError(w, r, err, "Post not found for update.", "Failed to update post.")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.PostUpdatedResponse{
		Status:  types.StatusSuccess,
		Message: "Post updated successfully",
		Post:    p,
	})
}

// DeletePost godoc
// @Summary      Delete Post
// @Description  Deletes a post. Only the owner may delete it.
// @Tags         Posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} types.PostDeletedResponse "Deleted"
// @Failure      400 {object} types.Response "Invalid ID"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Not Owner"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /posts/{id} [delete]
func (h *HandlerImpl) DeletePost(w http.ResponseWriter, r *http.Request, user types.User) {
	id, ok := postIDParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, msgInvalidPostID)
		return
	}

	if err := h.postService.DeletePost(r.Context(), user, id); err != nil {
		h.writeMutationError(w, r, err, "Post not found for deletion.", "Failed to delete post.")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.PostDeletedResponse{
		Status:    types.StatusSuccess,
		DeletedID: id,
		Message:   "Post deleted successfully.",
	})
}
