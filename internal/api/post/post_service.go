package post

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-posts-api/internal/api/auth"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

var _ PostService = (*PostServiceImpl)(nil)

// PostService is the post business logic. Mutations take the requester and
// check ownership against the stored post before writing.
type PostService interface {
	ListPosts(ctx context.Context) ([]types.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (*types.Post, error)
	CreatePost(ctx context.Context, requester types.User, params types.CreatePostParams) (*types.Post, error)
	UpdatePost(ctx context.Context, requester types.User, postID uuid.UUID, params types.UpdatePostParams) (*types.Post, error)
	DeletePost(ctx context.Context, requester types.User, postID uuid.UUID) error
}

type PostServiceImpl struct {
	logger *slog.Logger
	repo   PostRepo
}

func NewPostService(repo PostRepo, logger *slog.Logger) *PostServiceImpl {
	return &PostServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *PostServiceImpl) ListPosts(ctx context.Context) ([]types.Post, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list posts", slog.String("method", "ListPosts"), slog.Any("error", err))
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *PostServiceImpl) GetPost(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	p, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error fetching post: %w", err)
	}
	return p, nil
}

// CreatePost validates params and stores a post owned by requester.
func (s *PostServiceImpl) CreatePost(ctx context.Context, requester types.User, params types.CreatePostParams) (*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "CreatePost", trace.WithAttributes(
		attribute.String("user.id", requester.ID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreatePost"), slog.String("userID", requester.ID.String()))

	if err := params.Validate(); err != nil {
		span.SetStatus(codes.Error, "Invalid post")
		return nil, err
	}

	p, err := s.repo.CreatePost(ctx, requester.ID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create post")
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	span.SetStatus(codes.Ok, "Post created")
	return p, nil
}

// UpdatePost rejects an empty update, loads the post, checks ownership and
// only then validates the provided fields.
// Nothing is written unless all three pass.
func (s *PostServiceImpl) UpdatePost(ctx context.Context, requester types.User, postID uuid.UUID, params types.UpdatePostParams) (*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "UpdatePost", trace.WithAttributes(
		attribute.String("user.id", requester.ID.String()),
		attribute.String("post.id", postID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdatePost"), slog.String("userID", requester.ID.String()), slog.String("postID", postID.String()))

	if params.IsEmpty() {
		span.SetStatus(codes.Error, "Empty update")
		return nil, types.NewValidationError("No fields provided for update.")
	}

	if err := s.authorize(ctx, requester, postID); err != nil {
		l.WarnContext(ctx, "Update rejected", slog.Any("error", err))
		span.SetStatus(codes.Error, "Update rejected")
		return nil, err
	}

	// Field validation only runs for the owner, so a non-owner always sees
	// 403 and a missing post always 404, whatever the payload.
	if err := params.Validate(); err != nil {
		span.SetStatus(codes.Error, "Invalid update")
		return nil, err
	}

	p, err := s.repo.UpdatePost(ctx, postID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update post")
		return nil, fmt.Errorf("error updating post: %w", err)
	}

	l.InfoContext(ctx, "Post updated")
	span.SetStatus(codes.Ok, "Post updated")
	return p, nil
}

// DeletePost loads the post, checks ownership and deletes it.
func (s *PostServiceImpl) DeletePost(ctx context.Context, requester types.User, postID uuid.UUID) error {
	ctx, span := otel.Tracer("PostService").Start(ctx, "DeletePost", trace.WithAttributes(
		attribute.String("user.id", requester.ID.String()),
		attribute.String("post.id", postID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeletePost"), slog.String("userID", requester.ID.String()), slog.String("postID", postID.String()))

	if err := s.authorize(ctx, requester, postID); err != nil {
		l.WarnContext(ctx, "Delete rejected", slog.Any("error", err))
		span.SetStatus(codes.Error, "Delete rejected")
		return err
	}

	if err := s.repo.DeletePost(ctx, postID); err != nil {
		l.ErrorContext(ctx, "Failed to delete post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete post")
		return fmt.Errorf("error deleting post: %w", err)
	}

	l.InfoContext(ctx, "Post deleted")
	span.SetStatus(codes.Ok, "Post deleted")
	return nil
}

func (s *PostServiceImpl) authorize(ctx context.Context, requester types.User, postID uuid.UUID) error {
	existing, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("error fetching post: %w", err)
	}
	return auth.CheckOwnership(existing.UserID, requester.ID)
}
