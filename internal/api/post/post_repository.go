package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-posts-api/app/db"
	"github.com/FACorreiaa/go-posts-api/app/observability/metrics"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

var _ PostRepo = (*PostgresPostRepo)(nil)

var errPostRejected = types.NewValidationError("Post failed validation.")

// PostRepo persists posts. Lookups by id return types.ErrNotFound when the
// post does not exist.
type PostRepo interface {
	ListPosts(ctx context.Context) ([]types.Post, error)
	GetPostByID(ctx context.Context, postID uuid.UUID) (*types.Post, error)
	CreatePost(ctx context.Context, ownerID uuid.UUID, params types.CreatePostParams) (*types.Post, error)
	UpdatePost(ctx context.Context, postID uuid.UUID, params types.UpdatePostParams) (*types.Post, error)
	DeletePost(ctx context.Context, postID uuid.UUID) error
}

type PostgresPostRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresPostRepo(db database.DB, logger *slog.Logger) *PostgresPostRepo {
	return &PostgresPostRepo{
		logger: logger,
		db:     db,
	}
}

const postColumns = "id, title, description, tags, images, user_id, created_at, updated_at"

func scanPost(row pgx.Row) (types.Post, error) {
	var p types.Post
	var images []byte
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Tags, &images, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.Images = []types.Image{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return p, fmt.Errorf("decoding images: %w", err)
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func dbSpan(ctx context.Context, name, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "posts"),
	}, attrs...)
	return otel.Tracer("PostRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

// ListPosts implements PostRepo. Newest posts come first.
func (r *PostgresPostRepo) ListPosts(ctx context.Context) ([]types.Post, error) {
	ctx, span := dbSpan(ctx, "ListPosts", "SELECT")
	defer span.End()

	l := r.logger.With(slog.String("method", "ListPosts"))

	start := time.Now()
	rows, err := r.db.Query(ctx, "SELECT "+postColumns+" FROM posts ORDER BY created_at DESC")
	if err != nil {
		metrics.ObserveQuery(ctx, "ListPosts", start, err)
		l.ErrorContext(ctx, "Failed to query posts", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error listing posts: %w", err)
	}
	defer rows.Close()

	posts := []types.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			metrics.ObserveQuery(ctx, "ListPosts", start, err)
			l.ErrorContext(ctx, "Failed to scan post row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scan failed")
			return nil, fmt.Errorf("database error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	err = rows.Err()
	metrics.ObserveQuery(ctx, "ListPosts", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Error iterating post rows", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return nil, fmt.Errorf("database error iterating posts: %w", err)
	}

	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	span.SetStatus(codes.Ok, "Posts listed")
	return posts, nil
}

// GetPostByID implements PostRepo.
func (r *PostgresPostRepo) GetPostByID(ctx context.Context, postID uuid.UUID) (*types.Post, error) {
	ctx, span := dbSpan(ctx, "GetPostByID", "SELECT", attribute.String("post.id", postID.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetPostByID"), slog.String("postID", postID.String()))

	start := time.Now()
	p, err := scanPost(r.db.QueryRow(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1", postID))
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveQuery(ctx, "GetPostByID", start, nil)
		span.SetStatus(codes.Ok, "Post not found")
		return nil, fmt.Errorf("post %s: %w", postID, types.ErrNotFound)
	}
	metrics.ObserveQuery(ctx, "GetPostByID", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching post: %w", err)
	}

	span.SetStatus(codes.Ok, "Post found")
	return &p, nil
}

// CreatePost implements PostRepo.
func (r *PostgresPostRepo) CreatePost(ctx context.Context, ownerID uuid.UUID, params types.CreatePostParams) (*types.Post, error) {
	ctx, span := dbSpan(ctx, "CreatePost", "INSERT", attribute.String("db.user.id", ownerID.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreatePost"), slog.String("userID", ownerID.String()))

	images, err := json.Marshal(params.Images)
	if err != nil {
		return nil, fmt.Errorf("encoding images: %w", err)
	}

	query := `INSERT INTO posts (title, description, tags, images, user_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + postColumns

	start := time.Now()
	p, err := scanPost(r.db.QueryRow(ctx, query, params.Title, params.Description, params.Tags, images, ownerID))
	metrics.ObserveQuery(ctx, "CreatePost", start, err)
	if database.IsSchemaViolation(err) {
		span.SetStatus(codes.Error, "Schema violation")
		return nil, fmt.Errorf("%w: %w", errPostRejected, err)
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("database error creating post: %w", err)
	}

	l.InfoContext(ctx, "Post created", slog.String("postID", p.ID.String()))
	span.SetStatus(codes.Ok, "Post created")
	return &p, nil
}

// UpdatePost implements PostRepo. The owner column is never written.
func (r *PostgresPostRepo) UpdatePost(ctx context.Context, postID uuid.UUID, params types.UpdatePostParams) (*types.Post, error) {
	ctx, span := dbSpan(ctx, "UpdatePost", "UPDATE", attribute.String("post.id", postID.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdatePost"), slog.String("postID", postID.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *params.Title)
		argID++
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *params.Description)
		argID++
	}
	if params.Tags != nil {
		setClauses = append(setClauses, fmt.Sprintf("tags = $%d", argID))
		args = append(args, params.Tags)
		argID++
	}
	if params.Images != nil {
		images, err := json.Marshal(params.Images)
		if err != nil {
			return nil, fmt.Errorf("encoding images: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("images = $%d", argID))
		args = append(args, images)
		argID++
	}
	if len(setClauses) == 0 {
		return nil, types.NewValidationError("No fields provided for update.")
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, postID)
	query := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, postColumns)

	start := time.Now()
	p, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveQuery(ctx, "UpdatePost", start, nil)
		span.SetStatus(codes.Error, "Post not found")
		return nil, fmt.Errorf("post %s: %w", postID, types.ErrNotFound)
	}
	metrics.ObserveQuery(ctx, "UpdatePost", start, err)
	if database.IsSchemaViolation(err) {
		span.SetStatus(codes.Error, "Schema violation")
		return nil, fmt.Errorf("%w: %w", errPostRejected, err)
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to update post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("database error updating post: %w", err)
	}

	l.InfoContext(ctx, "Post updated")
	span.SetStatus(codes.Ok, "Post updated")
	return &p, nil
}

// DeletePost implements PostRepo.
func (r *PostgresPostRepo) DeletePost(ctx context.Context, postID uuid.UUID) error {
	ctx, span := dbSpan(ctx, "DeletePost", "DELETE", attribute.String("post.id", postID.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "DeletePost"), slog.String("postID", postID.String()))

	start := time.Now()
	tag, err := r.db.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID)
	metrics.ObserveQuery(ctx, "DeletePost", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Post not found")
		return fmt.Errorf("post %s: %w", postID, types.ErrNotFound)
	}

	l.InfoContext(ctx, "Post deleted")
	span.SetStatus(codes.Ok, "Post deleted")
	return nil
}
