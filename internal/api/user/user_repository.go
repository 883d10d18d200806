package user

import (
	"context"
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

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// UpdateProfile updates the provided fields and returns the stored user
	// without its hash. Returns types.ErrNotFound if the user doesn't exist.
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.User, error)
	// ListUsers returns every user, oldest first, without hashes.
	ListUsers(ctx context.Context) ([]types.User, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresUserRepo(db database.DB, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		db:     db,
	}
}

const userColumns = "id, username, email, role, bio, profile_picture, created_at, updated_at"

func scanUser(row pgx.Row) (types.User, error) {
	var u types.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &role, &u.Bio, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	u.Role = types.Role(role)
	return u, err
}

// UpdateProfile implements UserRepo.
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Username != nil {
		setClauses = append(setClauses, fmt.Sprintf("username = $%d", argID))
		args = append(args, *params.Username)
		argID++
		span.SetAttributes(attribute.Bool("update.username", true))
	}
	if params.Bio != nil {
		setClauses = append(setClauses, fmt.Sprintf("bio = $%d", argID))
		args = append(args, *params.Bio)
		argID++
		span.SetAttributes(attribute.Bool("update.bio", true))
	}
	if params.ProfilePicture != nil {
		setClauses = append(setClauses, fmt.Sprintf("profile_picture = $%d", argID))
		args = append(args, *params.ProfilePicture)
		argID++
		span.SetAttributes(attribute.Bool("update.profile_picture", true))
	}

	// An empty update still touches updated_at and returns the current row.
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, userColumns)

	l.DebugContext(ctx, "Executing dynamic update query", slog.String("query", query), slog.Int("arg_count", len(args)))

	start := time.Now()
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveQuery(ctx, "UpdateProfile", start, nil)
		l.WarnContext(ctx, "User not found for update")
		span.SetStatus(codes.Error, "User not found")
		return nil, fmt.Errorf("user not found for update: %w", types.ErrNotFound)
	}
	metrics.ObserveQuery(ctx, "UpdateProfile", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to execute update profile query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("database error updating profile: %w", err)
	}

	l.InfoContext(ctx, "User profile updated successfully")
	span.SetStatus(codes.Ok, "Profile updated")
	return &user, nil
}

// ListUsers implements UserRepo.
func (r *PostgresUserRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "ListUsers", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ListUsers"))

	start := time.Now()
	rows, err := r.db.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at ASC")
	if err != nil {
		metrics.ObserveQuery(ctx, "ListUsers", start, err)
		l.ErrorContext(ctx, "Failed to query users", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			metrics.ObserveQuery(ctx, "ListUsers", start, err)
			l.ErrorContext(ctx, "Failed to scan user row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scan failed")
			return nil, fmt.Errorf("database error scanning user: %w", err)
		}
		users = append(users, u)
	}
	err = rows.Err()
	metrics.ObserveQuery(ctx, "ListUsers", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Error iterating user rows", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return nil, fmt.Errorf("database error iterating users: %w", err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	span.SetStatus(codes.Ok, "Users listed")
	return users, nil
}
