package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the credential store used by signup, login and the gate.
type AuthRepo interface {
	// GetUserByEmail returns the user including the password hash.
	// Returns types.ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	// GetUserByID returns the user without the password hash.
	// Returns types.ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	// CreateUser inserts a user. Returns types.ErrConflict if the email is taken.
	CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresAuthRepo(db database.DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

// GetUserByEmail implements AuthRepo.
func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByEmail"))

	var user types.User
	var role string
	query := `SELECT id, username, email, password_hash, role, bio, profile_picture, created_at, updated_at
	          FROM users WHERE email = $1`

	start := time.Now()
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &role,
		&user.Bio, &user.ProfilePicture, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveQuery(ctx, "GetUserByEmail", start, nil)
		span.SetStatus(codes.Ok, "User not found")
		return nil, fmt.Errorf("no user with that email: %w", types.ErrNotFound)
	}
	metrics.ObserveQuery(ctx, "GetUserByEmail", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query user by email", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	user.Role = types.Role(role)
	span.SetStatus(codes.Ok, "User found")
	return &user, nil
}

// GetUserByID implements AuthRepo.
func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByID"), slog.String("userID", userID.String()))

	var user types.User
	var role string
	query := `SELECT id, username, email, role, bio, profile_picture, created_at, updated_at
	          FROM users WHERE id = $1`

	start := time.Now()
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Username, &user.Email, &role,
		&user.Bio, &user.ProfilePicture, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveQuery(ctx, "GetUserByID", start, nil)
		l.DebugContext(ctx, "User not found")
		span.SetStatus(codes.Ok, "User not found")
		return nil, fmt.Errorf("user %s: %w", userID, types.ErrNotFound)
	}
	metrics.ObserveQuery(ctx, "GetUserByID", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query user by ID", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user by ID: %w", err)
	}

	user.Role = types.Role(role)
	span.SetStatus(codes.Ok, "User found")
	return &user, nil
}

// CreateUser implements AuthRepo.
func (r *PostgresAuthRepo) CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateUser"))

	user := types.User{
		Username: username,
		Email:    email,
		Role:     role,
	}
	query := `INSERT INTO users (username, email, password_hash, role)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query, username, email, passwordHash, role.String()).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	metrics.ObserveQuery(ctx, "CreateUser", start, err)
	if err != nil {
		span.RecordError(err)
		if database.IsUniqueViolation(err) {
			l.WarnContext(ctx, "Email already registered")
			span.SetStatus(codes.Error, "Unique violation")
			return nil, fmt.Errorf("email already registered: %w", types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	l.InfoContext(ctx, "User created", slog.String("userID", user.ID.String()))
	span.SetStatus(codes.Ok, "User created")
	return &user, nil
}
