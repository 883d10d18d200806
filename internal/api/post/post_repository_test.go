package post

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-posts-api/internal/types"
)

var postRowColumns = []string{"id", "title", "description", "tags", "images", "user_id", "created_at", "updated_at"}

func newMockPostRepo(t *testing.T) (*PostgresPostRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresPostRepo(pool, slog.Default()), pool
}

func TestPostgresPostRepoCreatePost(t *testing.T) {
	repo, pool := newMockPostRepo(t)
	owner := uuid.New()
	id := uuid.New()
	now := time.Now().UTC()
	images := []byte(`[{"public_id":"p1","url":"http://x/1.png"}]`)

	pool.ExpectQuery(`INSERT INTO posts`).
		WithArgs("T", "D", []string{"go"}, images, owner).
		WillReturnRows(pgxmock.NewRows(postRowColumns).AddRow(id, "T", "D", []string{"go"}, images, owner, now, now))

	p, err := repo.CreatePost(context.Background(), owner, types.CreatePostParams{
		Title: "T", Description: "D", Tags: []string{"go"},
		Images: []types.Image{{PublicID: "p1", URL: "http://x/1.png"}},
	})
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, owner, p.UserID)
	require.Len(t, p.Images, 1)
	assert.Equal(t, "p1", p.Images[0].PublicID)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresPostRepoGetPostByID(t *testing.T) {
	t.Run("Not found", func(t *testing.T) {
		repo, pool := newMockPostRepo(t)
		id := uuid.New()
		pool.ExpectQuery(`FROM posts WHERE id`).WithArgs(id).WillReturnRows(pgxmock.NewRows(postRowColumns))

		_, err := repo.GetPostByID(context.Background(), id)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("Empty images column", func(t *testing.T) {
		repo, pool := newMockPostRepo(t)
		id := uuid.New()
		now := time.Now().UTC()
		pool.ExpectQuery(`FROM posts WHERE id`).WithArgs(id).
			WillReturnRows(pgxmock.NewRows(postRowColumns).AddRow(id, "T", "D", []string{}, []byte(`[]`), uuid.New(), now, now))

		p, err := repo.GetPostByID(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, p.Images)
		assert.Empty(t, p.Images)
	})
}

func TestPostgresPostRepoUpdatePost(t *testing.T) {
	repo, pool := newMockPostRepo(t)
	id := uuid.New()
	owner := uuid.New()
	now := time.Now().UTC()
	title := "New"

	pool.ExpectQuery(regexp.QuoteMeta("UPDATE posts SET title = $1, updated_at = $2 WHERE id = $3 RETURNING")).
		WithArgs("New", pgxmock.AnyArg(), id).
		WillReturnRows(pgxmock.NewRows(postRowColumns).AddRow(id, "New", "D", []string{}, []byte(`[]`), owner, now, now))

	p, err := repo.UpdatePost(context.Background(), id, types.UpdatePostParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", p.Title)
	assert.Equal(t, owner, p.UserID)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresPostRepoDeletePost(t *testing.T) {
	t.Run("Deleted", func(t *testing.T) {
		repo, pool := newMockPostRepo(t)
		id := uuid.New()
		pool.ExpectExec(`DELETE FROM posts`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.DeletePost(context.Background(), id))
	})

	t.Run("Missing", func(t *testing.T) {
		repo, pool := newMockPostRepo(t)
		id := uuid.New()
		pool.ExpectExec(`DELETE FROM posts`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.DeletePost(context.Background(), id), types.ErrNotFound)
	})
}

func TestPostgresPostRepoSchemaViolation(t *testing.T) {
	repo, pool := newMockPostRepo(t)
	id := uuid.New()
	blank := " "

	pool.ExpectQuery(`UPDATE posts SET`).
		WithArgs(blank, pgxmock.AnyArg(), id).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "posts_title_check"})

	_, err := repo.UpdatePost(context.Background(), id, types.UpdatePostParams{Title: &blank})
	assert.ErrorIs(t, err, types.ErrBadRequest)
}
