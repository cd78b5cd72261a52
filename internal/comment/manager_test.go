package comment_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"socialite/internal/apperror"
	"socialite/internal/audit"
	"socialite/internal/comment"
	"socialite/internal/database"
	"socialite/internal/database/databasetest"
	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (comment.Manager, *databasetest.Store) {
	t.Helper()
	store := databasetest.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewAuditor(logger, store)
	return comment.NewManager(logger, store, &auditor), store
}

func seedUserAndPost(t *testing.T, store *databasetest.Store) (database.User, database.Post) {
	t.Helper()
	ctx := context.Background()
	u, err := store.CreateUser(ctx, database.CreateUserParams{
		ID:    uuid.New(),
		Name:  "alice",
		Email: "alice@example.com",
	})
	require.NoError(t, err)
	p, err := store.CreatePost(ctx, database.CreatePostParams{
		ID:       uuid.New(),
		AuthorID: u.ID,
		Title:    "hello",
		Content:  "first",
	})
	require.NoError(t, err)
	return u, p
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_comment", func(t *testing.T) {
		m, store := newTestManager(t)
		u, p := seedUserAndPost(t, store)

		c, err := m.CreateComment(ctx, u.ID, comment.CreateCommentParams{PostID: p.ID, Content: "nice"})
		require.NoError(t, err)
		assert.Equal(t, p.ID, c.PostID)
		assert.Equal(t, u.ID, c.AuthorID)
	})

	t.Run("unknown_post_is_not_found", func(t *testing.T) {
		m, store := newTestManager(t)
		u, _ := seedUserAndPost(t, store)

		_, err := m.CreateComment(ctx, u.ID, comment.CreateCommentParams{PostID: uuid.New(), Content: "nice"})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("unknown_author_is_not_found", func(t *testing.T) {
		m, store := newTestManager(t)
		_, p := seedUserAndPost(t, store)

		_, err := m.CreateComment(ctx, uuid.New(), comment.CreateCommentParams{PostID: p.ID, Content: "nice"})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	u, p := seedUserAndPost(t, store)
	c, err := m.CreateComment(ctx, u.ID, comment.CreateCommentParams{PostID: p.ID, Content: "nice"})
	require.NoError(t, err)

	updated, err := m.UpdateComment(ctx, u.ID, c.ID, comment.UpdateCommentParams{
		Content: util.Some("edited"),
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = m.UpdateComment(ctx, u.ID, uuid.New(), comment.UpdateCommentParams{
		Content: util.Some("edited"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	u, p := seedUserAndPost(t, store)
	c, err := m.CreateComment(ctx, u.ID, comment.CreateCommentParams{PostID: p.ID, Content: "nice"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteComment(ctx, u.ID, c.ID))
	assert.Empty(t, store.Comments)

	err = m.DeleteComment(ctx, u.ID, c.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
