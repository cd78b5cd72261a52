package post_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"socialite/internal/apperror"
	"socialite/internal/audit"
	"socialite/internal/database"
	"socialite/internal/database/databasetest"
	"socialite/internal/post"
	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (post.Manager, *databasetest.Store) {
	t.Helper()
	store := databasetest.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewAuditor(logger, store)
	return post.NewManager(logger, store, &auditor), store
}

func seedUser(t *testing.T, store *databasetest.Store, name string) database.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), database.CreateUserParams{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@example.com",
	})
	require.NoError(t, err)
	return u
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_post", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")

		p, err := m.CreatePost(ctx, alice.ID, post.CreatePostParams{Title: "hello", Content: "first"})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, p.AuthorID)
		assert.Equal(t, "hello", p.Title)
	})

	t.Run("unknown_author_is_not_found", func(t *testing.T) {
		m, _ := newTestManager(t)

		_, err := m.CreatePost(ctx, uuid.New(), post.CreatePostParams{Title: "hello", Content: "first"})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestGetPost(t *testing.T) {
	ctx := context.Background()

	t.Run("returns_post_with_comments", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		p, err := m.CreatePost(ctx, alice.ID, post.CreatePostParams{Title: "hello", Content: "first"})
		require.NoError(t, err)

		_, err = store.CreateComment(ctx, database.CreateCommentParams{
			ID:       uuid.New(),
			AuthorID: alice.ID,
			PostID:   p.ID,
			Content:  "nice",
		})
		require.NoError(t, err)

		detail, err := m.GetPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, detail.Post.ID)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "nice", detail.Comments[0].Content)
	})

	t.Run("unknown_post_is_not_found", func(t *testing.T) {
		m, _ := newTestManager(t)

		_, err := m.GetPost(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	alice := seedUser(t, store, "alice")
	p, err := m.CreatePost(ctx, alice.ID, post.CreatePostParams{Title: "hello", Content: "first"})
	require.NoError(t, err)

	updated, err := m.UpdatePost(ctx, alice.ID, p.ID, post.UpdatePostParams{
		Content: util.Some("edited"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Title)
	assert.Equal(t, "edited", updated.Content)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes_post_and_its_comments", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		p, err := m.CreatePost(ctx, alice.ID, post.CreatePostParams{Title: "hello", Content: "first"})
		require.NoError(t, err)
		_, err = store.CreateComment(ctx, database.CreateCommentParams{
			ID:       uuid.New(),
			AuthorID: alice.ID,
			PostID:   p.ID,
			Content:  "nice",
		})
		require.NoError(t, err)

		require.NoError(t, m.DeletePost(ctx, alice.ID, p.ID))
		assert.Empty(t, store.Posts)
		assert.Empty(t, store.Comments)
	})

	t.Run("unknown_post_is_not_found", func(t *testing.T) {
		m, _ := newTestManager(t)

		err := m.DeletePost(ctx, uuid.New(), uuid.New())
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}
