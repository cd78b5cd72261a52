package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"socialite/internal/apperror"
	"socialite/internal/audit"
	"socialite/internal/database"
	"socialite/internal/util"

	"github.com/google/uuid"
)

type Manager struct {
	logger  *slog.Logger
	db      database.Store
	auditor *audit.Auditor
}

func NewManager(logger *slog.Logger, db database.Store, auditor *audit.Auditor) Manager {
	return Manager{logger: logger, db: db, auditor: auditor}
}

type CreatePostParams struct {
	Title   string
	Content string
}

type UpdatePostParams struct {
	Title   util.Optional[string]
	Content util.Optional[string]
}

// Detail is a post with its comments attached.
type Detail struct {
	Post     database.Post
	Comments []database.Comment
}

// CreatePost inserts a post for authorID. The author existence pre-check
// avoids a pointless write; the foreign key covers the race where the user
// vanishes in between.
func (m *Manager) CreatePost(ctx context.Context, authorID uuid.UUID, params CreatePostParams) (database.Post, error) {
	exists, err := m.db.UserExists(ctx, authorID)
	if err != nil {
		return database.Post{}, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return database.Post{}, apperror.NotFound("user with ID %s not found", authorID)
	}

	created, err := m.db.CreatePost(ctx, database.CreatePostParams{
		ID:       uuid.New(),
		AuthorID: authorID,
		Title:    params.Title,
		Content:  params.Content,
	})
	if err != nil {
		return database.Post{}, database.TranslateConstraint(err)
	}

	m.logger.Info("Post created", "post_id", created.ID, "author_id", authorID)
	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: authorID,
		Type:    audit.EventTypePostCreate,
		Data:    map[string]any{"post_id": created.ID},
	})

	return created, nil
}

func (m *Manager) GetPost(ctx context.Context, postID uuid.UUID) (Detail, error) {
	p, err := m.db.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return Detail{}, apperror.NotFound("post with ID %s not found", postID)
		}
		return Detail{}, fmt.Errorf("failed to get post: %w", err)
	}

	comments, err := m.db.ListPostComments(ctx, postID)
	if err != nil {
		return Detail{}, fmt.Errorf("failed to list post comments: %w", err)
	}

	return Detail{Post: p, Comments: comments}, nil
}

func (m *Manager) UpdatePost(ctx context.Context, actorID, postID uuid.UUID, params UpdatePostParams) (database.Post, error) {
	updated, err := m.db.UpdatePost(ctx, postID, database.UpdatePostParams{
		Title:   params.Title,
		Content: params.Content,
	})
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return database.Post{}, apperror.NotFound("post with ID %s not found", postID)
		}
		return database.Post{}, fmt.Errorf("failed to update post: %w", err)
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: actorID,
		Type:    audit.EventTypePostUpdate,
		Data:    map[string]any{"post_id": postID},
	})

	return updated, nil
}

func (m *Manager) DeletePost(ctx context.Context, actorID, postID uuid.UUID) error {
	deleted, err := m.db.DeletePost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if !deleted {
		return apperror.NotFound("post with ID %s not found", postID)
	}

	m.logger.Info("Post deleted", "post_id", postID, "actor_id", actorID)
	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: actorID,
		Type:    audit.EventTypePostDelete,
		Data:    map[string]any{"post_id": postID},
	})

	return nil
}
