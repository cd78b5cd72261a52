package comment

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

type CreateCommentParams struct {
	PostID  uuid.UUID
	Content string
}

type UpdateCommentParams struct {
	Content util.Optional[string]
}

func (m *Manager) CreateComment(ctx context.Context, authorID uuid.UUID, params CreateCommentParams) (database.Comment, error) {
	exists, err := m.db.UserExists(ctx, authorID)
	if err != nil {
		return database.Comment{}, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return database.Comment{}, apperror.NotFound("user with ID %s not found", authorID)
	}

	exists, err = m.db.PostExists(ctx, params.PostID)
	if err != nil {
		return database.Comment{}, fmt.Errorf("failed to check post existence: %w", err)
	}
	if !exists {
		return database.Comment{}, apperror.NotFound("post with ID %s not found", params.PostID)
	}

	created, err := m.db.CreateComment(ctx, database.CreateCommentParams{
		ID:       uuid.New(),
		AuthorID: authorID,
		PostID:   params.PostID,
		Content:  params.Content,
	})
	if err != nil {
		// The post can vanish between the pre-check and the insert; the
		// foreign key reports that as NotFound.
		return database.Comment{}, database.TranslateConstraint(err)
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: authorID,
		Type:    audit.EventTypeCommentCreate,
		Data:    map[string]any{"comment_id": created.ID, "post_id": params.PostID},
	})

	return created, nil
}

func (m *Manager) GetComment(ctx context.Context, commentID uuid.UUID) (database.Comment, error) {
	c, err := m.db.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, database.ErrCommentNotFound) {
			return database.Comment{}, apperror.NotFound("comment with ID %s not found", commentID)
		}
		return database.Comment{}, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

func (m *Manager) UpdateComment(ctx context.Context, actorID, commentID uuid.UUID, params UpdateCommentParams) (database.Comment, error) {
	updated, err := m.db.UpdateComment(ctx, commentID, database.UpdateCommentParams{
		Content: params.Content,
	})
	if err != nil {
		if errors.Is(err, database.ErrCommentNotFound) {
			return database.Comment{}, apperror.NotFound("comment with ID %s not found", commentID)
		}
		return database.Comment{}, fmt.Errorf("failed to update comment: %w", err)
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: actorID,
		Type:    audit.EventTypeCommentUpdate,
		Data:    map[string]any{"comment_id": commentID},
	})

	return updated, nil
}

func (m *Manager) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error {
	deleted, err := m.db.DeleteComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if !deleted {
		return apperror.NotFound("comment with ID %s not found", commentID)
	}

	m.logger.Info("Comment deleted", "comment_id", commentID, "actor_id", actorID)
	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: actorID,
		Type:    audit.EventTypeCommentDelete,
		Data:    map[string]any{"comment_id": commentID},
	})

	return nil
}
