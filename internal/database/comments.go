package database

import (
	"context"
	"errors"
	"time"

	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Comment struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	PostID    uuid.UUID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateCommentParams struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
	PostID   uuid.UUID
	Content  string
}

type UpdateCommentParams struct {
	Content util.Optional[string]
}

const commentColumns = "id, author_id, post_id, content, created_at, updated_at"

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.AuthorID, &c.PostID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) CreateComment(ctx context.Context, params CreateCommentParams) (Comment, error) {
	return scanComment(q.db.QueryRow(ctx, `
		INSERT INTO comments (id, author_id, post_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+commentColumns,
		params.ID, params.AuthorID, params.PostID, params.Content))
}

func (q *Queries) GetCommentByID(ctx context.Context, id uuid.UUID) (Comment, error) {
	c, err := scanComment(q.db.QueryRow(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	return c, err
}

func (q *Queries) UpdateComment(ctx context.Context, id uuid.UUID, params UpdateCommentParams) (Comment, error) {
	c, err := scanComment(q.db.QueryRow(ctx, `
		UPDATE comments
		SET content = COALESCE($2, content), updated_at = now()
		WHERE id = $1
		RETURNING `+commentColumns,
		id, params.Content))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrCommentNotFound
	}
	return c, err
}

func (q *Queries) DeleteComment(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
