package database

import (
	"context"
	"errors"
	"time"

	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Post struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreatePostParams struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
	Title    string
	Content  string
}

type UpdatePostParams struct {
	Title   util.Optional[string]
	Content util.Optional[string]
}

const postColumns = "id, author_id, title, content, created_at, updated_at"

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) CreatePost(ctx context.Context, params CreatePostParams) (Post, error) {
	return scanPost(q.db.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+postColumns,
		params.ID, params.AuthorID, params.Title, params.Content))
}

func (q *Queries) GetPostByID(ctx context.Context, id uuid.UUID) (Post, error) {
	p, err := scanPost(q.db.QueryRow(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	return p, err
}

func (q *Queries) UpdatePost(ctx context.Context, id uuid.UUID, params UpdatePostParams) (Post, error) {
	p, err := scanPost(q.db.QueryRow(ctx, `
		UPDATE posts
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+postColumns,
		id, params.Title, params.Content))
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	return p, err
}

func (q *Queries) DeletePost(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) PostExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func (q *Queries) ListPostComments(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	rows, err := q.db.Query(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE post_id = $1 ORDER BY created_at", postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.PostID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
