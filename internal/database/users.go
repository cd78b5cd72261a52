package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Profile struct {
	UserID    uuid.UUID
	Bio       util.Optional[string]
	AvatarURL util.Optional[string]
	Metadata  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateUserParams struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type UpdateUserParams struct {
	Name  util.Optional[string]
	Email util.Optional[string]
}

type CreateProfileParams struct {
	UserID    uuid.UUID
	Bio       util.Optional[string]
	AvatarURL util.Optional[string]
	Metadata  json.RawMessage
}

type UpdateProfileParams struct {
	Bio       util.Optional[string]
	AvatarURL util.Optional[string]
	Metadata  json.RawMessage
}

const userColumns = "id, name, email, created_at, updated_at"

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx,
		"INSERT INTO users (id, name, email) VALUES ($1, $2, $3) RETURNING "+userColumns,
		params.ID, params.Name, params.Email))
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (q *Queries) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func (q *Queries) UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE($2, name), email = COALESCE($3, email), updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, params.Name, params.Email))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const profileColumns = "user_id, bio, avatar_url, metadata, created_at, updated_at"

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Bio, &p.AvatarURL, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	p, err := scanProfile(q.db.QueryRow(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	return p, err
}

func (q *Queries) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	return scanProfile(q.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, bio, avatar_url, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING `+profileColumns,
		params.UserID, params.Bio, params.AvatarURL, params.Metadata))
}

func (q *Queries) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (Profile, error) {
	p, err := scanProfile(q.db.QueryRow(ctx, `
		UPDATE profiles
		SET bio = COALESCE($2, bio),
		    avatar_url = COALESCE($3, avatar_url),
		    metadata = COALESCE($4, metadata),
		    updated_at = now()
		WHERE user_id = $1
		RETURNING `+profileColumns,
		userID, params.Bio, params.AvatarURL, params.Metadata))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	return p, err
}

func (q *Queries) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]Group, error) {
	rows, err := q.db.Query(ctx, `
		SELECT g.id, g.name, g.description, g.created_by_id, g.created_at, g.updated_at
		FROM groups g
		JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedByID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
