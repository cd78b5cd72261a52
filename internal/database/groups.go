package database

import (
	"context"
	"errors"
	"time"

	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Role of a user within a group. The "exactly one owner per group" invariant
// is enforced by the partial unique index idx_one_owner_per_group, not by
// application checks.
type Role string

const (
	RoleMember Role = "member"
	RoleOwner  Role = "owner"
)

type Group struct {
	ID          uuid.UUID
	Name        string
	Description util.Optional[string]
	CreatedByID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership links one user to one group. Identity is (GroupID, UserID).
type Membership struct {
	GroupID  uuid.UUID
	UserID   uuid.UUID
	Role     Role
	JoinedAt time.Time
}

// GroupMember is a membership joined with the member's display name.
type GroupMember struct {
	UserID   uuid.UUID
	Name     string
	Role     Role
	JoinedAt time.Time
}

type CreateGroupParams struct {
	ID          uuid.UUID
	Name        string
	Description util.Optional[string]
	CreatedByID uuid.UUID
}

type UpdateGroupParams struct {
	Name        util.Optional[string]
	Description util.Optional[string]
}

type CreateMembershipParams struct {
	GroupID uuid.UUID
	UserID  uuid.UUID
	Role    Role
}

const groupColumns = "id, name, description, created_by_id, created_at, updated_at"

func scanGroup(row pgx.Row) (Group, error) {
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedByID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (q *Queries) CreateGroup(ctx context.Context, params CreateGroupParams) (Group, error) {
	return scanGroup(q.db.QueryRow(ctx, `
		INSERT INTO groups (id, name, description, created_by_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+groupColumns,
		params.ID, params.Name, params.Description, params.CreatedByID))
}

func (q *Queries) GetGroupByID(ctx context.Context, id uuid.UUID) (Group, error) {
	g, err := scanGroup(q.db.QueryRow(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrGroupNotFound
	}
	return g, err
}

func (q *Queries) UpdateGroup(ctx context.Context, id uuid.UUID, params UpdateGroupParams) (Group, error) {
	g, err := scanGroup(q.db.QueryRow(ctx, `
		UPDATE groups
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+groupColumns,
		id, params.Name, params.Description))
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrGroupNotFound
	}
	return g, err
}

// DeleteGroup removes the group row; memberships go with it via ON DELETE
// CASCADE.
func (q *Queries) DeleteGroup(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, "DELETE FROM groups WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const membershipColumns = "group_id, user_id, role, joined_at"

func scanMembership(row pgx.Row) (Membership, error) {
	var m Membership
	err := row.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt)
	return m, err
}

func (q *Queries) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (Membership, error) {
	m, err := scanMembership(q.db.QueryRow(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE group_id = $1 AND user_id = $2",
		groupID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Membership{}, ErrMembershipNotFound
	}
	return m, err
}

func (q *Queries) CreateMembership(ctx context.Context, params CreateMembershipParams) (Membership, error) {
	return scanMembership(q.db.QueryRow(ctx, `
		INSERT INTO memberships (group_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING `+membershipColumns,
		params.GroupID, params.UserID, params.Role))
}

func (q *Queries) DeleteMembership(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx,
		"DELETE FROM memberships WHERE group_id = $1 AND user_id = $2", groupID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountGroupOwners exists for verification; control flow never depends on it.
func (q *Queries) CountGroupOwners(ctx context.Context, groupID uuid.UUID) (int, error) {
	var count int
	err := q.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM memberships WHERE group_id = $1 AND role = 'owner'",
		groupID).Scan(&count)
	return count, err
}

func (q *Queries) ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]GroupMember, error) {
	rows, err := q.db.Query(ctx, `
		SELECT u.id, u.name, m.role, m.joined_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []GroupMember
	for rows.Next() {
		var m GroupMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
