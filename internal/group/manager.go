// Package group implements the group membership lifecycle: creation with its
// owner membership, deletion, renaming and join/leave/remove transitions.
package group

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

type CreateGroupParams struct {
	Name        string
	Description util.Optional[string]
}

type UpdateGroupParams struct {
	Name        util.Optional[string]
	Description util.Optional[string]
}

// Detail is a group with its member list.
type Detail struct {
	Group   database.Group
	Members []database.GroupMember
}

// CreateGroup inserts the group row and the creator's owner membership as one
// transaction; a failure of either write persists nothing. A concurrent
// creator racing on the same name loses via the unique constraint on the
// group name, translated to a Conflict.
func (m *Manager) CreateGroup(ctx context.Context, creatorID uuid.UUID, params CreateGroupParams) (database.Group, error) {
	var created database.Group

	err := m.db.InTx(ctx, func(q database.Querier) error {
		exists, err := q.UserExists(ctx, creatorID)
		if err != nil {
			return fmt.Errorf("failed to check user existence: %w", err)
		}
		if !exists {
			return apperror.NotFound("user with ID %s not found", creatorID)
		}

		created, err = q.CreateGroup(ctx, database.CreateGroupParams{
			ID:          uuid.New(),
			Name:        params.Name,
			Description: params.Description,
			CreatedByID: creatorID,
		})
		if err != nil {
			return database.TranslateConstraint(err)
		}

		if _, err := q.CreateMembership(ctx, database.CreateMembershipParams{
			GroupID: created.ID,
			UserID:  creatorID,
			Role:    database.RoleOwner,
		}); err != nil {
			return database.TranslateConstraint(err)
		}

		return nil
	})
	if err != nil {
		return database.Group{}, err
	}

	m.logger.Info("Group created", "group_id", created.ID, "name", created.Name, "owner_id", creatorID)
	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: creatorID,
		Type:    audit.EventTypeGroupCreate,
		Data:    map[string]any{"group_id": created.ID, "name": created.Name},
	})

	return created, nil
}

// GetGroup returns the group with its member list.
func (m *Manager) GetGroup(ctx context.Context, groupID uuid.UUID) (Detail, error) {
	g, err := m.db.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, database.ErrGroupNotFound) {
			return Detail{}, apperror.NotFound("group with ID %s not found", groupID)
		}
		return Detail{}, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := m.db.ListGroupMembers(ctx, groupID)
	if err != nil {
		return Detail{}, fmt.Errorf("failed to list group members: %w", err)
	}

	return Detail{Group: g, Members: members}, nil
}

// DeleteGroup removes the group; its memberships cascade away with it.
// Callers must have authorized the actor as owner beforehand.
func (m *Manager) DeleteGroup(ctx context.Context, actorID, groupID uuid.UUID) error {
	deleted, err := m.db.DeleteGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if !deleted {
		return apperror.NotFound("group with ID %s not found", groupID)
	}

	m.logger.Info("Group deleted", "group_id", groupID, "actor_id", actorID)
	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: actorID,
		Type:    audit.EventTypeGroupDelete,
		Data:    map[string]any{"group_id": groupID},
	})

	return nil
}

// UpdateGroup applies a rename/description patch. At least one field being
// set is enforced upstream by request validation.
func (m *Manager) UpdateGroup(ctx context.Context, actorID, groupID uuid.UUID, params UpdateGroupParams) (database.Group, error) {
	updated, err := m.db.UpdateGroup(ctx, groupID, database.UpdateGroupParams{
		Name:        params.Name,
		Description: params.Description,
	})
	if err != nil {
		if errors.Is(err, database.ErrGroupNotFound) {
			return database.Group{}, apperror.NotFound("group with ID %s not found", groupID)
		}
		return database.Group{}, database.TranslateConstraint(err)
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: actorID,
		Type:    audit.EventTypeGroupUpdate,
		Data:    map[string]any{"group_id": groupID},
	})

	return updated, nil
}

// JoinGroup adds userID to the group with role member. The existence
// pre-checks short-circuit pointless writes; the membership primary key and
// the foreign keys remain the authoritative arbiters under concurrency.
func (m *Manager) JoinGroup(ctx context.Context, groupID, userID uuid.UUID) (database.Membership, error) {
	var membership database.Membership

	err := m.db.InTx(ctx, func(q database.Querier) error {
		if _, err := q.GetGroupByID(ctx, groupID); err != nil {
			if errors.Is(err, database.ErrGroupNotFound) {
				return apperror.NotFound("group with ID %s not found", groupID)
			}
			return fmt.Errorf("failed to get group: %w", err)
		}

		exists, err := q.UserExists(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user existence: %w", err)
		}
		if !exists {
			return apperror.NotFound("user with ID %s not found", userID)
		}

		if _, err := q.GetMembership(ctx, groupID, userID); err == nil {
			return apperror.Conflict("user %s is already a member of this group", userID)
		} else if !errors.Is(err, database.ErrMembershipNotFound) {
			return fmt.Errorf("failed to get membership: %w", err)
		}

		membership, err = q.CreateMembership(ctx, database.CreateMembershipParams{
			GroupID: groupID,
			UserID:  userID,
			Role:    database.RoleMember,
		})
		if err != nil {
			return database.TranslateConstraint(err)
		}

		return nil
	})
	if err != nil {
		return database.Membership{}, err
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: userID,
		Type:    audit.EventTypeMembershipJoin,
		Data:    map[string]any{"group_id": groupID},
	})

	return membership, nil
}

// LeaveGroup removes the caller's own membership. The owner cannot leave:
// the group would be left without an owner. No ownership-transfer operation
// exists, so the owner's way out is deleting the group.
func (m *Manager) LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) error {
	err := m.db.InTx(ctx, func(q database.Querier) error {
		membership, err := q.GetMembership(ctx, groupID, userID)
		if err != nil {
			if errors.Is(err, database.ErrMembershipNotFound) {
				return apperror.NotFound("user %s is not a member of this group", userID)
			}
			return fmt.Errorf("failed to get membership: %w", err)
		}

		if membership.Role == database.RoleOwner {
			m.logger.Warn("Owner attempted to leave group", "group_id", groupID, "user_id", userID)
			return apperror.Forbidden("group owner cannot leave; delete the group instead")
		}

		if _, err := q.DeleteMembership(ctx, groupID, userID); err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: userID,
		Type:    audit.EventTypeMembershipLeave,
		Data:    map[string]any{"group_id": groupID},
	})

	return nil
}

// RemoveMember removes another user's membership on behalf of a privileged
// actor. The owner's membership is protected.
func (m *Manager) RemoveMember(ctx context.Context, actorID, groupID, userID uuid.UUID) error {
	err := m.db.InTx(ctx, func(q database.Querier) error {
		membership, err := q.GetMembership(ctx, groupID, userID)
		if err != nil {
			if errors.Is(err, database.ErrMembershipNotFound) {
				return apperror.NotFound("user %s is not a member of this group", userID)
			}
			return fmt.Errorf("failed to get membership: %w", err)
		}

		if membership.Role == database.RoleOwner {
			m.logger.Warn("Attempt to remove the group owner", "group_id", groupID, "user_id", userID, "actor_id", actorID)
			return apperror.Forbidden("cannot remove the group owner")
		}

		if _, err := q.DeleteMembership(ctx, groupID, userID); err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: actorID,
		Type:    audit.EventTypeMembershipRemove,
		Data:    map[string]any{"group_id": groupID, "user_id": userID},
	})

	return nil
}
