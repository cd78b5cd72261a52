package user

import (
	"context"
	"encoding/json"
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

type CreateUserParams struct {
	Name  string
	Email string
}

type UpdateUserParams struct {
	Name  util.Optional[string]
	Email util.Optional[string]
}

type ProfileParams struct {
	Bio       util.Optional[string]
	AvatarURL util.Optional[string]
	Metadata  json.RawMessage
}

// Detail is a user with profile and group memberships attached.
type Detail struct {
	User    database.User
	Profile util.Optional[database.Profile]
	Groups  []database.Group
}

func (m *Manager) CreateUser(ctx context.Context, params CreateUserParams) (database.User, error) {
	created, err := m.db.CreateUser(ctx, database.CreateUserParams{
		ID:    uuid.New(),
		Name:  params.Name,
		Email: params.Email,
	})
	if err != nil {
		return database.User{}, database.TranslateConstraint(err)
	}

	m.logger.Info("User registered", "user_id", created.ID)
	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: created.ID,
		Type:    audit.EventTypeUserCreate,
		Data:    map[string]any{"user_id": created.ID},
	})

	return created, nil
}

func (m *Manager) GetUser(ctx context.Context, userID uuid.UUID) (Detail, error) {
	u, err := m.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Detail{}, apperror.NotFound("user with ID %s not found", userID)
		}
		return Detail{}, fmt.Errorf("failed to get user: %w", err)
	}

	detail := Detail{User: u}

	profile, err := m.db.GetProfile(ctx, userID)
	switch {
	case err == nil:
		detail.Profile = util.Some(profile)
	case errors.Is(err, database.ErrProfileNotFound):
		// no profile yet
	default:
		return Detail{}, fmt.Errorf("failed to get profile: %w", err)
	}

	groups, err := m.db.ListUserGroups(ctx, userID)
	if err != nil {
		return Detail{}, fmt.Errorf("failed to list user groups: %w", err)
	}
	detail.Groups = groups

	return detail, nil
}

func (m *Manager) UpdateUser(ctx context.Context, userID uuid.UUID, params UpdateUserParams) (database.User, error) {
	updated, err := m.db.UpdateUser(ctx, userID, database.UpdateUserParams{
		Name:  params.Name,
		Email: params.Email,
	})
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return database.User{}, apperror.NotFound("user with ID %s not found", userID)
		}
		return database.User{}, database.TranslateConstraint(err)
	}

	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: userID,
		Type:    audit.EventTypeUserUpdate,
		Data:    map[string]any{"user_id": userID},
	})

	return updated, nil
}

// DeleteUser removes the user; posts, comments, memberships and the profile
// cascade away at the storage layer.
func (m *Manager) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	deleted, err := m.db.DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return apperror.NotFound("user with ID %s not found", userID)
	}

	m.logger.Info("User deleted", "user_id", userID)
	m.auditor.LogEvent(ctx, audit.LogEventParams{
		ActorID: userID,
		Type:    audit.EventTypeUserDelete,
		Data:    map[string]any{"user_id": userID},
	})

	return nil
}

func (m *Manager) CreateProfile(ctx context.Context, userID uuid.UUID, params ProfileParams) (database.Profile, error) {
	profile, err := m.db.CreateProfile(ctx, database.CreateProfileParams{
		UserID:    userID,
		Bio:       params.Bio,
		AvatarURL: params.AvatarURL,
		Metadata:  params.Metadata,
	})
	if err != nil {
		return database.Profile{}, database.TranslateConstraint(err)
	}
	return profile, nil
}

// UpdateProfile patches the profile. Metadata is replaced wholesale, not
// deep-merged.
func (m *Manager) UpdateProfile(ctx context.Context, userID uuid.UUID, params ProfileParams) (database.Profile, error) {
	profile, err := m.db.UpdateProfile(ctx, userID, database.UpdateProfileParams{
		Bio:       params.Bio,
		AvatarURL: params.AvatarURL,
		Metadata:  params.Metadata,
	})
	if err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			return database.Profile{}, apperror.NotFound("profile for user %s not found", userID)
		}
		return database.Profile{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}
