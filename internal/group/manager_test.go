package group_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"socialite/internal/apperror"
	"socialite/internal/audit"
	"socialite/internal/database"
	"socialite/internal/database/databasetest"
	"socialite/internal/group"
	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (group.Manager, *databasetest.Store) {
	t.Helper()
	store := databasetest.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewAuditor(logger, store)
	return group.NewManager(logger, store, &auditor), store
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

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_group_with_owner_membership", func(t *testing.T) {
		m, store := newTestManager(t)
		creator := seedUser(t, store, "alice")

		g, err := m.CreateGroup(ctx, creator.ID, group.CreateGroupParams{
			Name:        "book club",
			Description: util.Some("weekly reads"),
		})
		require.NoError(t, err)
		assert.Equal(t, "book club", g.Name)
		assert.Equal(t, creator.ID, g.CreatedByID)

		membership, err := store.GetMembership(ctx, g.ID, creator.ID)
		require.NoError(t, err)
		assert.Equal(t, database.RoleOwner, membership.Role)

		owners, err := store.CountGroupOwners(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, owners)
	})

	t.Run("duplicate_name_is_conflict", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")

		_, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		_, err = m.CreateGroup(ctx, bob.ID, group.CreateGroupParams{Name: "book club"})
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("unknown_creator_is_not_found", func(t *testing.T) {
		m, _ := newTestManager(t)

		_, err := m.CreateGroup(ctx, uuid.New(), group.CreateGroupParams{Name: "ghost town"})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("failed_create_persists_nothing", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")

		_, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		_, err = m.CreateGroup(ctx, bob.ID, group.CreateGroupParams{Name: "book club"})
		require.Error(t, err)

		// Only the first group row and its single owner membership exist.
		assert.Len(t, store.Groups, 1)
		assert.Len(t, store.Memberships, 1)
	})
}

func TestGetGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("returns_group_with_members", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")

		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)
		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)

		detail, err := m.GetGroup(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, g.ID, detail.Group.ID)
		assert.Len(t, detail.Members, 2)
	})

	t.Run("unknown_group_is_not_found", func(t *testing.T) {
		m, _ := newTestManager(t)

		_, err := m.GetGroup(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestUpdateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("renames_group", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		updated, err := m.UpdateGroup(ctx, alice.ID, g.ID, group.UpdateGroupParams{
			Name: util.Some("reading circle"),
		})
		require.NoError(t, err)
		assert.Equal(t, "reading circle", updated.Name)
	})

	t.Run("rename_to_taken_name_is_conflict", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		_, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)
		g2, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "chess club"})
		require.NoError(t, err)

		_, err = m.UpdateGroup(ctx, alice.ID, g2.ID, group.UpdateGroupParams{
			Name: util.Some("book club"),
		})
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("unknown_group_is_not_found", func(t *testing.T) {
		m, _ := newTestManager(t)

		_, err := m.UpdateGroup(ctx, uuid.New(), uuid.New(), group.UpdateGroupParams{
			Name: util.Some("anything"),
		})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestDeleteGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes_group_and_memberships", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)
		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)

		require.NoError(t, m.DeleteGroup(ctx, alice.ID, g.ID))
		assert.Empty(t, store.Groups)
		assert.Empty(t, store.Memberships)
	})

	t.Run("unknown_group_is_not_found", func(t *testing.T) {
		m, _ := newTestManager(t)

		err := m.DeleteGroup(ctx, uuid.New(), uuid.New())
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestJoinGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("adds_member_role", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		membership, err := m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, database.RoleMember, membership.Role)
	})

	t.Run("joining_twice_is_conflict", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)
		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("owner_joining_own_group_is_conflict", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		_, err = m.JoinGroup(ctx, g.ID, alice.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("unknown_group_is_not_found", func(t *testing.T) {
		m, store := newTestManager(t)
		bob := seedUser(t, store, "bob")

		_, err := m.JoinGroup(ctx, uuid.New(), bob.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("unknown_user_is_not_found", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		_, err = m.JoinGroup(ctx, g.ID, uuid.New())
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("rejoining_after_leaving_succeeds", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)
		require.NoError(t, m.LeaveGroup(ctx, g.ID, bob.ID))

		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)
	})
}

func TestLeaveGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("member_leaves", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)
		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)

		require.NoError(t, m.LeaveGroup(ctx, g.ID, bob.ID))

		_, err = store.GetMembership(ctx, g.ID, bob.ID)
		assert.ErrorIs(t, err, database.ErrMembershipNotFound)
	})

	t.Run("owner_cannot_leave", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		err = m.LeaveGroup(ctx, g.ID, alice.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsForbidden(err))

		// The owner membership is still intact.
		membership, err := store.GetMembership(ctx, g.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, database.RoleOwner, membership.Role)
	})

	t.Run("non_member_is_not_found", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		err = m.LeaveGroup(ctx, g.ID, bob.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("removes_member", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)
		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)

		require.NoError(t, m.RemoveMember(ctx, alice.ID, g.ID, bob.ID))

		_, err = store.GetMembership(ctx, g.ID, bob.ID)
		assert.ErrorIs(t, err, database.ErrMembershipNotFound)
	})

	t.Run("owner_membership_is_protected", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		err = m.RemoveMember(ctx, alice.ID, g.ID, alice.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("absent_member_is_not_found", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)

		err = m.RemoveMember(ctx, alice.ID, g.ID, bob.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("removed_member_can_rejoin", func(t *testing.T) {
		m, store := newTestManager(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
		require.NoError(t, err)
		_, err = m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)
		require.NoError(t, m.RemoveMember(ctx, alice.ID, g.ID, bob.ID))

		membership, err := m.JoinGroup(ctx, g.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, database.RoleMember, membership.Role)
	})
}

func TestOwnerProtectionIsLogged(t *testing.T) {
	ctx := context.Background()
	store := databasetest.NewStore()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	auditor := audit.NewAuditor(logger, store)
	m := group.NewManager(logger, store, &auditor)

	alice := seedUser(t, store, "alice")
	g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
	require.NoError(t, err)

	err = m.LeaveGroup(ctx, g.ID, alice.ID)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Owner attempted to leave group")
}

// One group always has exactly one owner, whatever sequence of operations
// runs against it.
func TestOwnerInvariant(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")

	g, err := m.CreateGroup(ctx, alice.ID, group.CreateGroupParams{Name: "book club"})
	require.NoError(t, err)

	_, err = m.JoinGroup(ctx, g.ID, bob.ID)
	require.NoError(t, err)
	_, err = m.JoinGroup(ctx, g.ID, carol.ID)
	require.NoError(t, err)
	require.NoError(t, m.LeaveGroup(ctx, g.ID, carol.ID))
	require.NoError(t, m.RemoveMember(ctx, alice.ID, g.ID, bob.ID))
	_ = m.LeaveGroup(ctx, g.ID, alice.ID)

	owners, err := store.CountGroupOwners(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, owners)

	// A second owner row is rejected by the partial unique index even if the
	// role check were bypassed.
	_, err = store.CreateMembership(ctx, database.CreateMembershipParams{
		GroupID: g.ID,
		UserID:  bob.ID,
		Role:    database.RoleOwner,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(database.TranslateConstraint(err)))
}
