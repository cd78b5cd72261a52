package database

import (
	"errors"
	"fmt"
	"testing"

	"socialite/internal/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateConstraint(t *testing.T) {
	t.Run("unique_violations_become_conflicts", func(t *testing.T) {
		for _, constraint := range []string{
			"groups_name_key",
			"memberships_pkey",
			"idx_one_owner_per_group",
			"users_email_key",
		} {
			err := TranslateConstraint(&pgconn.PgError{Code: "23505", ConstraintName: constraint})
			assert.True(t, apperror.IsConflict(err), "constraint %s", constraint)
		}
	})

	t.Run("foreign_key_violations_become_not_found", func(t *testing.T) {
		for _, constraint := range []string{
			"memberships_group_id_fkey",
			"memberships_user_id_fkey",
			"comments_post_id_fkey",
			"comments_author_id_fkey",
			"posts_author_id_fkey",
			"groups_created_by_id_fkey",
			"profiles_user_id_fkey",
		} {
			err := TranslateConstraint(&pgconn.PgError{Code: "23503", ConstraintName: constraint})
			assert.True(t, apperror.IsNotFound(err), "constraint %s", constraint)
		}
	})

	t.Run("wrapped_pg_errors_are_still_translated", func(t *testing.T) {
		inner := &pgconn.PgError{Code: "23505", ConstraintName: "groups_name_key"}
		err := TranslateConstraint(fmt.Errorf("insert failed: %w", inner))
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("unmapped_constraint_passes_through", func(t *testing.T) {
		in := &pgconn.PgError{Code: "23505", ConstraintName: "some_other_idx"}
		out := TranslateConstraint(in)
		assert.Same(t, in, out.(*pgconn.PgError))
	})

	t.Run("unmapped_code_passes_through", func(t *testing.T) {
		// Not-null violation on a known table is not a business conflict.
		in := &pgconn.PgError{Code: "23502", ConstraintName: "groups_name_key"}
		out := TranslateConstraint(in)
		assert.False(t, apperror.IsConflict(out))
		assert.False(t, apperror.IsNotFound(out))
	})

	t.Run("plain_errors_pass_through", func(t *testing.T) {
		in := errors.New("connection reset")
		assert.Equal(t, in, TranslateConstraint(in))
	})

	t.Run("nil_stays_nil", func(t *testing.T) {
		assert.NoError(t, TranslateConstraint(nil))
	})
}
