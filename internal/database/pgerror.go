package database

import (
	"errors"

	"socialite/internal/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes this layer knows how to interpret.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type constraintKey struct {
	code       string
	constraint string
}

// constraintErrors maps a (SQLSTATE, constraint name) pair to the domain
// error it means. Pairs not listed here propagate unchanged; callers treat
// them as unexpected storage failures.
var constraintErrors = map[constraintKey]error{
	{pgUniqueViolation, "groups_name_key"}:           apperror.Conflict("group name already exists"),
	{pgUniqueViolation, "memberships_pkey"}:          apperror.Conflict("already a member of this group"),
	{pgUniqueViolation, "idx_one_owner_per_group"}:   apperror.Conflict("group already has an owner"),
	{pgUniqueViolation, "users_email_key"}:           apperror.Conflict("email already in use"),
	{pgForeignKeyViolation, "memberships_group_id_fkey"}: apperror.NotFound("group not found"),
	{pgForeignKeyViolation, "memberships_user_id_fkey"}:  apperror.NotFound("user not found"),
	{pgForeignKeyViolation, "comments_post_id_fkey"}:     apperror.NotFound("post not found"),
	{pgForeignKeyViolation, "comments_author_id_fkey"}:   apperror.NotFound("user not found"),
	{pgForeignKeyViolation, "posts_author_id_fkey"}:      apperror.NotFound("user not found"),
	{pgForeignKeyViolation, "groups_created_by_id_fkey"}: apperror.NotFound("user not found"),
	{pgForeignKeyViolation, "profiles_user_id_fkey"}:     apperror.NotFound("user not found"),
}

// TranslateConstraint maps a storage constraint violation to its domain
// error. The pre-checks in the managers can race with concurrent writes; the
// translated constraint error is the authoritative outcome of that race.
func TranslateConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped, ok := constraintErrors[constraintKey{pgErr.Code, pgErr.ConstraintName}]; ok {
			return mapped
		}
	}
	return err
}
