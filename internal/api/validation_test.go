package api

import (
	"strings"
	"testing"

	"socialite/internal/apperror"
	"socialite/internal/util"
	"socialite/internal/validator"

	"github.com/stretchr/testify/assert"
)

func TestUpdateUserRequestValidation(t *testing.T) {
	v := validator.New()

	t.Run("empty_patch_is_rejected", func(t *testing.T) {
		err := updateUserRequest{}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("invalid_email_is_rejected", func(t *testing.T) {
		err := updateUserRequest{Email: util.Some("not-an-email")}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("empty_name_is_rejected", func(t *testing.T) {
		err := updateUserRequest{Name: util.Some("")}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("single_field_patch_passes", func(t *testing.T) {
		assert.NoError(t, updateUserRequest{Name: util.Some("alicia")}.validate(v))
		assert.NoError(t, updateUserRequest{Email: util.Some("alicia@example.com")}.validate(v))
	})
}

func TestUpdateGroupRequestValidation(t *testing.T) {
	v := validator.New()

	t.Run("empty_patch_is_rejected", func(t *testing.T) {
		err := updateGroupRequest{}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("invalid_name_is_rejected", func(t *testing.T) {
		err := updateGroupRequest{Name: util.Some("-bad name")}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("description_only_patch_passes", func(t *testing.T) {
		assert.NoError(t, updateGroupRequest{Description: util.Some("new blurb")}.validate(v))
	})

	t.Run("valid_rename_passes", func(t *testing.T) {
		assert.NoError(t, updateGroupRequest{Name: util.Some("reading circle")}.validate(v))
	})
}

func TestUpdatePostRequestValidation(t *testing.T) {
	v := validator.New()

	t.Run("empty_patch_is_rejected", func(t *testing.T) {
		err := updatePostRequest{}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("overlong_title_is_rejected", func(t *testing.T) {
		err := updatePostRequest{Title: util.Some(strings.Repeat("x", 201))}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("empty_content_is_rejected", func(t *testing.T) {
		err := updatePostRequest{Content: util.Some("")}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("content_only_patch_passes", func(t *testing.T) {
		assert.NoError(t, updatePostRequest{Content: util.Some("edited")}.validate(v))
	})
}

func TestUpdateCommentRequestValidation(t *testing.T) {
	v := validator.New()

	t.Run("empty_patch_is_rejected", func(t *testing.T) {
		err := updateCommentRequest{}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("empty_content_is_rejected", func(t *testing.T) {
		err := updateCommentRequest{Content: util.Some("")}.validate(v)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("set_content_passes", func(t *testing.T) {
		assert.NoError(t, updateCommentRequest{Content: util.Some("edited")}.validate(v))
	})
}
