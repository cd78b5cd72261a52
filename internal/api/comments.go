package api

import (
	"socialite/internal/apperror"
	"socialite/internal/authz"
	"socialite/internal/comment"
	"socialite/internal/database"
	"socialite/internal/util"
	"socialite/internal/validator"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

type updateCommentRequest struct {
	Content util.Optional[string] `json:"content"`
}

func (r updateCommentRequest) validate(v *validator.Validator) error {
	if !r.Content.IsSet {
		return apperror.Validation("content must be set")
	}
	return v.ValidateField("content", r.Content.Val, "min=1")
}

func commentJSON(cm database.Comment) fiber.Map {
	return fiber.Map{
		"id":         cm.ID,
		"author_id":  cm.AuthorID,
		"post_id":    cm.PostID,
		"content":    cm.Content,
		"created_at": cm.CreatedAt,
		"updated_at": cm.UpdatedAt,
	}
}

func (h *Handler) CreateComment(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId")
	if err != nil {
		return h.fail(c, err)
	}
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	cm, err := h.commentManager.CreateComment(c.Context(), Principal(c), comment.CreateCommentParams{
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(commentJSON(cm))
}

func (h *Handler) GetComment(c *fiber.Ctx) error {
	commentID, err := parseUUIDParam(c, "commentId")
	if err != nil {
		return h.fail(c, err)
	}

	cm, err := h.commentManager.GetComment(c.Context(), commentID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(commentJSON(cm))
}

func (h *Handler) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseUUIDParam(c, "commentId")
	if err != nil {
		return h.fail(c, err)
	}
	var req updateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.validate(h.validator); err != nil {
		return h.fail(c, err)
	}

	principal := Principal(c)
	if err := h.authzEngine.Authorize(c.Context(), principal, authz.KindComment, commentID); err != nil {
		return h.fail(c, err)
	}

	cm, err := h.commentManager.UpdateComment(c.Context(), principal, commentID, comment.UpdateCommentParams{
		Content: req.Content,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(commentJSON(cm))
}

func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseUUIDParam(c, "commentId")
	if err != nil {
		return h.fail(c, err)
	}

	principal := Principal(c)
	if err := h.authzEngine.Authorize(c.Context(), principal, authz.KindComment, commentID); err != nil {
		return h.fail(c, err)
	}

	if err := h.commentManager.DeleteComment(c.Context(), principal, commentID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
