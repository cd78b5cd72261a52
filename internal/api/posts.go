package api

import (
	"socialite/internal/apperror"
	"socialite/internal/authz"
	"socialite/internal/database"
	"socialite/internal/post"
	"socialite/internal/util"
	"socialite/internal/validator"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required,min=1"`
}

type updatePostRequest struct {
	Title   util.Optional[string] `json:"title"`
	Content util.Optional[string] `json:"content"`
}

func (r updatePostRequest) validate(v *validator.Validator) error {
	if !r.Title.IsSet && !r.Content.IsSet {
		return apperror.Validation("at least one of title, content must be set")
	}
	if r.Title.IsSet {
		if err := v.ValidateField("title", r.Title.Val, "min=1,max=200"); err != nil {
			return err
		}
	}
	if r.Content.IsSet {
		if err := v.ValidateField("content", r.Content.Val, "min=1"); err != nil {
			return err
		}
	}
	return nil
}

func postJSON(p database.Post) fiber.Map {
	return fiber.Map{
		"id":         p.ID,
		"author_id":  p.AuthorID,
		"title":      p.Title,
		"content":    p.Content,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

func (h *Handler) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	p, err := h.postManager.CreatePost(c.Context(), Principal(c), post.CreatePostParams{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(postJSON(p))
}

func (h *Handler) GetPost(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId")
	if err != nil {
		return h.fail(c, err)
	}

	detail, err := h.postManager.GetPost(c.Context(), postID)
	if err != nil {
		return h.fail(c, err)
	}

	comments := make([]fiber.Map, 0, len(detail.Comments))
	for _, cm := range detail.Comments {
		comments = append(comments, commentJSON(cm))
	}
	body := postJSON(detail.Post)
	body["comments"] = comments
	return c.JSON(body)
}

func (h *Handler) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId")
	if err != nil {
		return h.fail(c, err)
	}
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.validate(h.validator); err != nil {
		return h.fail(c, err)
	}

	principal := Principal(c)
	if err := h.authzEngine.Authorize(c.Context(), principal, authz.KindPost, postID); err != nil {
		return h.fail(c, err)
	}

	p, err := h.postManager.UpdatePost(c.Context(), principal, postID, post.UpdatePostParams{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(postJSON(p))
}

func (h *Handler) DeletePost(c *fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "postId")
	if err != nil {
		return h.fail(c, err)
	}

	principal := Principal(c)
	if err := h.authzEngine.Authorize(c.Context(), principal, authz.KindPost, postID); err != nil {
		return h.fail(c, err)
	}

	if err := h.postManager.DeletePost(c.Context(), principal, postID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
