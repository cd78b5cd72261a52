package api

import (
	"encoding/json"

	"socialite/internal/apperror"
	"socialite/internal/database"
	"socialite/internal/user"
	"socialite/internal/util"
	"socialite/internal/validator"

	"github.com/gofiber/fiber/v2"
)

type createUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type updateUserRequest struct {
	Name  util.Optional[string] `json:"name"`
	Email util.Optional[string] `json:"email"`
}

// Set fields carry the same constraints the registration path enforces; an
// all-unset patch is rejected rather than accepted as a no-op.
func (r updateUserRequest) validate(v *validator.Validator) error {
	if !r.Name.IsSet && !r.Email.IsSet {
		return apperror.Validation("at least one of name, email must be set")
	}
	if r.Name.IsSet {
		if err := v.ValidateField("name", r.Name.Val, "min=1,max=100"); err != nil {
			return err
		}
	}
	if r.Email.IsSet {
		if err := v.ValidateField("email", r.Email.Val, "email"); err != nil {
			return err
		}
	}
	return nil
}

type profileRequest struct {
	Bio       util.Optional[string] `json:"bio"`
	AvatarURL util.Optional[string] `json:"avatar_url"`
	Metadata  json.RawMessage       `json:"metadata"`
}

func userJSON(u database.User) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

func profileJSON(p database.Profile) fiber.Map {
	return fiber.Map{
		"user_id":    p.UserID,
		"bio":        p.Bio,
		"avatar_url": p.AvatarURL,
		"metadata":   p.Metadata,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

func userDetailJSON(d user.Detail) fiber.Map {
	groups := make([]fiber.Map, 0, len(d.Groups))
	for _, g := range d.Groups {
		groups = append(groups, groupJSON(g))
	}
	body := userJSON(d.User)
	body["groups"] = groups
	if d.Profile.IsSet {
		body["profile"] = profileJSON(d.Profile.Val)
	} else {
		body["profile"] = nil
	}
	return body
}

// CreateUser registers a user and opens a session so the account is usable
// immediately; the token comes back once and is never stored server-side in
// plain form elsewhere.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	u, err := h.userManager.CreateUser(c.Context(), user.CreateUserParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return h.fail(c, err)
	}

	token, err := h.sessions.Create(c.Context(), u.ID)
	if err != nil {
		h.logger.Error("Failed to create session after registration", "error", err, "user_id", u.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	body := userJSON(u)
	body["token"] = token
	return c.Status(fiber.StatusCreated).JSON(body)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return h.fail(c, err)
	}

	detail, err := h.userManager.GetUser(c.Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(userDetailJSON(detail))
}

func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	detail, err := h.userManager.GetUser(c.Context(), Principal(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(userDetailJSON(detail))
}

func (h *Handler) UpdateCurrentUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.validate(h.validator); err != nil {
		return h.fail(c, err)
	}

	u, err := h.userManager.UpdateUser(c.Context(), Principal(c), user.UpdateUserParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(userJSON(u))
}

func (h *Handler) DeleteCurrentUser(c *fiber.Ctx) error {
	if err := h.userManager.DeleteUser(c.Context(), Principal(c)); err != nil {
		return h.fail(c, err)
	}
	if err := h.sessions.Revoke(c.Context(), sessionToken(c)); err != nil {
		h.logger.Error("Failed to revoke session", "error", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) CreateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	p, err := h.userManager.CreateProfile(c.Context(), Principal(c), user.ProfileParams{
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profileJSON(p))
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	p, err := h.userManager.UpdateProfile(c.Context(), Principal(c), user.ProfileParams{
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(profileJSON(p))
}
