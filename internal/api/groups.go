package api

import (
	"socialite/internal/apperror"
	"socialite/internal/authz"
	"socialite/internal/database"
	"socialite/internal/group"
	"socialite/internal/util"
	"socialite/internal/validator"

	"github.com/gofiber/fiber/v2"
)

type createGroupRequest struct {
	Name        string                `json:"name" validate:"required,group_name"`
	Description util.Optional[string] `json:"description"`
}

type updateGroupRequest struct {
	Name        util.Optional[string] `json:"name"`
	Description util.Optional[string] `json:"description"`
}

func (r updateGroupRequest) validate(v *validator.Validator) error {
	if !r.Name.IsSet && !r.Description.IsSet {
		return apperror.Validation("at least one of name, description must be set")
	}
	if r.Name.IsSet {
		return v.ValidateField("name", r.Name.Val, "group_name")
	}
	return nil
}

func groupJSON(g database.Group) fiber.Map {
	return fiber.Map{
		"id":            g.ID,
		"name":          g.Name,
		"description":   g.Description,
		"created_by_id": g.CreatedByID,
		"created_at":    g.CreatedAt,
		"updated_at":    g.UpdatedAt,
	}
}

func memberJSON(m database.GroupMember) fiber.Map {
	return fiber.Map{
		"user_id":   m.UserID,
		"name":      m.Name,
		"role":      m.Role,
		"joined_at": m.JoinedAt,
	}
}

func membershipJSON(m database.Membership) fiber.Map {
	return fiber.Map{
		"group_id":  m.GroupID,
		"user_id":   m.UserID,
		"role":      m.Role,
		"joined_at": m.JoinedAt,
	}
}

func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return h.fail(c, err)
	}

	g, err := h.groupManager.CreateGroup(c.Context(), Principal(c), group.CreateGroupParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(groupJSON(g))
}

func (h *Handler) GetGroup(c *fiber.Ctx) error {
	groupID, err := parseUUIDParam(c, "groupId")
	if err != nil {
		return h.fail(c, err)
	}

	detail, err := h.groupManager.GetGroup(c.Context(), groupID)
	if err != nil {
		return h.fail(c, err)
	}

	members := make([]fiber.Map, 0, len(detail.Members))
	for _, m := range detail.Members {
		members = append(members, memberJSON(m))
	}
	body := groupJSON(detail.Group)
	body["members"] = members
	return c.JSON(body)
}

// UpdateGroup requires the owner role; membership alone is not enough.
func (h *Handler) UpdateGroup(c *fiber.Ctx) error {
	groupID, err := parseUUIDParam(c, "groupId")
	if err != nil {
		return h.fail(c, err)
	}
	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := req.validate(h.validator); err != nil {
		return h.fail(c, err)
	}

	principal := Principal(c)
	if err := h.authzEngine.Authorize(c.Context(), principal, authz.KindGroup, groupID); err != nil {
		return h.fail(c, err)
	}

	g, err := h.groupManager.UpdateGroup(c.Context(), principal, groupID, group.UpdateGroupParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(groupJSON(g))
}

func (h *Handler) DeleteGroup(c *fiber.Ctx) error {
	groupID, err := parseUUIDParam(c, "groupId")
	if err != nil {
		return h.fail(c, err)
	}

	principal := Principal(c)
	if err := h.authzEngine.Authorize(c.Context(), principal, authz.KindGroup, groupID); err != nil {
		return h.fail(c, err)
	}

	if err := h.groupManager.DeleteGroup(c.Context(), principal, groupID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) JoinGroup(c *fiber.Ctx) error {
	groupID, err := parseUUIDParam(c, "groupId")
	if err != nil {
		return h.fail(c, err)
	}

	m, err := h.groupManager.JoinGroup(c.Context(), groupID, Principal(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(membershipJSON(m))
}

func (h *Handler) LeaveGroup(c *fiber.Ctx) error {
	groupID, err := parseUUIDParam(c, "groupId")
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.groupManager.LeaveGroup(c.Context(), groupID, Principal(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveMember requires the owner role on the group; the target is any other
// member. Removing the owner themselves is rejected below the HTTP layer.
func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	groupID, err := parseUUIDParam(c, "groupId")
	if err != nil {
		return h.fail(c, err)
	}
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return h.fail(c, err)
	}

	principal := Principal(c)
	if err := h.authzEngine.Authorize(c.Context(), principal, authz.KindGroup, groupID); err != nil {
		return h.fail(c, err)
	}

	if err := h.groupManager.RemoveMember(c.Context(), principal, groupID, userID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
