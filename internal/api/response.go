package api

import (
	"socialite/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// fail maps domain errors onto HTTP statuses. Anything unclassified is a
// 500 with a generic body; the detail goes to the log only.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case apperror.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case apperror.IsForbidden(err):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case apperror.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case apperror.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		h.logger.Error("Unhandled error", "error", err, "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid %s", name)
	}
	return id, nil
}
