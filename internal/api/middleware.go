package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"socialite/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	principalKey = "principalID"
	tokenKey     = "sessionToken"
)

// RequireAuth resolves the bearer token to a user ID and stores it in the
// request locals. Requests without a valid session get 401.
func (h *Handler) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing or malformed authorization header",
		})
	}

	userID, err := h.sessions.Resolve(c.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired session",
			})
		}
		h.logger.Error("Failed to resolve session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	c.Locals(principalKey, userID)
	c.Locals(tokenKey, token)
	return c.Next()
}

// Principal returns the authenticated user ID set by RequireAuth.
func Principal(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(principalKey).(uuid.UUID)
	return id
}

func sessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}

// RequestLogger logs one line per request with latency and status.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("Request handled",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}
