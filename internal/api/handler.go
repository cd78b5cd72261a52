// Package api is the HTTP surface: thin Fiber handlers over the managers.
// All invariants live below this layer.
package api

import (
	"log/slog"

	"socialite/internal/authz"
	"socialite/internal/comment"
	"socialite/internal/database"
	"socialite/internal/group"
	"socialite/internal/post"
	"socialite/internal/session"
	"socialite/internal/user"
	"socialite/internal/validator"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	logger         *slog.Logger
	db             *database.Database
	validator      *validator.Validator
	sessions       *session.Store
	authzEngine    *authz.Engine
	userManager    *user.Manager
	postManager    *post.Manager
	commentManager *comment.Manager
	groupManager   *group.Manager
}

func NewHandler(
	logger *slog.Logger,
	db *database.Database,
	v *validator.Validator,
	sessions *session.Store,
	authzEngine *authz.Engine,
	userManager *user.Manager,
	postManager *post.Manager,
	commentManager *comment.Manager,
	groupManager *group.Manager,
) *Handler {
	return &Handler{
		logger:         logger,
		db:             db,
		validator:      v,
		sessions:       sessions,
		authzEngine:    authzEngine,
		userManager:    userManager,
		postManager:    postManager,
		commentManager: commentManager,
		groupManager:   groupManager,
	}
}

// RegisterRoutes mounts all routes. Mutations on existing posts, comments
// and groups pass through the authorization engine before reaching a
// manager.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)

	users := app.Group("/users")
	users.Post("/", h.CreateUser)
	users.Get("/me", h.RequireAuth, h.GetCurrentUser)
	users.Patch("/me", h.RequireAuth, h.UpdateCurrentUser)
	users.Delete("/me", h.RequireAuth, h.DeleteCurrentUser)
	users.Post("/me/profile", h.RequireAuth, h.CreateProfile)
	users.Patch("/me/profile", h.RequireAuth, h.UpdateProfile)
	users.Get("/:userId", h.GetUser)

	posts := app.Group("/posts")
	posts.Post("/", h.RequireAuth, h.CreatePost)
	posts.Get("/:postId", h.GetPost)
	posts.Patch("/:postId", h.RequireAuth, h.UpdatePost)
	posts.Delete("/:postId", h.RequireAuth, h.DeletePost)
	posts.Post("/:postId/comments", h.RequireAuth, h.CreateComment)

	comments := app.Group("/comments")
	comments.Get("/:commentId", h.GetComment)
	comments.Patch("/:commentId", h.RequireAuth, h.UpdateComment)
	comments.Delete("/:commentId", h.RequireAuth, h.DeleteComment)

	groups := app.Group("/groups")
	groups.Post("/", h.RequireAuth, h.CreateGroup)
	groups.Get("/:groupId", h.GetGroup)
	groups.Patch("/:groupId", h.RequireAuth, h.UpdateGroup)
	groups.Delete("/:groupId", h.RequireAuth, h.DeleteGroup)
	groups.Post("/:groupId/join", h.RequireAuth, h.JoinGroup)
	groups.Delete("/:groupId/leave", h.RequireAuth, h.LeaveGroup)
	groups.Delete("/:groupId/members/:userId", h.RequireAuth, h.RemoveMember)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		h.logger.Error("Database ping failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
