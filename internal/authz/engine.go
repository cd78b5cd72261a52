// Package authz decides whether a principal may act on a resource. Ownership
// is always resolved from storage; identifiers supplied by the caller are
// never trusted as proof of ownership.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"socialite/internal/apperror"
	"socialite/internal/database"

	"github.com/google/uuid"
)

// ResourceKind is the closed set of resource types the engine can evaluate.
// Adding a kind means adding a case to Authorize.
type ResourceKind string

const (
	KindPost    ResourceKind = "post"
	KindComment ResourceKind = "comment"
	KindGroup   ResourceKind = "group"
)

type Engine struct {
	logger *slog.Logger
	db     database.Store
}

func NewEngine(logger *slog.Logger, db database.Store) Engine {
	return Engine{logger: logger, db: db}
}

// Authorize returns nil if principalID may mutate the given resource, or a
// Forbidden error with the denial reason. An absent resource is reported as
// Forbidden rather than NotFound so a probing caller cannot distinguish
// "doesn't exist" from "exists but isn't yours"; handlers that want 404
// semantics check existence separately.
//
// The read here is advisory: a concurrent mutation can still invalidate the
// answer, and the storage constraints make the subsequent write fail cleanly
// rather than corrupt state.
func (e *Engine) Authorize(ctx context.Context, principalID uuid.UUID, kind ResourceKind, resourceID uuid.UUID) error {
	switch kind {
	case KindPost:
		post, err := e.db.GetPostByID(ctx, resourceID)
		if err != nil {
			if errors.Is(err, database.ErrPostNotFound) {
				return e.deny(principalID, kind, resourceID, "post not found")
			}
			return fmt.Errorf("failed to resolve post owner: %w", err)
		}
		if post.AuthorID != principalID {
			return e.deny(principalID, kind, resourceID, "you can only modify your own posts")
		}
		return nil

	case KindComment:
		comment, err := e.db.GetCommentByID(ctx, resourceID)
		if err != nil {
			if errors.Is(err, database.ErrCommentNotFound) {
				return e.deny(principalID, kind, resourceID, "comment not found")
			}
			return fmt.Errorf("failed to resolve comment owner: %w", err)
		}
		if comment.AuthorID != principalID {
			return e.deny(principalID, kind, resourceID, "you can only modify your own comments")
		}
		return nil

	case KindGroup:
		membership, err := e.db.GetMembership(ctx, resourceID, principalID)
		if err != nil {
			if errors.Is(err, database.ErrMembershipNotFound) {
				return e.deny(principalID, kind, resourceID, "you are not a member of this group")
			}
			return fmt.Errorf("failed to resolve group membership: %w", err)
		}
		if membership.Role != database.RoleOwner {
			return e.deny(principalID, kind, resourceID, "only the group owner can perform this action")
		}
		return nil

	default:
		return fmt.Errorf("unknown resource kind %q", kind)
	}
}

// deny records the refusal before handing the caller the Forbidden error.
// The log line carries the resource coordinates the error message omits.
func (e *Engine) deny(principalID uuid.UUID, kind ResourceKind, resourceID uuid.UUID, reason string) error {
	e.logger.Warn("Authorization denied",
		"principal_id", principalID,
		"kind", kind,
		"resource_id", resourceID,
		"reason", reason,
	)
	return apperror.Forbidden("%s", reason)
}
