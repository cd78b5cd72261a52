package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"socialite/internal/database"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeUserCreate       EventType = "user.create"
	EventTypeUserUpdate       EventType = "user.update"
	EventTypeUserDelete       EventType = "user.delete"
	EventTypeGroupCreate      EventType = "group.create"
	EventTypeGroupUpdate      EventType = "group.update"
	EventTypeGroupDelete      EventType = "group.delete"
	EventTypeMembershipJoin   EventType = "membership.join"
	EventTypeMembershipLeave  EventType = "membership.leave"
	EventTypeMembershipRemove EventType = "membership.remove"
	EventTypePostCreate       EventType = "post.create"
	EventTypePostUpdate       EventType = "post.update"
	EventTypePostDelete       EventType = "post.delete"
	EventTypeCommentCreate    EventType = "comment.create"
	EventTypeCommentUpdate    EventType = "comment.update"
	EventTypeCommentDelete    EventType = "comment.delete"
)

// Auditor records who did what. Logging an event is best-effort: a failed
// audit write never fails the operation that produced it.
type Auditor struct {
	logger *slog.Logger
	db     database.Store
}

func NewAuditor(logger *slog.Logger, db database.Store) Auditor {
	return Auditor{logger: logger, db: db}
}

type LogEventParams struct {
	ActorID uuid.UUID
	Type    EventType
	Data    map[string]any
}

func (a *Auditor) LogEvent(ctx context.Context, params LogEventParams) {
	data, err := json.Marshal(params.Data)
	if err != nil {
		a.logger.Error("Failed to marshal audit event data", "type", params.Type, "error", err)
		return
	}

	if err := a.db.CreateAuditEvent(ctx, database.CreateAuditEventParams{
		ID:        uuid.New(),
		ActorID:   params.ActorID,
		EventType: string(params.Type),
		EventData: data,
	}); err != nil {
		a.logger.Error("Failed to create audit event", "type", params.Type, "error", err)
	}
}
