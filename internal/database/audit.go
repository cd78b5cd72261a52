package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

type CreateAuditEventParams struct {
	ID        uuid.UUID
	ActorID   uuid.UUID
	EventType string
	EventData json.RawMessage
}

func (q *Queries) CreateAuditEvent(ctx context.Context, params CreateAuditEventParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO audit_events (id, actor_id, event_type, event_data)
		VALUES ($1, $2, $3, $4)`,
		params.ID, params.ActorID, params.EventType, params.EventData)
	return err
}
