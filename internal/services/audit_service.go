package services

import (
	"context"
	"encoding/json"

	"expensely/internal/logger"
	"expensely/internal/models"
	"expensely/internal/repository"
)

// AuditEvent is a successful action to be kept in the audit trail.
type AuditEvent struct {
	ActorID      string
	Action       models.AuditAction
	ResourceType models.AuditResource
	ResourceID   string
	IPAddress    string
	// Changes lists the fields the action set; nil records none.
	Changes map[string]any
}

// auditService appends events to the audit trail on a best-effort basis.
type auditService struct {
	audits repository.AuditRepository
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(repos *repository.Set) AuditServicer {
	return &auditService{audits: repos.Audit}
}

// Record stores event. The action it describes has already happened, so a
// failure here is logged and swallowed.
func (s *auditService) Record(ctx context.Context, event AuditEvent) {
	entry := &models.AuditLog{
		ActorID:      event.ActorID,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		Changes:      encodeChanges(event),
	}

	if err := s.audits.Append(ctx, entry); err != nil {
		logger.Get().Warnw("audit entry dropped",
			"error", err,
			"actor_id", event.ActorID,
			"action", event.Action,
			"resource_type", event.ResourceType,
			"resource_id", event.ResourceID,
		)
	}
}

func encodeChanges(event AuditEvent) string {
	if len(event.Changes) == 0 {
		return ""
	}
	data, err := json.Marshal(event.Changes)
	if err != nil {
		logger.Get().Warnw("audit changes not encodable", "error", err, "action", event.Action)
		return "{}"
	}
	return string(data)
}
