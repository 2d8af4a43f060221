package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"partnerhub/internal/model"
)

type auditStore interface {
	Insert(ctx context.Context, e *model.AuditLogEntry) error
	ListByEntity(ctx context.Context, entityKind string, entityID, limit int) ([]model.AuditLogEntry, error)
}

// AuditService appends admin-mutation records. Failures here are logged and
// never abort the primary mutation.
type AuditService struct {
	store  auditStore
	logger *zap.Logger
}

func NewAuditService(store auditStore, logger *zap.Logger) *AuditService {
	return &AuditService{store: store, logger: logger}
}

// Record appends one entry. Before/after snapshots may be nil.
func (s *AuditService) Record(ctx context.Context, caller Caller, action, entityKind string, entityID int, before, after any, message string) {
	entry := model.AuditLogEntry{
		ActorID:    caller.LeaderID,
		ActorEmail: caller.Email,
		Action:     action,
		EntityKind: entityKind,
		EntityID:   entityID,
		Message:    message,
	}

	if before != nil {
		b, err := json.Marshal(before)
		if err != nil {
			s.logger.Error("Failed to marshal audit before snapshot", zap.Error(err))
		} else {
			entry.Before = b
		}
	}
	if after != nil {
		b, err := json.Marshal(after)
		if err != nil {
			s.logger.Error("Failed to marshal audit after snapshot", zap.Error(err))
		} else {
			entry.After = b
		}
	}

	if err := s.store.Insert(ctx, &entry); err != nil {
		s.logger.Error("Failed to write audit entry",
			zap.String("action", action),
			zap.String("entity_kind", entityKind),
			zap.Int("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// ListByEntity returns the newest entries for an entity. Admin only.
func (s *AuditService) ListByEntity(ctx context.Context, caller Caller, entityKind string, entityID, limit int) ([]model.AuditLogEntry, error) {
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.store.ListByEntity(ctx, entityKind, entityID, limit)
}
