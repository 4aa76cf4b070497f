package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stockpilot/internal/domain/audit"
	"stockpilot/internal/infrastructure/persistence/models"
	"stockpilot/internal/shared/logger"
)

// AuditLogRepositoryImpl persists audit entries. Implements audit.Sink.
type AuditLogRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewAuditLogRepository(db *gorm.DB, logger logger.Interface) audit.Sink {
	return &AuditLogRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *AuditLogRepositoryImpl) Log(ctx context.Context, e audit.Entry) error {
	var details datatypes.JSON
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		details = raw
	}

	model := &models.AuditLogModel{
		UserID:     e.UserID,
		Action:     e.Action,
		Resource:   e.Resource,
		Details:    details,
		Success:    e.Success,
		OccurredAt: e.OccurredAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to write audit log",
			"user_id", e.UserID,
			"action", e.Action,
			"error", err,
		)
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}
