package models

import (
	"time"

	"gorm.io/datatypes"

	"stockpilot/internal/shared/constants"
)

// AuditLogModel represents the database persistence model for entitlement
// audit entries. Details carries the decision payload as JSON.
type AuditLogModel struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"not null;index:idx_user_audit"`
	Action     string `gorm:"not null;size:50;index:idx_action"`
	Resource   string `gorm:"size:50"`
	Details    datatypes.JSON
	Success    bool      `gorm:"not null"`
	OccurredAt time.Time `gorm:"not null;index:idx_occurred_at"`
	CreatedAt  time.Time
}

// TableName specifies the table name for GORM
func (AuditLogModel) TableName() string {
	return constants.TableAuditLogs
}
