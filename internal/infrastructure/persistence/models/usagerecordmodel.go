package models

import (
	"time"

	"stockpilot/internal/shared/constants"
)

// UsageRecordModel represents the database persistence model for per-user
// feature usage counters. CurrentUsage is only mutated through conditional
// updates so concurrent increments cannot overshoot a limit.
type UsageRecordModel struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"not null;uniqueIndex:idx_user_feature,priority:1"`
	Feature      string `gorm:"not null;size:50;uniqueIndex:idx_user_feature,priority:2"`
	CurrentUsage uint   `gorm:"not null;default:0"`
	UsageLimit   *uint  `gorm:"column:usage_limit"`
	LastResetAt  time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (UsageRecordModel) TableName() string {
	return constants.TableUsageRecords
}
