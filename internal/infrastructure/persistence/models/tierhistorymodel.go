package models

import (
	"time"

	"stockpilot/internal/shared/constants"
)

// TierHistoryModel represents the database persistence model for the
// append-only plan change log.
type TierHistoryModel struct {
	ID            uint      `gorm:"primarykey"`
	UserID        uint      `gorm:"not null;index:idx_user_history"`
	PreviousPlan  string    `gorm:"not null;size:20"`
	NewPlan       string    `gorm:"not null;size:20"`
	ChangeReason  string    `gorm:"not null;size:20"`
	EffectiveDate time.Time `gorm:"not null;index:idx_effective_date"`
	Notes         string    `gorm:"size:500"`
	CreatedAt     time.Time
}

// TableName specifies the table name for GORM
func (TierHistoryModel) TableName() string {
	return constants.TableTierHistory
}
