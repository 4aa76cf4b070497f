package models

import (
	"time"

	"stockpilot/internal/shared/constants"
)

// FeatureDefinitionModel represents the database persistence model for the
// per-plan feature catalog. One row per (plan, feature); a NULL limit means
// unlimited.
type FeatureDefinitionModel struct {
	ID          uint   `gorm:"primarykey"`
	Plan        string `gorm:"not null;size:20;uniqueIndex:idx_plan_feature,priority:1"`
	Feature     string `gorm:"not null;size:50;uniqueIndex:idx_plan_feature,priority:2"`
	UsageLimit  *uint  `gorm:"column:usage_limit"`
	IsEnabled   bool   `gorm:"not null;default:false"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (FeatureDefinitionModel) TableName() string {
	return constants.TableFeatureDefinitions
}
