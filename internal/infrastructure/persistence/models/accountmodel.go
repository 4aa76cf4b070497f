// Package models holds the GORM persistence models. They are the
// anti-corruption layer between the domain and the database; repositories
// convert between them and domain entities.
package models

import (
	"time"

	"stockpilot/internal/shared/constants"
)

// AccountModel represents the database persistence model for subscription
// accounts. The identity fields (email, name) are owned by the user
// subsystem; this engine only writes the subscription columns.
type AccountModel struct {
	ID                    uint   `gorm:"primarykey"`
	Email                 string `gorm:"uniqueIndex;not null;size:255"`
	Name                  string `gorm:"size:100"`
	SubscriptionPlan      string `gorm:"not null;size:20;default:free;index:idx_plan"`
	SubscriptionExpiresAt *time.Time `gorm:"index:idx_expires_at"`
	IsActive              bool       `gorm:"not null;default:true"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName specifies the table name for GORM
func (AccountModel) TableName() string {
	return constants.TableAccounts
}
