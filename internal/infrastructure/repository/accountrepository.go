package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/infrastructure/persistence/models"
	"stockpilot/internal/shared/logger"
)

type AccountRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewAccountRepository(db *gorm.DB, logger logger.Interface) account.Repository {
	return &AccountRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *AccountRepositoryImpl) GetByID(ctx context.Context, id uint) (*account.Account, error) {
	var model models.AccountModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get account by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	entity, err := accountToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map account model to entity", "id", id, "error", err)
		return nil, fmt.Errorf("failed to map account: %w", err)
	}

	return entity, nil
}

func (r *AccountRepositoryImpl) Update(ctx context.Context, a *account.Account) error {
	updates := map[string]interface{}{
		"subscription_plan":       a.Plan().String(),
		"subscription_expires_at": a.ExpiresAt(),
		"is_active":               a.Active(),
		"updated_at":              a.UpdatedAt(),
	}

	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", a.ID()).
		Updates(updates)
	if result.Error != nil {
		r.logger.Errorw("failed to update account", "id", a.ID(), "error", result.Error)
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepositoryImpl) FindDowngradeCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*account.Account, error) {
	var accountModels []*models.AccountModel

	if err := r.db.WithContext(ctx).
		Where("subscription_plan = ? AND is_active = ? AND subscription_expires_at IS NOT NULL AND subscription_expires_at < ?",
			tier.PlanPremium.String(), true, cutoff).
		Order("subscription_expires_at ASC").
		Limit(limit).
		Find(&accountModels).Error; err != nil {
		r.logger.Errorw("failed to find downgrade candidates", "cutoff", cutoff, "error", err)
		return nil, fmt.Errorf("failed to find downgrade candidates: %w", err)
	}

	return accountsToEntities(accountModels)
}

func (r *AccountRepositoryImpl) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*account.Account, error) {
	var accountModels []*models.AccountModel

	if err := r.db.WithContext(ctx).
		Where("subscription_plan = ? AND is_active = ? AND subscription_expires_at > ? AND subscription_expires_at <= ?",
			tier.PlanPremium.String(), true, from, to).
		Order("subscription_expires_at ASC").
		Find(&accountModels).Error; err != nil {
		r.logger.Errorw("failed to find expiring accounts", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to find expiring accounts: %w", err)
	}

	return accountsToEntities(accountModels)
}

func accountToEntity(m *models.AccountModel) (*account.Account, error) {
	return account.ReconstructAccount(
		m.ID,
		m.Email,
		m.Name,
		tier.Plan(m.SubscriptionPlan),
		m.SubscriptionExpiresAt,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func accountsToEntities(accountModels []*models.AccountModel) ([]*account.Account, error) {
	entities := make([]*account.Account, 0, len(accountModels))
	for _, m := range accountModels {
		entity, err := accountToEntity(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map account %d: %w", m.ID, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
