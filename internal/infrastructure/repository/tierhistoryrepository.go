package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/infrastructure/persistence/models"
	"stockpilot/internal/shared/logger"
)

type TierHistoryRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewTierHistoryRepository(db *gorm.DB, logger logger.Interface) tier.HistoryRepository {
	return &TierHistoryRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *TierHistoryRepositoryImpl) Append(ctx context.Context, h *tier.History) error {
	model := &models.TierHistoryModel{
		UserID:        h.UserID(),
		PreviousPlan:  h.PreviousPlan().String(),
		NewPlan:       h.NewPlan().String(),
		ChangeReason:  string(h.ChangeReason()),
		EffectiveDate: h.EffectiveDate(),
		Notes:         h.Notes(),
		CreatedAt:     h.CreatedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append tier history",
			"user_id", h.UserID(),
			"error", err,
		)
		return fmt.Errorf("failed to append tier history: %w", err)
	}

	return nil
}

func (r *TierHistoryRepositoryImpl) ListByUser(ctx context.Context, userID uint, limit int) ([]*tier.History, error) {
	var historyModels []*models.TierHistoryModel

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("effective_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&historyModels).Error; err != nil {
		r.logger.Errorw("failed to list tier history", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list tier history: %w", err)
	}

	entities := make([]*tier.History, 0, len(historyModels))
	for _, m := range historyModels {
		entity, err := tier.ReconstructHistory(
			m.ID,
			m.UserID,
			tier.Plan(m.PreviousPlan),
			tier.Plan(m.NewPlan),
			tier.ChangeReason(m.ChangeReason),
			m.EffectiveDate,
			m.Notes,
			m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to map tier history %d: %w", m.ID, err)
		}
		entities = append(entities, entity)
	}

	return entities, nil
}
