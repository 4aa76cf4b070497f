package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/infrastructure/persistence/models"
	"stockpilot/internal/shared/biztime"
	"stockpilot/internal/shared/logger"
)

// UsageRepositoryImpl persists usage counters. Counter mutations go through
// a single conditional UPDATE so the limit check and the increment are one
// atomic statement; the application layer never does read-modify-write.
type UsageRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageRepository(db *gorm.DB, logger logger.Interface) tier.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *UsageRepositoryImpl) GetByUser(ctx context.Context, userID uint) ([]*tier.UsageRecord, error) {
	var recordModels []*models.UsageRecordModel

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("feature ASC").
		Find(&recordModels).Error; err != nil {
		r.logger.Errorw("failed to get usage records by user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get usage records: %w", err)
	}

	entities := make([]*tier.UsageRecord, 0, len(recordModels))
	for _, m := range recordModels {
		entity, err := usageToEntity(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map usage record %d: %w", m.ID, err)
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

func (r *UsageRepositoryImpl) Get(ctx context.Context, userID uint, feature tier.Feature) (*tier.UsageRecord, error) {
	var model models.UsageRecordModel

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND feature = ?", userID, feature.String()).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get usage record", "user_id", userID, "feature", feature, "error", err)
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}

	return usageToEntity(&model)
}

func (r *UsageRepositoryImpl) ApplyDelta(ctx context.Context, userID uint, feature tier.Feature, delta int, limit *uint) (uint, error) {
	now := biztime.NowUTC()

	if err := r.ensureRecord(ctx, userID, feature, limit, now); err != nil {
		return 0, err
	}

	if delta == 0 {
		return r.currentUsage(ctx, userID, feature)
	}

	if delta > 0 {
		// The limit check lives in the WHERE clause: zero rows affected
		// means the increment would overshoot.
		result := r.db.WithContext(ctx).
			Model(&models.UsageRecordModel{}).
			Where("user_id = ? AND feature = ?", userID, feature.String()).
			Where("? IS NULL OR current_usage + ? <= ?", limit, delta, limit).
			Updates(map[string]interface{}{
				"current_usage": gorm.Expr("current_usage + ?", delta),
				"usage_limit":   limit,
				"updated_at":    now,
			})
		if result.Error != nil {
			r.logger.Errorw("failed to increment usage counter",
				"user_id", userID,
				"feature", feature,
				"delta", delta,
				"error", result.Error,
			)
			return 0, fmt.Errorf("failed to increment usage counter: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			current, err := r.currentUsage(ctx, userID, feature)
			if err != nil {
				return 0, err
			}
			if limit == nil {
				// Drivers counting changed rows rather than matched
				// rows can report zero for a write that left every
				// column as it was. With no limit there is nothing
				// to reject.
				return current, nil
			}
			return current, fmt.Errorf("%w: %s (%d/%d)", tier.ErrUsageLimitExceeded, feature, current, *limit)
		}
	} else {
		dec := uint(-delta)
		// Decrements clamp at zero instead of failing.
		result := r.db.WithContext(ctx).
			Model(&models.UsageRecordModel{}).
			Where("user_id = ? AND feature = ?", userID, feature.String()).
			Updates(map[string]interface{}{
				"current_usage": gorm.Expr("CASE WHEN current_usage < ? THEN 0 ELSE current_usage - ? END", dec, dec),
				"usage_limit":   limit,
				"updated_at":    now,
			})
		if result.Error != nil {
			r.logger.Errorw("failed to decrement usage counter",
				"user_id", userID,
				"feature", feature,
				"delta", delta,
				"error", result.Error,
			)
			return 0, fmt.Errorf("failed to decrement usage counter: %w", result.Error)
		}
	}

	return r.currentUsage(ctx, userID, feature)
}

func (r *UsageRepositoryImpl) Reset(ctx context.Context, userID uint, feature tier.Feature, at time.Time) error {
	if err := r.ensureRecord(ctx, userID, feature, nil, at); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.UsageRecordModel{}).
		Where("user_id = ? AND feature = ?", userID, feature.String()).
		Updates(map[string]interface{}{
			"current_usage": 0,
			"last_reset_at": at,
			"updated_at":    at,
		}).Error; err != nil {
		r.logger.Errorw("failed to reset usage counter", "user_id", userID, "feature", feature, "error", err)
		return fmt.Errorf("failed to reset usage counter: %w", err)
	}

	return nil
}

// ensureRecord inserts the zero-counter row when the user consumes a
// feature for the first time. Concurrent first consumers race on the
// unique (user_id, feature) index; the loser's insert is a no-op.
func (r *UsageRepositoryImpl) ensureRecord(ctx context.Context, userID uint, feature tier.Feature, limit *uint, now time.Time) error {
	model := &models.UsageRecordModel{
		UserID:      userID,
		Feature:     feature.String(),
		UsageLimit:  limit,
		LastResetAt: now,
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "feature"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		r.logger.Errorw("failed to ensure usage record", "user_id", userID, "feature", feature, "error", err)
		return fmt.Errorf("failed to ensure usage record: %w", err)
	}

	return nil
}

func (r *UsageRepositoryImpl) currentUsage(ctx context.Context, userID uint, feature tier.Feature) (uint, error) {
	var usage uint
	if err := r.db.WithContext(ctx).
		Model(&models.UsageRecordModel{}).
		Where("user_id = ? AND feature = ?", userID, feature.String()).
		Pluck("current_usage", &usage).Error; err != nil {
		return 0, fmt.Errorf("failed to read usage counter: %w", err)
	}
	return usage, nil
}

func usageToEntity(m *models.UsageRecordModel) (*tier.UsageRecord, error) {
	return tier.ReconstructUsageRecord(
		m.ID,
		m.UserID,
		tier.Feature(m.Feature),
		m.CurrentUsage,
		m.UsageLimit,
		m.LastResetAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
