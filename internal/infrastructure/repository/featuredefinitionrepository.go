package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/infrastructure/persistence/models"
	"stockpilot/internal/shared/logger"
)

type FeatureDefinitionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewFeatureDefinitionRepository(db *gorm.DB, logger logger.Interface) tier.FeatureDefinitionRepository {
	return &FeatureDefinitionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *FeatureDefinitionRepositoryImpl) GetByPlan(ctx context.Context, plan tier.Plan) ([]*tier.FeatureDefinition, error) {
	var defModels []*models.FeatureDefinitionModel

	if err := r.db.WithContext(ctx).
		Where("plan = ?", plan.String()).
		Order("feature ASC").
		Find(&defModels).Error; err != nil {
		r.logger.Errorw("failed to get feature definitions by plan", "plan", plan, "error", err)
		return nil, fmt.Errorf("failed to get feature definitions: %w", err)
	}

	entities := make([]*tier.FeatureDefinition, 0, len(defModels))
	for _, m := range defModels {
		entity, err := definitionToEntity(m)
		if err != nil {
			return nil, fmt.Errorf("failed to map feature definition %d: %w", m.ID, err)
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

func (r *FeatureDefinitionRepositoryImpl) Get(ctx context.Context, plan tier.Plan, feature tier.Feature) (*tier.FeatureDefinition, error) {
	var model models.FeatureDefinitionModel

	if err := r.db.WithContext(ctx).
		Where("plan = ? AND feature = ?", plan.String(), feature.String()).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get feature definition", "plan", plan, "feature", feature, "error", err)
		return nil, fmt.Errorf("failed to get feature definition: %w", err)
	}

	return definitionToEntity(&model)
}

func (r *FeatureDefinitionRepositoryImpl) Upsert(ctx context.Context, def *tier.FeatureDefinition) error {
	model := &models.FeatureDefinitionModel{
		Plan:        def.Plan().String(),
		Feature:     def.Feature().String(),
		UsageLimit:  def.Limit(),
		IsEnabled:   def.Enabled(),
		Description: def.Description(),
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan"}, {Name: "feature"}},
			DoUpdates: clause.AssignmentColumns([]string{"usage_limit", "is_enabled", "description", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		r.logger.Errorw("failed to upsert feature definition",
			"plan", def.Plan(),
			"feature", def.Feature(),
			"error", err,
		)
		return fmt.Errorf("failed to upsert feature definition: %w", err)
	}

	if def.ID() == 0 && model.ID != 0 {
		if err := def.SetID(model.ID); err != nil {
			return fmt.Errorf("failed to set feature definition ID: %w", err)
		}
	}

	return nil
}

func definitionToEntity(m *models.FeatureDefinitionModel) (*tier.FeatureDefinition, error) {
	return tier.ReconstructFeatureDefinition(
		m.ID,
		tier.Plan(m.Plan),
		tier.Feature(m.Feature),
		m.UsageLimit,
		m.IsEnabled,
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
