package tier

import (
	"fmt"
	"time"
)

// FeatureDefinition is the reference entry declaring whether a feature is
// enabled for a plan and what its numeric limit is. One row per
// (plan, feature) pair; a nil limit means unlimited. Immutable reference
// data, replaced only by reseeding.
type FeatureDefinition struct {
	id          uint
	plan        Plan
	feature     Feature
	limit       *uint
	enabled     bool
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewFeatureDefinition creates a new feature definition.
func NewFeatureDefinition(plan Plan, feature Feature, limit *uint, enabled bool, description string) (*FeatureDefinition, error) {
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid subscription plan: %s", plan)
	}
	if !feature.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, feature)
	}

	now := time.Now().UTC()
	return &FeatureDefinition{
		plan:        plan,
		feature:     feature,
		limit:       limit,
		enabled:     enabled,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructFeatureDefinition reconstructs a feature definition from persistence.
func ReconstructFeatureDefinition(
	id uint,
	plan Plan,
	feature Feature,
	limit *uint,
	enabled bool,
	description string,
	createdAt, updatedAt time.Time,
) (*FeatureDefinition, error) {
	if id == 0 {
		return nil, fmt.Errorf("feature definition ID cannot be zero")
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid subscription plan: %s", plan)
	}
	if !feature.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, feature)
	}

	return &FeatureDefinition{
		id:          id,
		plan:        plan,
		feature:     feature,
		limit:       limit,
		enabled:     enabled,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the definition ID.
func (d *FeatureDefinition) ID() uint { return d.id }

// Plan returns the plan the definition belongs to.
func (d *FeatureDefinition) Plan() Plan { return d.plan }

// Feature returns the feature name.
func (d *FeatureDefinition) Feature() Feature { return d.feature }

// Limit returns the numeric limit, nil meaning unlimited.
func (d *FeatureDefinition) Limit() *uint { return d.limit }

// Enabled reports whether the feature is enabled for the plan.
func (d *FeatureDefinition) Enabled() bool { return d.enabled }

// Description returns the human-readable description.
func (d *FeatureDefinition) Description() string { return d.description }

// CreatedAt returns the creation timestamp.
func (d *FeatureDefinition) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last update timestamp.
func (d *FeatureDefinition) UpdatedAt() time.Time { return d.updatedAt }

// Grant returns the definition as a resolved Grant value.
func (d *FeatureDefinition) Grant() Grant {
	return Grant{Limit: d.limit, Enabled: d.enabled}
}

// SetID sets the ID after persistence. Returns an error if already set.
func (d *FeatureDefinition) SetID(id uint) error {
	if d.id != 0 {
		return fmt.Errorf("feature definition ID already set")
	}
	if id == 0 {
		return fmt.Errorf("feature definition ID cannot be zero")
	}
	d.id = id
	return nil
}
