// Package seeds loads the default feature catalog into the database.
package seeds

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogEntry struct {
	Feature     string `yaml:"feature"`
	Limit       *uint  `yaml:"limit"`
	Enabled     bool   `yaml:"enabled"`
	Description string `yaml:"description"`
}

// SeedFeatureCatalog upserts the embedded default catalog. Idempotent;
// safe to run on every startup. Existing rows are overwritten so catalog
// changes ship with the binary.
func SeedFeatureCatalog(ctx context.Context, repo tier.FeatureDefinitionRepository, log logger.Interface) error {
	var catalog map[string][]catalogEntry
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		return fmt.Errorf("failed to parse embedded catalog: %w", err)
	}

	seeded := 0
	for planName, entries := range catalog {
		plan, err := tier.ParsePlan(planName)
		if err != nil {
			return fmt.Errorf("embedded catalog has unknown plan %q: %w", planName, err)
		}

		for _, entry := range entries {
			feature, err := tier.ParseFeature(entry.Feature)
			if err != nil {
				return fmt.Errorf("embedded catalog has unknown feature %q: %w", entry.Feature, err)
			}

			def, err := tier.NewFeatureDefinition(plan, feature, entry.Limit, entry.Enabled, entry.Description)
			if err != nil {
				return fmt.Errorf("invalid catalog entry %s/%s: %w", planName, entry.Feature, err)
			}

			if err := repo.Upsert(ctx, def); err != nil {
				return fmt.Errorf("failed to seed %s/%s: %w", planName, entry.Feature, err)
			}
			seeded++
		}
	}

	log.Infow("feature catalog seeded", "definitions", seeded)
	return nil
}
