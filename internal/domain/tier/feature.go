package tier

import "fmt"

// Feature identifies a capability or resource class subject to an enable
// flag and an optional numeric limit. The set is closed: an unknown feature
// name resolves to "not available" rather than falling through loosely typed
// maps.
type Feature string

const (
	FeatureProducts      Feature = "products"
	FeatureCategories    Feature = "categories"
	FeatureImportBatch   Feature = "import_batch"
	FeatureNotifications Feature = "notifications"
	FeatureAnalytics     Feature = "analytics"
	FeatureExport        Feature = "export"
)

// KnownFeatures lists every feature the engine recognizes.
var KnownFeatures = []Feature{
	FeatureProducts,
	FeatureCategories,
	FeatureImportBatch,
	FeatureNotifications,
	FeatureAnalytics,
	FeatureExport,
}

var knownFeatureSet = func() map[Feature]bool {
	m := make(map[Feature]bool, len(KnownFeatures))
	for _, f := range KnownFeatures {
		m[f] = true
	}
	return m
}()

// IsValid reports whether the feature name is recognized.
func (f Feature) IsValid() bool {
	return knownFeatureSet[f]
}

// String returns the feature name as a string.
func (f Feature) String() string {
	return string(f)
}

// ParseFeature parses a feature name string.
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownFeature, s)
	}
	return f, nil
}

// Grant is the resolved entitlement of a plan for a single feature.
// A nil Limit means unlimited.
type Grant struct {
	Limit   *uint
	Enabled bool
}

// Unlimited reports whether the grant is enabled with no numeric cap.
func (g Grant) Unlimited() bool {
	return g.Enabled && g.Limit == nil
}
