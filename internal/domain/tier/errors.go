package tier

import "errors"

var (
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrFeatureNotAvailable = errors.New("feature not available for plan")
	ErrUsageLimitExceeded  = errors.New("usage limit exceeded")
	ErrDefinitionNotFound  = errors.New("feature definition not found")
)
