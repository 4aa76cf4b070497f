// Package constants defines process-wide constants shared across layers.
package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Context keys used by HTTP middleware.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// Database table names.
const (
	TableAccounts           = "accounts"
	TableFeatureDefinitions = "tier_feature_definitions"
	TableUsageRecords       = "feature_usage_records"
	TableTierHistory        = "tier_history"
	TableAuditLogs          = "audit_logs"
)
