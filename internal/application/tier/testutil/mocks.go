// Package testutil provides mock implementations for testing the tier
// application layer.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/notification"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

// MockAccountRepository is an in-memory account.Repository for testing.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uint]*account.Account

	// Error injection
	GetError    error
	UpdateError error
	FindError   error

	// UpdateErrorFor fails Update only for the given user IDs,
	// for per-account failure isolation tests.
	UpdateErrorFor map[uint]error

	UpdateCalls int
}

// NewMockAccountRepository creates a new mock account repository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts:       make(map[uint]*account.Account),
		UpdateErrorFor: make(map[uint]error),
	}
}

// AddAccount stores an account in the mock.
func (m *MockAccountRepository) AddAccount(a *account.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID()] = a
}

// GetByID retrieves an account by ID. Returns nil, nil when absent.
func (m *MockAccountRepository) GetByID(ctx context.Context, id uint) (*account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	return cloneAccount(m.accounts[id]), nil
}

// Update persists an account.
func (m *MockAccountRepository) Update(ctx context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if err, ok := m.UpdateErrorFor[a.ID()]; ok {
		return err
	}
	m.accounts[a.ID()] = a
	return nil
}

// FindDowngradeCandidates returns active premium accounts expired before the cutoff.
func (m *MockAccountRepository) FindDowngradeCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindError != nil {
		return nil, m.FindError
	}
	var out []*account.Account
	for _, a := range m.accounts {
		if !a.Plan().IsPremium() || !a.Active() || a.ExpiresAt() == nil {
			continue
		}
		if a.ExpiresAt().Before(cutoff) {
			out = append(out, cloneAccount(a))
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FindExpiringBetween returns active premium accounts expiring inside (from, to].
func (m *MockAccountRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindError != nil {
		return nil, m.FindError
	}
	var out []*account.Account
	for _, a := range m.accounts {
		if !a.Plan().IsPremium() || !a.Active() || a.ExpiresAt() == nil {
			continue
		}
		e := *a.ExpiresAt()
		if e.After(from) && !e.After(to) {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

// cloneAccount copies an aggregate so tests observe the stored state, not
// the caller's in-flight mutations, the way a real datastore would.
func cloneAccount(a *account.Account) *account.Account {
	if a == nil {
		return nil
	}
	c, err := account.ReconstructAccount(a.ID(), a.Email(), a.Name(), a.Plan(), a.ExpiresAt(), a.Active(), a.CreatedAt(), a.UpdatedAt())
	if err != nil {
		return a
	}
	return c
}

// MockFeatureCatalog is an in-memory feature catalog for testing.
type MockFeatureCatalog struct {
	mu   sync.RWMutex
	defs map[tier.Plan][]*tier.FeatureDefinition

	GetError error
}

// NewMockFeatureCatalog creates a new mock feature catalog.
func NewMockFeatureCatalog() *MockFeatureCatalog {
	return &MockFeatureCatalog{
		defs: make(map[tier.Plan][]*tier.FeatureDefinition),
	}
}

// AddDefinition registers a definition for a plan.
func (m *MockFeatureCatalog) AddDefinition(def *tier.FeatureDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs[def.Plan()] = append(m.defs[def.Plan()], def)
}

// GetByPlan returns the definitions registered for a plan.
func (m *MockFeatureCatalog) GetByPlan(ctx context.Context, plan tier.Plan) ([]*tier.FeatureDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.defs[plan], nil
}

type usageKey struct {
	userID  uint
	feature tier.Feature
}

// MockUsageRepository is an in-memory tier.UsageRepository implementing the
// conditional-increment semantics of the real datastore.
type MockUsageRepository struct {
	mu       sync.Mutex
	counters map[usageKey]uint
	resets   map[usageKey]time.Time

	GetError   error
	ApplyError error
}

// NewMockUsageRepository creates a new mock usage repository.
func NewMockUsageRepository() *MockUsageRepository {
	return &MockUsageRepository{
		counters: make(map[usageKey]uint),
		resets:   make(map[usageKey]time.Time),
	}
}

// SetUsage seeds a counter.
func (m *MockUsageRepository) SetUsage(userID uint, feature tier.Feature, usage uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := usageKey{userID, feature}
	m.counters[key] = usage
	if _, ok := m.resets[key]; !ok {
		m.resets[key] = time.Now().UTC()
	}
}

// GetByUser returns all usage records for a user.
func (m *MockUsageRepository) GetByUser(ctx context.Context, userID uint) ([]*tier.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	var out []*tier.UsageRecord
	id := uint(1)
	for key, usage := range m.counters {
		if key.userID != userID {
			continue
		}
		rec, err := tier.ReconstructUsageRecord(id, userID, key.feature, usage, nil, m.resets[key], m.resets[key], time.Now().UTC())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		id++
	}
	return out, nil
}

// Get returns one usage record, or nil, nil when absent.
func (m *MockUsageRepository) Get(ctx context.Context, userID uint, feature tier.Feature) (*tier.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	key := usageKey{userID, feature}
	usage, ok := m.counters[key]
	if !ok {
		return nil, nil
	}
	return tier.ReconstructUsageRecord(1, userID, feature, usage, nil, m.resets[key], m.resets[key], time.Now().UTC())
}

// ApplyDelta mirrors the datastore's conditional update: increments past
// the limit fail, decrements clamp at zero.
func (m *MockUsageRepository) ApplyDelta(ctx context.Context, userID uint, feature tier.Feature, delta int, limit *uint) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ApplyError != nil {
		return 0, m.ApplyError
	}
	key := usageKey{userID, feature}
	current := m.counters[key]

	if delta >= 0 {
		next := current + uint(delta)
		if limit != nil && next > *limit {
			return current, fmt.Errorf("%w: %s (%d/%d)", tier.ErrUsageLimitExceeded, feature, current, *limit)
		}
		m.counters[key] = next
		return next, nil
	}

	dec := uint(-delta)
	if dec >= current {
		m.counters[key] = 0
		return 0, nil
	}
	m.counters[key] = current - dec
	return current - dec, nil
}

// Reset zeroes a counter.
func (m *MockUsageRepository) Reset(ctx context.Context, userID uint, feature tier.Feature, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := usageKey{userID, feature}
	m.counters[key] = 0
	m.resets[key] = at
	return nil
}

// MockHistoryRepository records appended tier history entries.
type MockHistoryRepository struct {
	mu      sync.Mutex
	Entries []*tier.History

	AppendError error
}

// NewMockHistoryRepository creates a new mock history repository.
func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

// Append stores a history entry.
func (m *MockHistoryRepository) Append(ctx context.Context, h *tier.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendError != nil {
		return m.AppendError
	}
	m.Entries = append(m.Entries, h)
	return nil
}

// ListByUser returns stored entries for a user, newest first.
func (m *MockHistoryRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]*tier.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*tier.History
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].UserID() == userID {
			out = append(out, m.Entries[i])
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// EntriesFor returns stored entries for a user in insertion order.
func (m *MockHistoryRepository) EntriesFor(userID uint) []*tier.History {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*tier.History
	for _, e := range m.Entries {
		if e.UserID() == userID {
			out = append(out, e)
		}
	}
	return out
}

// DispatchedMessage records one dispatcher call.
type DispatchedMessage struct {
	Intent        string
	UserID        uint
	PreviousPlan  tier.Plan
	NewPlan       tier.Plan
	Reason        tier.ChangeReason
	DaysLeft      int
	GraceDeadline time.Time
	Feature       tier.Feature
}

// MockDispatcher records dispatched notifications.
type MockDispatcher struct {
	mu       sync.Mutex
	Messages []DispatchedMessage

	SendError error
}

// NewMockDispatcher creates a new mock dispatcher.
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{}
}

// TierChanged records a tier change message.
func (m *MockDispatcher) TierChanged(ctx context.Context, to notification.Recipient, previous, next tier.Plan, reason tier.ChangeReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendError != nil {
		return m.SendError
	}
	m.Messages = append(m.Messages, DispatchedMessage{
		Intent:       "tier_changed",
		UserID:       to.UserID,
		PreviousPlan: previous,
		NewPlan:      next,
		Reason:       reason,
	})
	return nil
}

// ExpirationWarning records an expiration warning message.
func (m *MockDispatcher) ExpirationWarning(ctx context.Context, to notification.Recipient, daysLeft int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendError != nil {
		return m.SendError
	}
	m.Messages = append(m.Messages, DispatchedMessage{
		Intent:   "expiration_warning",
		UserID:   to.UserID,
		DaysLeft: daysLeft,
	})
	return nil
}

// GracePeriodStarted records a grace period message.
func (m *MockDispatcher) GracePeriodStarted(ctx context.Context, to notification.Recipient, graceDeadline time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendError != nil {
		return m.SendError
	}
	m.Messages = append(m.Messages, DispatchedMessage{
		Intent:        "grace_period_started",
		UserID:        to.UserID,
		GraceDeadline: graceDeadline,
	})
	return nil
}

// UpgradePrompt records an upgrade prompt message.
func (m *MockDispatcher) UpgradePrompt(ctx context.Context, to notification.Recipient, feature tier.Feature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendError != nil {
		return m.SendError
	}
	m.Messages = append(m.Messages, DispatchedMessage{
		Intent:  "upgrade_prompt",
		UserID:  to.UserID,
		Feature: feature,
	})
	return nil
}

// MessagesFor returns recorded messages for a user.
func (m *MockDispatcher) MessagesFor(userID uint) []DispatchedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []DispatchedMessage
	for _, msg := range m.Messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out
}

// MockAuditSink records audit entries.
type MockAuditSink struct {
	mu      sync.Mutex
	Entries []audit.Entry

	LogError error
}

// NewMockAuditSink creates a new mock audit sink.
func NewMockAuditSink() *MockAuditSink {
	return &MockAuditSink{}
}

// Log stores an audit entry.
func (m *MockAuditSink) Log(ctx context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LogError != nil {
		return m.LogError
	}
	m.Entries = append(m.Entries, e)
	return nil
}

// EntriesFor returns recorded entries for a user and action.
func (m *MockAuditSink) EntriesFor(userID uint, action string) []audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Entry
	for _, e := range m.Entries {
		if e.UserID == userID && e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// MockLogger is a no-op logger.Interface implementation.
type MockLogger struct{}

// NewMockLogger creates a new no-op logger.
func NewMockLogger() *MockLogger { return &MockLogger{} }

func (l *MockLogger) Debug(msg string, args ...any)                      {}
func (l *MockLogger) Info(msg string, args ...any)                       {}
func (l *MockLogger) Warn(msg string, args ...any)                       {}
func (l *MockLogger) Error(msg string, args ...any)                      {}
func (l *MockLogger) With(args ...any) logger.Interface                  { return l }
func (l *MockLogger) Named(name string) logger.Interface                 { return l }
func (l *MockLogger) Debugw(msg string, keysAndValues ...interface{})    {}
func (l *MockLogger) Infow(msg string, keysAndValues ...interface{})     {}
func (l *MockLogger) Warnw(msg string, keysAndValues ...interface{})     {}
func (l *MockLogger) Errorw(msg string, keysAndValues ...interface{})    {}
