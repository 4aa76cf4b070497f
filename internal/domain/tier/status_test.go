package tier

import (
	"testing"
	"time"
)

func uintPtr(v uint) *uint { return &v }

func mustDefinition(t *testing.T, plan Plan, feature Feature, limit *uint, enabled bool) *FeatureDefinition {
	t.Helper()
	def, err := NewFeatureDefinition(plan, feature, limit, enabled, "")
	if err != nil {
		t.Fatalf("NewFeatureDefinition() unexpected error = %v", err)
	}
	return def
}

func mustUsage(t *testing.T, userID uint, feature Feature, current uint) *UsageRecord {
	t.Helper()
	now := time.Now().UTC()
	rec, err := ReconstructUsageRecord(1, userID, feature, current, nil, now, now, now)
	if err != nil {
		t.Fatalf("ReconstructUsageRecord() unexpected error = %v", err)
	}
	return rec
}

func TestComputeStatus_GracePeriod(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		plan            Plan
		expiresAt       *time.Time
		wantGrace       bool
		wantGraceExpiry *time.Time
	}{
		{
			name: "premium expired 3 days ago is in grace",
			plan: PlanPremium,
			expiresAt: func() *time.Time {
				e := now.Add(-3 * 24 * time.Hour)
				return &e
			}(),
			wantGrace: true,
			wantGraceExpiry: func() *time.Time {
				e := now.Add(-3 * 24 * time.Hour).Add(GracePeriod)
				return &e
			}(),
		},
		{
			name: "premium expired 10 days ago is past grace",
			plan: PlanPremium,
			expiresAt: func() *time.Time {
				e := now.Add(-10 * 24 * time.Hour)
				return &e
			}(),
			wantGrace: false,
		},
		{
			name: "premium expiring in future has no grace",
			plan: PlanPremium,
			expiresAt: func() *time.Time {
				e := now.Add(5 * 24 * time.Hour)
				return &e
			}(),
			wantGrace: false,
		},
		{
			name: "premium expired exactly at grace deadline is still in grace",
			plan: PlanPremium,
			expiresAt: func() *time.Time {
				e := now.Add(-GracePeriod)
				return &e
			}(),
			wantGrace: true,
			wantGraceExpiry: func() *time.Time {
				return &now
			}(),
		},
		{
			name: "free plan never enters grace",
			plan: PlanFree,
			expiresAt: func() *time.Time {
				e := now.Add(-3 * 24 * time.Hour)
				return &e
			}(),
			wantGrace: false,
		},
		{
			name:      "premium without expiration has no grace",
			plan:      PlanPremium,
			expiresAt: nil,
			wantGrace: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ComputeStatus(tt.plan, tt.expiresAt, true, nil, nil, now)

			if st.GracePeriodActive != tt.wantGrace {
				t.Errorf("GracePeriodActive = %v, want %v", st.GracePeriodActive, tt.wantGrace)
			}
			if tt.wantGraceExpiry != nil {
				if st.GracePeriodExpiresAt == nil {
					t.Fatalf("GracePeriodExpiresAt = nil, want %v", tt.wantGraceExpiry)
				}
				if !st.GracePeriodExpiresAt.Equal(*tt.wantGraceExpiry) {
					t.Errorf("GracePeriodExpiresAt = %v, want %v", st.GracePeriodExpiresAt, tt.wantGraceExpiry)
				}
			}
			if !tt.wantGrace && st.GracePeriodExpiresAt != nil {
				t.Errorf("GracePeriodExpiresAt = %v, want nil", st.GracePeriodExpiresAt)
			}
		})
	}
}

func TestComputeStatus_DaysUntilExpiration(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      *int
	}{
		{
			name:      "nil expiration gives nil days",
			expiresAt: nil,
			want:      nil,
		},
		{
			name: "five full days remaining",
			expiresAt: func() *time.Time {
				e := now.Add(5 * 24 * time.Hour)
				return &e
			}(),
			want: func() *int { d := 5; return &d }(),
		},
		{
			name: "partial day rounds up",
			expiresAt: func() *time.Time {
				e := now.Add(4*24*time.Hour + time.Hour)
				return &e
			}(),
			want: func() *int { d := 5; return &d }(),
		},
		{
			name: "expired three days ago is negative",
			expiresAt: func() *time.Time {
				e := now.Add(-3 * 24 * time.Hour)
				return &e
			}(),
			want: func() *int { d := -3; return &d }(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ComputeStatus(PlanPremium, tt.expiresAt, true, nil, nil, now)

			if tt.want == nil {
				if st.DaysUntilExpiration != nil {
					t.Errorf("DaysUntilExpiration = %v, want nil", *st.DaysUntilExpiration)
				}
				return
			}
			if st.DaysUntilExpiration == nil {
				t.Fatalf("DaysUntilExpiration = nil, want %d", *tt.want)
			}
			if *st.DaysUntilExpiration != *tt.want {
				t.Errorf("DaysUntilExpiration = %d, want %d", *st.DaysUntilExpiration, *tt.want)
			}
		})
	}
}

func TestComputeStatus_MergesUsageWithZeroDefaults(t *testing.T) {
	now := time.Now().UTC()

	defs := []*FeatureDefinition{
		mustDefinition(t, PlanFree, FeatureProducts, uintPtr(50), true),
		mustDefinition(t, PlanFree, FeatureAnalytics, nil, false),
	}
	usages := []*UsageRecord{
		mustUsage(t, 7, FeatureProducts, 12),
	}

	st := ComputeStatus(PlanFree, nil, true, defs, usages, now)

	if got := st.Usage[FeatureProducts]; got != 12 {
		t.Errorf("Usage[products] = %d, want 12", got)
	}
	if got := st.Usage[FeatureCategories]; got != 0 {
		t.Errorf("Usage[categories] = %d, want 0 (no usage row)", got)
	}

	grant, ok := st.Features[FeatureProducts]
	if !ok {
		t.Fatal("Features[products] missing")
	}
	if grant.Limit == nil || *grant.Limit != 50 {
		t.Errorf("Features[products].Limit = %v, want 50", grant.Limit)
	}
	if !grant.Enabled {
		t.Error("Features[products].Enabled = false, want true")
	}
	if st.Features[FeatureAnalytics].Enabled {
		t.Error("Features[analytics].Enabled = true, want false")
	}
}

func TestWithinGrace(t *testing.T) {
	expires := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if WithinGrace(expires, expires.Add(-time.Hour)) {
		t.Error("WithinGrace before expiration should be false")
	}
	if !WithinGrace(expires, expires.Add(time.Hour)) {
		t.Error("WithinGrace just after expiration should be true")
	}
	if !WithinGrace(expires, expires.Add(GracePeriod)) {
		t.Error("WithinGrace at the deadline should be true")
	}
	if WithinGrace(expires, expires.Add(GracePeriod).Add(time.Second)) {
		t.Error("WithinGrace past the deadline should be false")
	}
}
