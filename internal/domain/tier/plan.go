package tier

import "fmt"

// Plan identifies a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// ValidPlans lists the known subscription plans.
var ValidPlans = map[Plan]bool{
	PlanFree:    true,
	PlanPremium: true,
}

// IsValid reports whether the plan is a known plan.
func (p Plan) IsValid() bool {
	return ValidPlans[p]
}

// IsPremium reports whether the plan is the premium tier.
func (p Plan) IsPremium() bool {
	return p == PlanPremium
}

// String returns the plan as a string.
func (p Plan) String() string {
	return string(p)
}

// ParsePlan parses a plan string into a Plan.
func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid subscription plan: %s", s)
	}
	return p, nil
}
