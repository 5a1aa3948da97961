package user

// Entitlement is what a tier unlocks
type Entitlement struct {
	MaxPlanDays     int
	TimePreferences bool
	BudgetEstimates bool
}

// Policy maps tiers to entitlements
type Policy map[Tier]Entitlement

// DefaultPolicy returns the stock tier limits
func DefaultPolicy() Policy {
	return Policy{
		TierFree:    {MaxPlanDays: 3},
		TierPremium: {MaxPlanDays: 7, TimePreferences: true, BudgetEstimates: true},
	}
}

// For resolves a tier. Unknown tiers get the free entitlement.
func (p Policy) For(tier Tier) Entitlement {
	if e, ok := p[tier]; ok {
		return e
	}
	return p[TierFree]
}
