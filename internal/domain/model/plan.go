package model

// PlanCategory selects the catalog a flow may order from.
type PlanCategory string

const (
	PlanCategoryNew   PlanCategory = "new"
	PlanCategoryRenew PlanCategory = "renew"
)

// PlanTier groups plans independent of duration.
type PlanTier string

const (
	PlanTierTrial  PlanTier = "trial"
	PlanTierMobile PlanTier = "mobile"
	PlanTierLaptop PlanTier = "laptop"
	PlanTierVip    PlanTier = "vip"
)

// Plan is an immutable catalog entry.
type Plan struct {
	ID           string
	Category     PlanCategory
	Tier         PlanTier
	DurationDays int
	Price        int64
	Label        string
	Active       bool
}

// Kind maps the plan onto the order namespace it produces.
func (p Plan) Kind() OrderKind {
	if p.Tier == PlanTierTrial {
		return OrderKindTrial
	}
	if p.Category == PlanCategoryRenew {
		return OrderKindRenewal
	}
	return OrderKindNew
}
