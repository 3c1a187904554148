package domain

type TierChange int

const (
	TierChangeNone TierChange = iota
	TierChangeUpgrade
	TierChangeDowngrade
)

func (t TierChange) String() string {
	switch t {
	case TierChangeUpgrade:
		return "upgrade"
	case TierChangeDowngrade:
		return "downgrade"
	}
	return "none"
}

// ClassifyTierChange decides how a requested plan cost relates to the
// current one. Upgrades charge the delta immediately; downgrades take
// effect at the next billing cycle; equal cost is a harmless no-op.
func ClassifyTierChange(currentCost, requestedCost int64) TierChange {
	switch {
	case requestedCost > currentCost:
		return TierChangeUpgrade
	case requestedCost < currentCost:
		return TierChangeDowngrade
	}
	return TierChangeNone
}
