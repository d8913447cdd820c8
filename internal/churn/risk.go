package churn

// daysSentinel stands in for "never" in day-distance fields. Large enough
// to trip every inactivity threshold and to keep absent expirations from
// ever looking imminent.
const daysSentinel = 9999

// riskFor classifies one member. Rules are evaluated top down and the
// first match wins; there is no weighting and no hidden state.
func riskFor(status Status, daysInactive, attended30 int, dropPct float64, autoRenew bool, daysToExpiry int) RiskLevel {
	expiring := func(within int) bool {
		return !autoRenew && daysToExpiry <= within
	}

	switch {
	case status == StatusInactive:
		return RiskCritical
	case daysInactive >= 14 || attended30 <= 1 || expiring(14):
		return RiskCritical
	case daysInactive >= 7 || attended30 <= 3 || dropPct >= 50 || expiring(30):
		return RiskHigh
	case daysInactive >= 4 || attended30 <= 5 || dropPct >= 25:
		return RiskMedium
	default:
		return RiskOK
	}
}

// dropPercentage measures the attendance trend between the previous
// 30-60-day window and the current 30-day window. A zero previous window
// yields 0, so a brand-new member never registers a drop.
func dropPercentage(previous30, current30 int) float64 {
	if previous30 == 0 {
		return 0
	}
	return float64(previous30-current30) / float64(previous30) * 100
}
