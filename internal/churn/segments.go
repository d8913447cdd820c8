package churn

import (
	"time"

	"wodify-retention-import/internal/wodify"
)

// Segment predicates. Each is a pure function over a merged Member and an
// explicit "now"; the presentation layer composes them instead of
// re-deriving bespoke filters per view.

// AtRisk selects active members carrying any elevated risk.
func AtRisk(m Member, now time.Time) bool {
	return m.Status == StatusActive && m.RiskLevel != RiskOK
}

// WinBack selects members inactive for 30-90 days, the window where
// outreach still has a realistic chance.
func WinBack(m Member, now time.Time) bool {
	days := daysInactive(m, now)
	return m.Status == StatusInactive && days >= 30 && days <= 90
}

// Cold selects members inactive beyond the win-back window. The import
// drops such members from fresh output; the predicate still applies to
// previously persisted rows.
func Cold(m Member, now time.Time) bool {
	return m.Status == StatusInactive && daysInactive(m, now) > 90
}

// NewMember selects members whose first attendance is within 30 days.
func NewMember(m Member, now time.Time) bool {
	return !m.JoinDate.IsZero() && wodify.DaysBetween(m.JoinDate, wodify.Noon(now)) <= 30
}

// Recovery selects members who trained this week while still classified
// HIGH or CRITICAL: they are coming back from a lapse and worth a nudge.
func Recovery(m Member, now time.Time) bool {
	return m.Status != StatusInactive && m.ClassesThisWeek > 0 && m.RiskLevel.Rank() >= RiskHigh.Rank()
}

func daysInactive(m Member, now time.Time) int {
	if m.LastVisit.IsZero() {
		return daysSentinel
	}
	days := wodify.DaysBetween(m.LastVisit, wodify.Noon(now))
	if days < 0 {
		return 0
	}
	return days
}
