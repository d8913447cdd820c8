// Package churn joins the parsed export sources into risk-annotated
// member records and derives milestone events.
package churn

import "time"

// RiskLevel classifies churn likelihood.
type RiskLevel string

const (
	RiskOK       RiskLevel = "OK"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Rank orders risk levels by severity, OK lowest.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

// Status is the member's engagement state.
type Status string

const (
	StatusActive     Status = "active"
	StatusCoolingOff Status = "cooling_off"
	StatusInactive   Status = "inactive"
)

// Member is the merged, risk-annotated output record for one client.
type Member struct {
	ID                  string
	Name                string
	Email               string
	Phone               string
	Status              Status
	JoinDate            time.Time // earliest attendance seen; zero when never attended
	LastVisit           time.Time // zero when never visited
	TotalClasses        int
	MonthlyClasses      int // attended in the last 30 days
	ClassesThisWeek     int
	CancelledBookings   int
	TotalBookings       int
	Location            string
	MonthlyRevenue      float64
	AutoRenew           bool
	MembershipExpires   time.Time // zero when absent
	MembershipType      string
	HasPT               bool
	LastPRDate          time.Time // zero when absent
	LastPRExercise      string
	AttendanceFrequency float64 // classes per week
	RiskLevel           RiskLevel
}

// Milestone types.
const (
	MilestonePR         = "pr"
	MilestoneClassCount = "class_count"
)

// Milestone is a noteworthy event eligible for celebratory outreach.
type Milestone struct {
	ID       string
	MemberID string
	Type     string
	Value    string
	Date     time.Time
}
