// Package wodify parses the four CSV exports of the gym-management
// platform into per-client records keyed by the shared client id.
package wodify

import "time"

// ClientIdentity is one roster row: who the client is and whether the
// platform still considers them active.
type ClientIdentity struct {
	ID            string
	Name          string
	Active        bool
	Email         string
	Phone         string
	LastVisitHint time.Time // from the roster's own sign-in column; zero when absent
}

// AttendanceStat aggregates a client's booking history into the sliding
// windows the risk engine consumes. All windows are relative to the
// injected "now" of the import run.
type AttendanceStat struct {
	TotalAttended int
	Last7         int // attended, 0-7 days ago
	Last30        int // attended, 0-30 days ago
	Prev30to60    int // attended, 30-60 days ago
	ThisWeek      int // attended since Monday of the current week
	FirstSeen     time.Time
	LastSeen      time.Time
	Cancelled     int
	TotalBookings int
}

// MembershipInfo is the single canonical membership retained per client
// after dedup.
type MembershipInfo struct {
	Expires        time.Time // zero when the export carries no expiration
	MonthlyRevenue float64
	AutoRenew      bool
	Location       string
	Type           string
	HasPT          bool
}

// PRInfo is a client's most recent personal record.
type PRInfo struct {
	Date     time.Time
	Exercise string
	Result   string
}
