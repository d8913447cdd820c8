package wodify

import (
	"time"

	"wodify-retention-import/internal/csvx"
)

// Attendance column contract.
const (
	colAttendanceStatus = "Status"
	colStartDatetime    = "Start Datetime"
)

var attendedStatuses = map[string]bool{
	"Attended":  true,
	"Signed In": true,
}

var cancelledStatuses = map[string]bool{
	"Cancelled":    true,
	"Late Cancel":  true,
	"Early Cancel": true,
	"No Show":      true,
}

// AggregateAttendance folds the attendance export into one AttendanceStat
// per client. Every row with a client id counts as a booking; only
// attended rows with a parseable date advance the visit statistics.
// Clients with no rows simply do not appear; the merge stage synthesizes
// a zero stat for them.
func AggregateAttendance(csvText string, now time.Time) map[string]*AttendanceStat {
	now = Noon(now)
	weekStart := WeekStart(now)

	stats := make(map[string]*AttendanceStat)
	for _, record := range csvx.Parse(csvText) {
		id := record[colClientID]
		if id == "" {
			continue
		}

		stat, ok := stats[id]
		if !ok {
			stat = &AttendanceStat{}
			stats[id] = stat
		}

		stat.TotalBookings++
		status := record[colAttendanceStatus]
		if cancelledStatuses[status] {
			stat.Cancelled++
		}
		if !attendedStatuses[status] {
			continue
		}

		date, ok := ParseDate(record[colStartDatetime])
		if !ok {
			continue
		}

		stat.TotalAttended++
		if stat.FirstSeen.IsZero() || date.Before(stat.FirstSeen) {
			stat.FirstSeen = date
		}
		if date.After(stat.LastSeen) {
			stat.LastSeen = date
		}

		daysAgo := DaysBetween(date, now)
		if daysAgo < 0 {
			// Future-dated rows advance totals and first/last seen but
			// stay out of every window counter.
			continue
		}
		if daysAgo <= 7 {
			stat.Last7++
		}
		if daysAgo <= 30 {
			stat.Last30++
		} else if daysAgo <= 60 {
			stat.Prev30to60++
		}
		if !date.Before(weekStart) {
			stat.ThisWeek++
		}
	}
	return stats
}
