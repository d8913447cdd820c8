package churn

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"wodify-retention-import/internal/wodify"
)

// weeksPerMonth converts a 30-day attendance count into a classes-per-week
// figure. A month is treated as 4.3 weeks; this is a deliberate
// approximation, not a weekly regression.
const weeksPerMonth = 4.3

// coolingOffAfterDays is the inactivity gap that moves an otherwise
// active member into cooling_off.
const coolingOffAfterDays = 7

// dropAfterDays excludes long-gone inactive members from the output
// entirely; they belong to historical exports, not the retention board.
const dropAfterDays = 90

// classCountThresholds, highest first, mark celebrated class totals.
var classCountThresholds = []int{500, 400, 300, 250, 200, 150, 100, 50, 25, 10}

// Merge joins the four parsed sources by client id and derives one Member
// per client plus any milestones earned in the last week. Clients missing
// from a source get zero/absent fields, never an error. Output is sorted
// by client id so identical inputs produce identical output.
func Merge(
	clients map[string]wodify.ClientIdentity,
	attendance map[string]*wodify.AttendanceStat,
	memberships map[string]wodify.MembershipInfo,
	prs map[string]wodify.PRInfo,
	now time.Time,
) ([]Member, []Milestone) {
	now = wodify.Noon(now)

	ids := make([]string, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	members := make([]Member, 0, len(clients))
	var milestones []Milestone

	for _, id := range ids {
		client := clients[id]

		stat := attendance[id]
		if stat == nil {
			stat = &wodify.AttendanceStat{}
		}
		membership, hasMembership := memberships[id]
		pr, hasPR := prs[id]

		lastVisit := stat.LastSeen
		if lastVisit.IsZero() {
			lastVisit = client.LastVisitHint
		}

		daysInactive := daysSentinel
		if !lastVisit.IsZero() {
			daysInactive = wodify.DaysBetween(lastVisit, now)
			if daysInactive < 0 {
				daysInactive = 0
			}
		}

		daysToExpiry := daysSentinel
		if hasMembership && !membership.Expires.IsZero() {
			daysToExpiry = wodify.DaysBetween(now, membership.Expires)
		}

		status := StatusActive
		switch {
		case !client.Active:
			status = StatusInactive
		case daysInactive > coolingOffAfterDays:
			status = StatusCoolingOff
		}

		if status == StatusInactive && daysInactive > dropAfterDays {
			continue
		}

		drop := dropPercentage(stat.Prev30to60, stat.Last30)

		member := Member{
			ID:                  id,
			Name:                client.Name,
			Email:               client.Email,
			Phone:               client.Phone,
			Status:              status,
			JoinDate:            stat.FirstSeen,
			LastVisit:           lastVisit,
			TotalClasses:        stat.TotalAttended,
			MonthlyClasses:      stat.Last30,
			ClassesThisWeek:     stat.ThisWeek,
			CancelledBookings:   stat.Cancelled,
			TotalBookings:       stat.TotalBookings,
			Location:            membership.Location,
			MonthlyRevenue:      membership.MonthlyRevenue,
			AutoRenew:           membership.AutoRenew,
			MembershipExpires:   membership.Expires,
			MembershipType:      membership.Type,
			HasPT:               membership.HasPT,
			AttendanceFrequency: round1(float64(stat.Last30) / weeksPerMonth),
			RiskLevel:           riskFor(status, daysInactive, stat.Last30, drop, membership.AutoRenew, daysToExpiry),
		}
		if !hasMembership {
			member.Location = "Unknown"
			member.MembershipType = "Unknown"
		}
		if hasPR {
			member.LastPRDate = pr.Date
			member.LastPRExercise = pr.Exercise
		}

		members = append(members, member)
		milestones = append(milestones, memberMilestones(member, pr, hasPR, stat, now)...)
	}

	return members, milestones
}

// memberMilestones emits a "pr" milestone for a record set in the last
// week and at most one "class_count" milestone when the running total
// crossed a threshold within the current week's visits.
func memberMilestones(member Member, pr wodify.PRInfo, hasPR bool, stat *wodify.AttendanceStat, now time.Time) []Milestone {
	var out []Milestone

	if hasPR {
		age := wodify.DaysBetween(pr.Date, now)
		if age >= 0 && age <= 7 {
			out = append(out, Milestone{
				ID:       uuid.NewString(),
				MemberID: member.ID,
				Type:     MilestonePR,
				Value:    fmt.Sprintf("%s: %s", pr.Exercise, pr.Result),
				Date:     pr.Date,
			})
		}
	}

	for _, threshold := range classCountThresholds {
		if stat.TotalAttended >= threshold && stat.TotalAttended < threshold+stat.ThisWeek {
			date := member.LastVisit
			if date.IsZero() {
				date = now
			}
			out = append(out, Milestone{
				ID:       uuid.NewString(),
				MemberID: member.ID,
				Type:     MilestoneClassCount,
				Value:    fmt.Sprintf("%d classes", threshold),
				Date:     date,
			})
			break
		}
	}

	return out
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
