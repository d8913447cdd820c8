// Package importer ties the pipeline together: parse the four Wodify
// exports, merge them into member records, classify risk, and refresh the
// derived tables. The entry points never fail loudly; a broken run is
// reported through the Result so the caller can present it.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"wodify-retention-import/internal/churn"
	"wodify-retention-import/internal/csvx"
	"wodify-retention-import/internal/store"
	"wodify-retention-import/internal/wodify"
)

// Store is the sink for a refresh run. *store.Postgres satisfies it.
type Store interface {
	Refresh(ctx context.Context, members []churn.Member, milestones []churn.Milestone) store.RefreshResult
}

// Result is the import outcome handed back to the caller, shaped for JSON
// output.
type Result struct {
	Success            bool     `json:"success"`
	MembersImported    int      `json:"membersImported"`
	MilestonesImported int      `json:"milestonesImported"`
	Errors             []string `json:"errors,omitempty"`
}

// Preview summarises the exports without touching the database.
type Preview struct {
	TotalClients      int `json:"totalClients"`
	ActiveClients     int `json:"activeClients"`
	InactiveClients   int `json:"inactiveClients"`
	AttendanceRecords int `json:"attendanceRecords"`
	ActiveMemberships int `json:"activeMemberships"`
}

// Importer runs the reconciliation pipeline against a Store.
type Importer struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New builds an Importer. The now func is injectable so runs are
// reproducible against historical exports.
func New(st Store, logger *slog.Logger, now func() time.Time) *Importer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if now == nil {
		now = time.Now
	}
	return &Importer{store: st, logger: logger, now: now}
}

// Run executes a full import from raw CSV text. Any panic in the pipeline
// is captured into the Result instead of crashing the caller; the previous
// database state survives because the refresh never started or already
// reported its own errors.
func (imp *Importer) Run(ctx context.Context, clientsCSV, attendanceCSV, membershipsCSV, prsCSV string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			imp.logger.Error("import failed", "panic", r)
			result = Result{Errors: []string{fmt.Sprintf("import failed: %v", r)}}
		}
	}()

	now := imp.now()

	clients := wodify.ParseClients(clientsCSV)
	attendance := wodify.AggregateAttendance(attendanceCSV, now)
	memberships := wodify.ResolveMemberships(membershipsCSV)
	prs := wodify.ResolvePRs(prsCSV)

	imp.logger.Info("parsed exports",
		"clients", len(clients),
		"attendance_clients", len(attendance),
		"memberships", len(memberships),
		"prs", len(prs))

	members, milestones := churn.Merge(clients, attendance, memberships, prs, now)
	imp.logSummary(members)

	refresh := imp.store.Refresh(ctx, members, milestones)

	result = Result{
		Success:            len(refresh.Errors) == 0,
		MembersImported:    refresh.MembersWritten,
		MilestonesImported: refresh.MilestonesWritten,
		Errors:             refresh.Errors,
	}
	imp.logger.Info("import finished",
		"success", result.Success,
		"members", result.MembersImported,
		"milestones", result.MilestonesImported,
		"errors", len(result.Errors))
	return result
}

// Analyze parses the exports and reports headline counts. Used for the
// pre-import preview; a broken file yields a zero-filled Preview rather
// than an error.
func (imp *Importer) Analyze(clientsCSV, attendanceCSV, membershipsCSV string) (preview Preview) {
	defer func() {
		if r := recover(); r != nil {
			imp.logger.Error("analyze failed", "panic", r)
			preview = Preview{}
		}
	}()

	clients := wodify.ParseClients(clientsCSV)
	preview.TotalClients = len(clients)
	for _, c := range clients {
		if c.Active {
			preview.ActiveClients++
		} else {
			preview.InactiveClients++
		}
	}

	preview.AttendanceRecords = countRows(attendanceCSV)
	preview.ActiveMemberships = len(wodify.ResolveMemberships(membershipsCSV))
	return preview
}

func (imp *Importer) logSummary(members []churn.Member) {
	var active, inactive, withMembership int
	byRisk := map[churn.RiskLevel]int{}
	for _, m := range members {
		switch m.Status {
		case churn.StatusInactive:
			inactive++
		default:
			active++
		}
		if m.MonthlyRevenue > 0 {
			withMembership++
		}
		byRisk[m.RiskLevel]++
	}
	imp.logger.Info("merged members",
		"total", len(members),
		"active", active,
		"inactive", inactive,
		"with_membership", withMembership,
		"critical", byRisk[churn.RiskCritical],
		"high", byRisk[churn.RiskHigh],
		"medium", byRisk[churn.RiskMedium])
}

func countRows(csvText string) int {
	return len(csvx.Parse(csvText))
}
