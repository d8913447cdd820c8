// Package store persists the derived member and milestone tables to
// Postgres. Each import run performs a destructive refresh: clear the
// previous rows, then bulk-insert the new ones in fixed-size batches.
// The refresh is deliberately not one atomic transaction; a failing batch
// is recorded and the remaining batches still attempt to write.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"wodify-retention-import/internal/churn"
)

// DefaultBatchSize matches the platform export scale: thousands of rows,
// written a hundred at a time.
const DefaultBatchSize = 100

// Config carries the connection settings for the derived-data store.
type Config struct {
	URL       string
	Schema    string
	BatchSize int
}

// RefreshResult reports what a destructive refresh managed to write.
// Counts cover only batches that succeeded.
type RefreshResult struct {
	MembersWritten    int
	MilestonesWritten int
	Errors            []string
}

// Postgres is the persistence adapter for the members and milestones
// tables.
type Postgres struct {
	db        *sql.DB
	schema    string
	batchSize int
	logger    *slog.Logger
}

var validSchema = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Postgres, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("database URL missing; set RETENTION_IMPORT_DB_URL or DATABASE_URL")
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	adapter, err := New(db, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return adapter, nil
}

// New wraps an existing database handle. Used by Open and by tests.
func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Postgres, error) {
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		return nil, errors.New("db schema is required")
	}
	if !validSchema.MatchString(schema) {
		return nil, fmt.Errorf("invalid schema name: %s", schema)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Postgres{db: db, schema: schema, batchSize: batchSize, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// EnsureSchema creates the schema and derived tables when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, p.schema)); err != nil {
		return err
	}

	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.members (
			id text PRIMARY KEY,
			name text NOT NULL,
			email text,
			phone text,
			status text NOT NULL,
			join_date date,
			last_visit_date date,
			attendance_frequency numeric(6,1) NOT NULL,
			total_classes integer NOT NULL,
			monthly_classes integer NOT NULL,
			classes_this_week integer NOT NULL,
			cancelled_bookings integer NOT NULL,
			total_bookings integer NOT NULL,
			location text,
			monthly_revenue numeric(10,2) NOT NULL,
			auto_renew boolean NOT NULL,
			membership_expires date,
			membership_type text,
			has_pt boolean NOT NULL,
			last_pr_date date,
			last_pr_exercise text,
			risk_level text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, p.schema))
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.milestones (
			id uuid PRIMARY KEY,
			member_id text NOT NULL REFERENCES %s.members(id) ON DELETE CASCADE,
			type text NOT NULL,
			value text NOT NULL,
			date date NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, p.schema, p.schema))
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_milestones_member_idx ON %s.milestones (member_id)`, p.schema, p.schema))
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_members_risk_idx ON %s.members (risk_level)`, p.schema, p.schema))
	return err
}

// Refresh clears the previous derived rows and writes the new ones.
// A failing clear aborts the refresh; a failing insert batch is recorded
// and the remaining batches still run. Batches are submitted sequentially
// so readers never observe an interleaved partial state.
func (p *Postgres) Refresh(ctx context.Context, members []churn.Member, milestones []churn.Milestone) RefreshResult {
	var result RefreshResult

	// Milestones first: they reference members.
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s.milestones`, p.schema)); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("clear milestones: %v", err))
		return result
	}
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s.members`, p.schema)); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("clear members: %v", err))
		return result
	}

	for start := 0; start < len(members); start += p.batchSize {
		end := min(start+p.batchSize, len(members))
		batch := members[start:end]
		batchNo := start/p.batchSize + 1
		if err := p.insertMembers(ctx, batch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("members batch %d: %v", batchNo, err))
			continue
		}
		result.MembersWritten += len(batch)
		p.logger.Debug("wrote members batch", "batch", batchNo, "rows", len(batch))
	}

	for start := 0; start < len(milestones); start += p.batchSize {
		end := min(start+p.batchSize, len(milestones))
		batch := milestones[start:end]
		batchNo := start/p.batchSize + 1
		if err := p.insertMilestones(ctx, batch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("milestones batch %d: %v", batchNo, err))
			continue
		}
		result.MilestonesWritten += len(batch)
		p.logger.Debug("wrote milestones batch", "batch", batchNo, "rows", len(batch))
	}

	return result
}

var memberColumns = []string{
	"id", "name", "email", "phone", "status",
	"join_date", "last_visit_date", "attendance_frequency",
	"total_classes", "monthly_classes", "classes_this_week",
	"cancelled_bookings", "total_bookings",
	"location", "monthly_revenue", "auto_renew", "membership_expires",
	"membership_type", "has_pt", "last_pr_date", "last_pr_exercise",
	"risk_level",
}

func (p *Postgres) insertMembers(ctx context.Context, batch []churn.Member) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s.members (%s) VALUES ", p.schema, strings.Join(memberColumns, ", "))

	args := make([]any, 0, len(batch)*len(memberColumns))
	for i, m := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valueTuple(i*len(memberColumns), len(memberColumns)))
		args = append(args,
			m.ID,
			m.Name,
			nullString(m.Email),
			nullString(m.Phone),
			string(m.Status),
			nullDate(m.JoinDate),
			nullDate(m.LastVisit),
			m.AttendanceFrequency,
			m.TotalClasses,
			m.MonthlyClasses,
			m.ClassesThisWeek,
			m.CancelledBookings,
			m.TotalBookings,
			nullString(m.Location),
			m.MonthlyRevenue,
			m.AutoRenew,
			nullDate(m.MembershipExpires),
			nullString(m.MembershipType),
			m.HasPT,
			nullDate(m.LastPRDate),
			nullString(m.LastPRExercise),
			string(m.RiskLevel),
		)
	}

	_, err := p.db.ExecContext(ctx, sb.String(), args...)
	return err
}

var milestoneColumns = []string{"id", "member_id", "type", "value", "date"}

func (p *Postgres) insertMilestones(ctx context.Context, batch []churn.Milestone) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s.milestones (%s) VALUES ", p.schema, strings.Join(milestoneColumns, ", "))

	args := make([]any, 0, len(batch)*len(milestoneColumns))
	for i, ms := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valueTuple(i*len(milestoneColumns), len(milestoneColumns)))
		args = append(args, ms.ID, ms.MemberID, ms.Type, ms.Value, nullDate(ms.Date))
	}

	_, err := p.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// valueTuple renders ($n+1, ..., $n+count).
func valueTuple(offset, count int) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "$%d", offset+i+1)
	}
	sb.WriteByte(')')
	return sb.String()
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullDate(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value, Valid: true}
}
