// Command retention-import ingests Wodify CSV exports, reconciles them
// into member retention records, and refreshes the derived Postgres
// tables the retention dashboard reads.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wodify-retention-import/internal/churn"
	"wodify-retention-import/internal/config"
	"wodify-retention-import/internal/importer"
	"wodify-retention-import/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "retention-import",
		Short:         "Reconcile Wodify exports into member retention data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db-url", "", "Postgres connection URL (or RETENTION_IMPORT_DB_URL / DATABASE_URL)")
	root.PersistentFlags().String("db-schema", "retention", "schema holding the derived tables")
	root.PersistentFlags().Int("batch-size", store.DefaultBatchSize, "rows per insert batch")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(newImportCmd(), newAnalyzeCmd())
	return root
}

func newImportCmd() *cobra.Command {
	var (
		clientsPath     string
		attendancePath  string
		membershipsPath string
		prsPath         string
		asOf            string
		dryRun          bool
		asJSON          bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run a full import and refresh the derived tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), os.LookupEnv)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Verbose)

			now, err := resolveAsOf(asOf)
			if err != nil {
				return err
			}

			clientsCSV, err := os.ReadFile(clientsPath)
			if err != nil {
				return fmt.Errorf("read clients export: %w", err)
			}
			attendanceCSV, err := readOptional(attendancePath)
			if err != nil {
				return err
			}
			membershipsCSV, err := readOptional(membershipsPath)
			if err != nil {
				return err
			}
			prsCSV, err := readOptional(prsPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var sink importer.Store
			if dryRun {
				logger.Info("dry run, skipping database writes")
				sink = dryRunStore{}
			} else {
				pg, err := store.Open(ctx, store.Config{URL: cfg.DBURL, Schema: cfg.DBSchema, BatchSize: cfg.BatchSize}, logger)
				if err != nil {
					return err
				}
				defer pg.Close()
				if err := pg.EnsureSchema(ctx); err != nil {
					return fmt.Errorf("ensure schema: %w", err)
				}
				sink = pg
			}

			result := importer.New(sink, logger, func() time.Time { return now }).
				Run(ctx, string(clientsCSV), attendanceCSV, membershipsCSV, prsCSV)

			if err := printImportResult(cmd, result, asJSON); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("import finished with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&clientsPath, "clients", "", "clients export CSV (required)")
	cmd.Flags().StringVar(&attendancePath, "attendance", "", "attendance export CSV")
	cmd.Flags().StringVar(&membershipsPath, "memberships", "", "memberships export CSV")
	cmd.Flags().StringVar(&prsPath, "prs", "", "personal records export CSV")
	cmd.Flags().StringVar(&asOf, "as-of", "", "run as of this date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and classify without writing to the database")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("clients")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var (
		clientsPath     string
		attendancePath  string
		membershipsPath string
		asJSON          bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Preview export contents without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), os.LookupEnv)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Verbose)

			clientsCSV, err := os.ReadFile(clientsPath)
			if err != nil {
				return fmt.Errorf("read clients export: %w", err)
			}
			attendanceCSV, err := readOptional(attendancePath)
			if err != nil {
				return err
			}
			membershipsCSV, err := readOptional(membershipsPath)
			if err != nil {
				return err
			}

			preview := importer.New(nil, logger, nil).
				Analyze(string(clientsCSV), attendanceCSV, membershipsCSV)

			if asJSON {
				return printJSON(cmd, preview)
			}
			cmd.Printf("Clients:            %d (%d active, %d inactive)\n",
				preview.TotalClients, preview.ActiveClients, preview.InactiveClients)
			cmd.Printf("Attendance records: %d\n", preview.AttendanceRecords)
			cmd.Printf("Memberships:        %d\n", preview.ActiveMemberships)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientsPath, "clients", "", "clients export CSV (required)")
	cmd.Flags().StringVar(&attendancePath, "attendance", "", "attendance export CSV")
	cmd.Flags().StringVar(&membershipsPath, "memberships", "", "memberships export CSV")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the preview as JSON")
	_ = cmd.MarkFlagRequired("clients")
	return cmd
}

// dryRunStore counts what a refresh would write.
type dryRunStore struct{}

func (dryRunStore) Refresh(_ context.Context, members []churn.Member, milestones []churn.Milestone) store.RefreshResult {
	return store.RefreshResult{MembersWritten: len(members), MilestonesWritten: len(milestones)}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveAsOf pins "today" for reproducible runs against old exports.
func resolveAsOf(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date %q, want YYYY-MM-DD", value)
	}
	return parsed, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func printImportResult(cmd *cobra.Command, result importer.Result, asJSON bool) error {
	if asJSON {
		return printJSON(cmd, result)
	}
	cmd.Printf("Members imported:    %d\n", result.MembersImported)
	cmd.Printf("Milestones imported: %d\n", result.MilestonesImported)
	for _, msg := range result.Errors {
		cmd.Printf("Error: %s\n", msg)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
