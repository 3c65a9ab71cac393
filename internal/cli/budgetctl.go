package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"familybudget/internal/config"
	"familybudget/internal/core"
	"familybudget/internal/export"
	"familybudget/internal/gateway/memory"
	applog "familybudget/internal/log"
	"familybudget/internal/report"
	"familybudget/internal/services"
	"familybudget/internal/storage"
)

// CLIApp is the budgetctl command tree. It works directly on a SQLite ledger.
type CLIApp struct {
	rootCmd *cobra.Command
	now     func() time.Time
	logger  *applog.Logger

	dbPath     string
	owner      string
	thresholds string
	jsonOut    bool
	noColor    bool
}

// NewCLIApp builds the command tree.
func NewCLIApp(version string) *CLIApp {
	app := &CLIApp{
		now:    time.Now,
		logger: applog.Discard(),
	}

	rootCmd := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Household budget reports from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.dbPath, "db", envOr("SQLITE_DB_PATH", "./data/familybudget.db"), "Path to the SQLite ledger")
	flags.StringVarP(&app.owner, "owner", "o", os.Getenv("BUDGET_OWNER"), "Ledger owner (defaults to $BUDGET_OWNER)")
	flags.StringVar(&app.thresholds, "thresholds", os.Getenv("THRESHOLDS_FILE"), "YAML file overriding analysis thresholds")
	flags.BoolVar(&app.jsonOut, "json", false, "Print reports as JSON")
	flags.BoolVar(&app.noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(app.reportCmd(), app.analyzeCmd(), app.exportCmd(), app.seedCmd())
	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// Root exposes the cobra command, mostly for tests.
func (app *CLIApp) Root() *cobra.Command {
	return app.rootCmd
}

func (app *CLIApp) reportCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly report for one calendar month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseMonthFlag(month)
			if err != nil {
				return err
			}
			return app.withReports(cmd.Context(), func(reports *services.ReportService, owner string) error {
				rep, err := reports.Monthly(cmd.Context(), owner, key, app.now())
				if err != nil {
					return err
				}
				return app.print(cmd.OutOrStdout(), rep)
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

func (app *CLIApp) analyzeCmd() *cobra.Command {
	var period int
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Spending analysis over the trailing months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withReports(cmd.Context(), func(reports *services.ReportService, owner string) error {
				rep, err := reports.Analysis(cmd.Context(), owner, period, app.now())
				if err != nil {
					return err
				}
				return app.print(cmd.OutOrStdout(), rep)
			})
		},
	}
	cmd.Flags().IntVarP(&period, "period", "p", report.DefaultPeriodMonths, "Number of months to analyze (1-60)")
	return cmd
}

func (app *CLIApp) exportCmd() *cobra.Command {
	var (
		month  string
		period int
		kind   string
		format string
		sheets string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a report to PDF or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			key, err := parseMonthFlag(month)
			if err != nil {
				return err
			}
			k := report.Kind(strings.ToLower(kind))
			if k != report.KindMonthly && k != report.KindAnalysis && k != report.KindLedger {
				return fmt.Errorf("unknown report kind %q", kind)
			}
			set, err := export.ParseSheets(sheets)
			if err != nil {
				return err
			}
			return app.withReports(cmd.Context(), func(reports *services.ReportService, owner string) error {
				exporter := services.NewExportService(reports, nil, app.logger)
				doc, err := exporter.Render(cmd.Context(), services.ExportRequest{
					Owner:  owner,
					Kind:   k,
					Month:  key,
					Period: period,
					Format: f,
					Sheets: set,
				}, app.now())
				if err != nil {
					return err
				}
				path, err := export.WriteFile(dir, doc.Base, f, doc.Data)
				if err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(doc.Data))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM for monthly exports")
	cmd.Flags().IntVarP(&period, "period", "p", report.DefaultPeriodMonths, "Months covered by analysis exports")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(report.KindMonthly), "Report kind: monthly, analysis or ledger")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatPDF), "Output format: pdf or xlsx")
	cmd.Flags().StringVar(&sheets, "sheets", string(export.SheetsAll), "Workbook sheets: all, expenses, incomes or goals")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the file to")
	return cmd
}

// seedCmd loads a seed.json file into the ledger. Goal ids in the file are
// ignored so goals upsert on (category, month).
func (app *CLIApp) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import expenses, incomes and goals from a JSON seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed: %w", err)
			}
			var seed memory.Seed
			if err := json.Unmarshal(b, &seed); err != nil {
				return fmt.Errorf("parse seed: %w", err)
			}

			repo, err := storage.NewSQLiteRepository(app.dbPath, app.logger)
			if err != nil {
				return err
			}
			defer repo.Close()
			ledger := services.NewLedgerService(repo, repo, nil, app.logger)

			ctx := cmd.Context()
			counts := map[string]int{}
			for i, e := range seed.Expenses {
				if _, err := ledger.AddExpense(ctx, app.ownerFor(e.CreatedBy), e); err != nil {
					return fmt.Errorf("seed expense %d: %w", i, err)
				}
				counts[services.RecordExpense]++
			}
			for i, in := range seed.Incomes {
				if _, err := ledger.AddIncome(ctx, app.ownerFor(in.CreatedBy), in); err != nil {
					return fmt.Errorf("seed income %d: %w", i, err)
				}
				counts[services.RecordIncome]++
			}
			for i, g := range seed.Goals {
				g.ID = ""
				if _, err := ledger.SetGoal(ctx, app.ownerFor(g.CreatedBy), g); err != nil {
					return fmt.Errorf("seed goal %d: %w", i, err)
				}
				counts[services.RecordGoal]++
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Imported %d expenses, %d incomes, %d goals into %s\n",
				counts[services.RecordExpense], counts[services.RecordIncome], counts[services.RecordGoal], app.dbPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "data/seed.json", "Seed file to import")
	return cmd
}

// withReports opens the ledger and hands fn an uncached report service.
func (app *CLIApp) withReports(ctx context.Context, fn func(*services.ReportService, string) error) error {
	if app.owner == "" {
		return errors.New("owner is required (--owner or $BUDGET_OWNER)")
	}
	th, err := config.LoadThresholds(app.thresholds)
	if err != nil {
		return err
	}
	repo, err := storage.NewSQLiteRepository(app.dbPath, app.logger)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(services.NewReportService(repo, nil, th, app.logger), app.owner)
}

// ownerFor keeps a seed record's owner and falls back to --owner.
func (app *CLIApp) ownerFor(createdBy string) string {
	if strings.TrimSpace(createdBy) != "" {
		return createdBy
	}
	return app.owner
}

func (app *CLIApp) print(w io.Writer, rep *report.Report) error {
	if app.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(w, rep)
	return nil
}

func parseMonthFlag(s string) (core.MonthKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return core.ParseMonthKey(s)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
