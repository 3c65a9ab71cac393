package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"familybudget/internal/core"
	"familybudget/internal/gateway"
	applog "familybudget/internal/log"
)

// ErrDuplicateGoal is returned when a goal update would collide with another
// goal of the same category, month and owner.
var ErrDuplicateGoal = gateway.ErrDuplicateGoal

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

var _ gateway.Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it to the latest schema.
func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger.WithComponent(applog.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, category, date, is_recurring, notes, created_by
		FROM expenses WHERE created_by = ? ORDER BY date, created_at`, owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		var (
			e        core.Expense
			category string
			date     string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount.Cents, &category, &date, &e.IsRecurring, &e.Notes, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Category, err = core.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, owner string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, date, is_recurring, notes, created_by
		FROM incomes WHERE created_by = ? ORDER BY date, created_at`, owner)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	out := make([]core.Income, 0)
	for rows.Next() {
		var (
			in   core.Income
			date string
		)
		if err := rows.Scan(&in.ID, &in.Title, &in.Amount.Cents, &date, &in.IsRecurring, &in.Notes, &in.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if in.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("income %s: %w", in.ID, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, owner string) ([]core.BudgetGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, monthly_limit_cents, alert_threshold, month, created_by
		FROM budget_goals WHERE created_by = ? ORDER BY month, category`, owner)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	out := make([]core.BudgetGoal, 0)
	for rows.Next() {
		var (
			g        core.BudgetGoal
			category string
			month    string
		)
		if err := rows.Scan(&g.ID, &category, &g.MonthlyLimit.Cents, &g.AlertThreshold, &month, &g.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.Category, err = core.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		if g.Month, err = core.ParseMonthKey(month); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, title, amount_cents, category, date, is_recurring, notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount.Cents, string(e.Category), e.Date.String(), e.IsRecurring, e.Notes, e.CreatedBy)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	r.logger.InfoContext(ctx, "Expense saved to SQLite", "id", e.ID, applog.FieldAmountCents, e.Amount.Cents, applog.FieldCategory, e.Category, applog.FieldOwner, e.CreatedBy)
	return e, nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (id, title, amount_cents, date, is_recurring, notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Amount.Cents, in.Date.String(), in.IsRecurring, in.Notes, in.CreatedBy)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	r.logger.InfoContext(ctx, "Income saved to SQLite", "id", in.ID, applog.FieldAmountCents, in.Amount.Cents, applog.FieldOwner, in.CreatedBy)
	return in, nil
}

// UpsertGoal inserts or updates on the (category, month, owner) key when g has
// no id; with an id it updates that goal in place.
func (r *SQLiteRepository) UpsertGoal(ctx context.Context, g core.BudgetGoal) (core.BudgetGoal, error) {
	if err := g.Validate(); err != nil {
		return core.BudgetGoal{}, err
	}

	if g.ID == "" {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO budget_goals (id, category, monthly_limit_cents, alert_threshold, month, created_by)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (category, month, created_by) DO UPDATE SET
				monthly_limit_cents = excluded.monthly_limit_cents,
				alert_threshold     = excluded.alert_threshold,
				updated_at          = CURRENT_TIMESTAMP
			RETURNING id`,
			uuid.NewString(), string(g.Category), g.MonthlyLimit.Cents, g.AlertThreshold, string(g.Month), g.CreatedBy,
		).Scan(&g.ID)
		if err != nil {
			return core.BudgetGoal{}, fmt.Errorf("upsert goal: %w", err)
		}
		return g, nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE budget_goals
		SET category = ?, monthly_limit_cents = ?, alert_threshold = ?, month = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND created_by = ?`,
		string(g.Category), g.MonthlyLimit.Cents, g.AlertThreshold, string(g.Month), g.ID, g.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return core.BudgetGoal{}, ErrDuplicateGoal
		}
		return core.BudgetGoal{}, fmt.Errorf("update goal: %w", err)
	}
	if err := requireOneRow(res); err != nil {
		return core.BudgetGoal{}, err
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, owner, id string) error {
	return r.deleteOwned(ctx, "expenses", owner, id)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, owner, id string) error {
	return r.deleteOwned(ctx, "incomes", owner, id)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, owner, id string) error {
	return r.deleteOwned(ctx, "budget_goals", owner, id)
}

// deleteOwned only runs against the fixed table names above.
func (r *SQLiteRepository) deleteOwned(ctx context.Context, table, owner, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ? AND created_by = ?", id, owner)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if err := requireOneRow(res); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Record deleted", applog.FieldOperation, applog.OpDelete, "table", table, "id", id, applog.FieldOwner, owner)
	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		(se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"))
}
