package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"familybudget/internal/core"
	"familybudget/internal/gateway"
	applog "familybudget/internal/log"
)

// Record kinds used in logs and errors.
const (
	RecordExpense = "expense"
	RecordIncome  = "income"
	RecordGoal    = "goal"
)

// Invalidator drops cached reports for an owner.
type Invalidator interface {
	Invalidate(owner string) int
}

// LedgerService validates and persists ledger records, then invalidates the
// owner's cached reports. Writes go to the store first; a failed write leaves
// the cache untouched.
type LedgerService struct {
	reader      gateway.Reader
	writer      gateway.Writer
	invalidator Invalidator
	logger      *applog.Logger
	structured  *applog.StructuredLogger
}

// NewLedgerService wires the ledger. A nil writer makes every write fail with
// gateway.ErrReadOnly; invalidator and logger may be nil.
func NewLedgerService(reader gateway.Reader, writer gateway.Writer, invalidator Invalidator, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	return &LedgerService{
		reader:      reader,
		writer:      writer,
		invalidator: invalidator,
		logger:      logger,
		structured:  applog.NewStructuredLogger(logger),
	}
}

// ReadOnly reports whether writes are rejected.
func (s *LedgerService) ReadOnly() bool {
	return s.writer == nil
}

// Expenses lists owner's expenses, newest first.
func (s *LedgerService) Expenses(ctx context.Context, owner string) ([]core.Expense, error) {
	list, err := s.reader.ListExpenses(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

// Incomes lists owner's incomes, newest first.
func (s *LedgerService) Incomes(ctx context.Context, owner string) ([]core.Income, error) {
	list, err := s.reader.ListIncomes(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

// Goals lists owner's goals, optionally restricted to one month, ordered by
// month then category.
func (s *LedgerService) Goals(ctx context.Context, owner string, month core.MonthKey) ([]core.BudgetGoal, error) {
	list, err := s.reader.ListGoals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.BudgetGoal, 0, len(list))
	for _, g := range list {
		if month == "" || g.Month == month {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *LedgerService) AddExpense(ctx context.Context, owner string, e core.Expense) (core.Expense, error) {
	if err := s.writable(); err != nil {
		return core.Expense{}, err
	}
	e.CreatedBy = owner
	e.Title = strings.TrimSpace(e.Title)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	saved, err := s.writer.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, s.writeFailed(ctx, owner, RecordExpense, applog.OpCreate, err)
	}
	s.written(ctx, owner, RecordExpense, saved.ID, saved.Amount.Cents)
	return saved, nil
}

func (s *LedgerService) AddIncome(ctx context.Context, owner string, in core.Income) (core.Income, error) {
	if err := s.writable(); err != nil {
		return core.Income{}, err
	}
	in.CreatedBy = owner
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	saved, err := s.writer.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, s.writeFailed(ctx, owner, RecordIncome, applog.OpCreate, err)
	}
	s.written(ctx, owner, RecordIncome, saved.ID, saved.Amount.Cents)
	return saved, nil
}

// SetGoal creates or updates the goal for (category, month) of owner.
func (s *LedgerService) SetGoal(ctx context.Context, owner string, g core.BudgetGoal) (core.BudgetGoal, error) {
	if err := s.writable(); err != nil {
		return core.BudgetGoal{}, err
	}
	g.CreatedBy = owner
	if err := g.Validate(); err != nil {
		return core.BudgetGoal{}, err
	}
	saved, err := s.writer.UpsertGoal(ctx, g)
	if err != nil {
		return core.BudgetGoal{}, s.writeFailed(ctx, owner, RecordGoal, applog.OpUpdate, err)
	}
	s.written(ctx, owner, RecordGoal, saved.ID, saved.MonthlyLimit.Cents)
	return saved, nil
}

// Delete removes one record of kind owned by owner.
func (s *LedgerService) Delete(ctx context.Context, owner, kind, id string) error {
	if err := s.writable(); err != nil {
		return err
	}
	var err error
	switch kind {
	case RecordExpense:
		err = s.writer.DeleteExpense(ctx, owner, id)
	case RecordIncome:
		err = s.writer.DeleteIncome(ctx, owner, id)
	case RecordGoal:
		err = s.writer.DeleteGoal(ctx, owner, id)
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	if err != nil {
		return s.writeFailed(ctx, owner, kind, applog.OpDelete, err)
	}
	s.invalidate(ctx, owner)
	s.logger.InfoContext(ctx, "Ledger record deleted", applog.NewFields().
		WithOwner(owner).
		WithRecord(kind, id, 0).
		WithOperation(applog.OpDelete).
		ToSlice()...)
	return nil
}

func (s *LedgerService) writable() error {
	if s.writer == nil {
		return gateway.ErrReadOnly
	}
	return nil
}

func (s *LedgerService) written(ctx context.Context, owner, kind, id string, cents int64) {
	s.invalidate(ctx, owner)
	s.structured.LogRecordWritten(ctx, owner, kind, id, cents)
}

func (s *LedgerService) invalidate(ctx context.Context, owner string) {
	if s.invalidator == nil {
		return
	}
	if n := s.invalidator.Invalidate(owner); n > 0 {
		s.logger.DebugContext(ctx, "Cached reports invalidated", applog.FieldOwner, owner, "removed", n)
	}
}

func (s *LedgerService) writeFailed(ctx context.Context, owner, kind, op string, err error) error {
	s.structured.LogError(ctx, "Ledger write failed", err, applog.ComponentLedger, op,
		applog.NewFields().WithOwner(owner).WithRecord(kind, "", 0))
	return fmt.Errorf("%s %s: %w", op, kind, err)
}
