// Package gateway defines the store contract the reporting core reads from
// and the ledger writes to.
package gateway

import (
	"context"
	"errors"

	"familybudget/internal/core"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateGoal = errors.New("a goal already exists for this category and month")
	ErrReadOnly      = errors.New("store is read-only")
)

// Ports for outbound adapters. Every call is scoped to one owner and returns
// the full, unordered collection.
type (
	ExpenseLister interface {
		ListExpenses(ctx context.Context, owner string) ([]core.Expense, error)
	}

	IncomeLister interface {
		ListIncomes(ctx context.Context, owner string) ([]core.Income, error)
	}

	GoalLister interface {
		ListGoals(ctx context.Context, owner string) ([]core.BudgetGoal, error)
	}

	Reader interface {
		ExpenseLister
		IncomeLister
		GoalLister
	}

	// Writer persists ledger records. Create assigns an id when none is set.
	// UpsertGoal keeps at most one goal per (category, month, owner).
	Writer interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
		UpsertGoal(ctx context.Context, g core.BudgetGoal) (core.BudgetGoal, error)
		DeleteExpense(ctx context.Context, owner, id string) error
		DeleteIncome(ctx context.Context, owner, id string) error
		DeleteGoal(ctx context.Context, owner, id string) error
	}

	Store interface {
		Reader
		Writer
	}
)
