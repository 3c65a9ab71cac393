package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"familybudget/internal/amqp"
	"familybudget/internal/core"
)

var now = time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)

func date(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakeReader serves fixed collections and counts fetches.
type fakeReader struct {
	expenses []core.Expense
	incomes  []core.Income
	goals    []core.BudgetGoal

	expenseErr error
	goalErr    error
	gate       chan struct{}
	calls      atomic.Int32
}

func (f *fakeReader) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.expenseErr != nil {
		return nil, f.expenseErr
	}
	return f.expenses, nil
}

func (f *fakeReader) ListIncomes(ctx context.Context, owner string) ([]core.Income, error) {
	return f.incomes, nil
}

func (f *fakeReader) ListGoals(ctx context.Context, owner string) ([]core.BudgetGoal, error) {
	if f.goalErr != nil {
		return nil, f.goalErr
	}
	return f.goals, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ExportRequestMessage
	err  error
}

func (p *fakePublisher) PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func sampleReader() *fakeReader {
	return &fakeReader{
		expenses: []core.Expense{
			{ID: "e1", Title: "Groceries", Amount: core.Money{Cents: 12000}, Category: core.Food, Date: date("2025-03-02"), CreatedBy: "alice"},
			{ID: "e2", Title: "Rent", Amount: core.Money{Cents: 80000}, Category: core.Rent, Date: date("2025-03-01"), CreatedBy: "alice"},
			{ID: "e3", Title: "Rent", Amount: core.Money{Cents: 80000}, Category: core.Rent, Date: date("2025-02-01"), CreatedBy: "alice"},
		},
		incomes: []core.Income{
			{ID: "i1", Title: "Salary", Amount: core.Money{Cents: 200000}, Date: date("2025-03-01"), CreatedBy: "alice"},
		},
		goals: []core.BudgetGoal{
			{ID: "g1", Category: core.Food, MonthlyLimit: core.Money{Cents: 10000}, AlertThreshold: 80, Month: "2025-03", CreatedBy: "alice"},
		},
	}
}
