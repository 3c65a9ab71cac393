package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"familybudget/internal/analysis"
	"familybudget/internal/cache"
	"familybudget/internal/core"
	"familybudget/internal/gateway"
	"familybudget/internal/gateway/memory"
	"familybudget/internal/report"
)

func newLedger(t *testing.T) (*LedgerService, *ReportService, *memory.Store) {
	t.Helper()
	store := memory.New()
	reports := NewReportService(store, cache.NewLRUCache[*report.Report](16, time.Minute), analysis.DefaultThresholds(), nil)
	return NewLedgerService(store, store, reports, nil), reports, store
}

func TestLedgerService_AddExpenseInvalidatesReports(t *testing.T) {
	ledger, reports, _ := newLedger(t)
	ctx := context.Background()

	before, err := reports.Monthly(ctx, "alice", "2025-03", now)
	if err != nil {
		t.Fatal(err)
	}
	if before.Summary.ExpenseCount != 0 {
		t.Fatalf("expected an empty report, got %d expenses", before.Summary.ExpenseCount)
	}

	saved, err := ledger.AddExpense(ctx, "alice", core.Expense{
		Title: "  Groceries ", Amount: core.Money{Cents: 4200}, Category: core.Food, Date: date("2025-03-05"),
		CreatedBy: "mallory",
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if saved.ID == "" || saved.CreatedBy != "alice" || saved.Title != "Groceries" {
		t.Errorf("AddExpense() = %+v", saved)
	}

	after, err := reports.Monthly(ctx, "alice", "2025-03", now)
	if err != nil {
		t.Fatal(err)
	}
	if after.Summary.ExpenseCount != 1 || after.Summary.TotalExpenses.Cents != 4200 {
		t.Errorf("report not refreshed after write: %+v", after.Summary)
	}
}

func TestLedgerService_Validation(t *testing.T) {
	ledger, _, _ := newLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"negative expense", func() error {
			_, err := ledger.AddExpense(ctx, "alice", core.Expense{Title: "x", Amount: core.Money{Cents: -1}, Category: core.Food, Date: date("2025-03-01")})
			return err
		}, core.ErrNegativeAmount},
		{"unknown category", func() error {
			_, err := ledger.AddExpense(ctx, "alice", core.Expense{Title: "x", Amount: core.Money{Cents: 1}, Category: "pets", Date: date("2025-03-01")})
			return err
		}, core.ErrUnknownCategory},
		{"blank income title", func() error {
			_, err := ledger.AddIncome(ctx, "alice", core.Income{Title: "  ", Amount: core.Money{Cents: 1}, Date: date("2025-03-01")})
			return err
		}, core.ErrEmptyTitle},
		{"goal threshold", func() error {
			_, err := ledger.SetGoal(ctx, "alice", core.BudgetGoal{Category: core.Food, MonthlyLimit: core.Money{Cents: 1}, AlertThreshold: 120, Month: "2025-03"})
			return err
		}, core.ErrInvalidThreshold},
		{"missing owner", func() error {
			_, err := ledger.AddIncome(ctx, "", core.Income{Title: "Salary", Amount: core.Money{Cents: 1}, Date: date("2025-03-01")})
			return err
		}, core.ErrEmptyOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLedgerService_GoalsAndDelete(t *testing.T) {
	ledger, _, _ := newLedger(t)
	ctx := context.Background()

	for _, g := range []core.BudgetGoal{
		{Category: core.Rent, MonthlyLimit: core.Money{Cents: 90000}, AlertThreshold: 90, Month: "2025-03"},
		{Category: core.Food, MonthlyLimit: core.Money{Cents: 30000}, AlertThreshold: 80, Month: "2025-03"},
		{Category: core.Food, MonthlyLimit: core.Money{Cents: 30000}, AlertThreshold: 80, Month: "2025-02"},
	} {
		if _, err := ledger.SetGoal(ctx, "alice", g); err != nil {
			t.Fatalf("SetGoal() error = %v", err)
		}
	}

	march, err := ledger.Goals(ctx, "alice", "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(march) != 2 || march[0].Category != core.Food || march[1].Category != core.Rent {
		t.Fatalf("Goals(2025-03) = %+v", march)
	}
	all, _ := ledger.Goals(ctx, "alice", "")
	if len(all) != 3 || all[0].Month != "2025-02" {
		t.Fatalf("Goals() = %+v", all)
	}

	if err := ledger.Delete(ctx, "bob", RecordGoal, march[0].ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("Delete(other owner) error = %v, want ErrNotFound", err)
	}
	if err := ledger.Delete(ctx, "alice", RecordGoal, march[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := ledger.Delete(ctx, "alice", "budget", "x"); err == nil {
		t.Error("Delete(unknown kind) expected error")
	}
}

func TestLedgerService_ListsNewestFirst(t *testing.T) {
	ledger, _, _ := newLedger(t)
	ctx := context.Background()
	for _, d := range []string{"2025-01-10", "2025-03-01", "2025-02-14"} {
		if _, err := ledger.AddIncome(ctx, "alice", core.Income{Title: "Pay", Amount: core.Money{Cents: 100}, Date: date(d)}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := ledger.Incomes(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if list[0].Date.String() != "2025-03-01" || list[2].Date.String() != "2025-01-10" {
		t.Errorf("Incomes() order = %v, %v, %v", list[0].Date, list[1].Date, list[2].Date)
	}
}

func TestLedgerService_ReadOnly(t *testing.T) {
	ledger := NewLedgerService(sampleReader(), nil, nil, nil)
	if !ledger.ReadOnly() {
		t.Fatal("ledger without writer should be read-only")
	}
	if _, err := ledger.AddExpense(context.Background(), "alice", core.Expense{}); !errors.Is(err, gateway.ErrReadOnly) {
		t.Errorf("AddExpense() error = %v, want ErrReadOnly", err)
	}
	if err := ledger.Delete(context.Background(), "alice", RecordExpense, "e1"); !errors.Is(err, gateway.ErrReadOnly) {
		t.Errorf("Delete() error = %v, want ErrReadOnly", err)
	}
	list, err := ledger.Expenses(context.Background(), "alice")
	if err != nil || len(list) != 3 {
		t.Errorf("Expenses() = %d, %v", len(list), err)
	}
}
