package analysis

import (
	"testing"

	"github.com/shopspring/decimal"

	"familybudget/internal/core"
)

func exp(cat core.Category, cents int64, date string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{Title: string(cat), Amount: core.Money{Cents: cents}, Category: cat, Date: d, CreatedBy: "alice"}
}

func inc(cents int64, date string) core.Income {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Income{Title: "salary", Amount: core.Money{Cents: cents}, Date: d, CreatedBy: "alice"}
}

func requireDecimal(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
