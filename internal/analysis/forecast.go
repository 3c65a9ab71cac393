package analysis

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Forecast projects the next month from recent months. Values are full
// precision; round when emitting.
type Forecast struct {
	NextMonthExpenses decimal.Decimal
	NextMonthIncomes  decimal.Decimal
	ProjectedBalance  decimal.Decimal
}

// ForecastNext averages the trailing window of months. With fewer than two
// months the single month (or zero) is returned as is.
func ForecastNext(months []MonthBucket, window int) Forecast {
	if window < 1 {
		window = 1
	}
	sorted := append([]MonthBucket(nil), months...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	if len(sorted) < 2 {
		var b MonthBucket
		if len(sorted) == 1 {
			b = sorted[0]
		}
		return Forecast{
			NextMonthExpenses: b.ExpenseTotal.Decimal(),
			NextMonthIncomes:  b.IncomeTotal.Decimal(),
			ProjectedBalance:  b.Balance().Decimal(),
		}
	}

	if len(sorted) > window {
		sorted = sorted[len(sorted)-window:]
	}
	expenses, incomes := decimal.Zero, decimal.Zero
	for _, b := range sorted {
		expenses = expenses.Add(b.ExpenseTotal.Decimal())
		incomes = incomes.Add(b.IncomeTotal.Decimal())
	}
	n := decimal.NewFromInt(int64(len(sorted)))
	f := Forecast{
		NextMonthExpenses: expenses.Div(n),
		NextMonthIncomes:  incomes.Div(n),
	}
	f.ProjectedBalance = f.NextMonthIncomes.Sub(f.NextMonthExpenses)
	return f
}
