package analysis

import (
	"github.com/shopspring/decimal"

	"familybudget/internal/core"
)

// Patterns counts notable expense shapes over a period.
type Patterns struct {
	Recurring     int
	Large         int
	SmallFrequent int
}

// DetectPatterns classifies each expense against the average monthly expense:
// large above LargeExpenseRatio of it, small below SmallExpenseRatio.
func DetectPatterns(expenses []core.Expense, avgMonthlyExpense decimal.Decimal, th Thresholds) Patterns {
	large := avgMonthlyExpense.Mul(dec(th.LargeExpenseRatio))
	small := avgMonthlyExpense.Mul(dec(th.SmallExpenseRatio))

	var p Patterns
	for _, e := range expenses {
		amount := e.Amount.Decimal()
		if e.IsRecurring {
			p.Recurring++
		}
		if amount.GreaterThan(large) {
			p.Large++
		}
		if amount.LessThan(small) {
			p.SmallFrequent++
		}
	}
	return p
}
