package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"familybudget/internal/core"
)

// CategoryTrend compares the second half of a category's expenses against
// the first half, in percent. The input is sorted by date on a copy; the
// first floor(n/2) records form the first half. Fewer than two records, or a
// zero first half, give 0.
func CategoryTrend(expenses []core.Expense) decimal.Decimal {
	if len(expenses) < 2 {
		return decimal.Zero
	}
	sorted := append([]core.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	mid := len(sorted) / 2
	var first, second core.Money
	for _, e := range sorted[:mid] {
		first = first.Add(e.Amount)
	}
	for _, e := range sorted[mid:] {
		second = second.Add(e.Amount)
	}
	return PeriodChange(second, first)
}

// CategoryTrends runs CategoryTrend for each category present in expenses.
func CategoryTrends(expenses []core.Expense) map[core.Category]decimal.Decimal {
	grouped := make(map[core.Category][]core.Expense)
	for _, e := range expenses {
		grouped[e.Category] = append(grouped[e.Category], e)
	}
	out := make(map[core.Category]decimal.Decimal, len(grouped))
	for c, list := range grouped {
		out[c] = CategoryTrend(list)
	}
	return out
}

// PeriodChange is (current-previous)/previous*100, or 0 when previous is not
// positive.
func PeriodChange(current, previous core.Money) decimal.Decimal {
	if previous.Cents <= 0 {
		return decimal.Zero
	}
	return current.Sub(previous).Decimal().Div(previous.Decimal()).Mul(hundred)
}

// IsVolatile reports |trend| > the configured bound.
func IsVolatile(trend decimal.Decimal, th Thresholds) bool {
	return trend.Abs().GreaterThan(dec(th.VolatileTrendPct))
}
