package analysis

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"familybudget/internal/core"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal sums the expenses of one category.
type CategoryTotal struct {
	Category core.Category
	Total    core.Money
	Count    int
	Amounts  []core.Money
}

// Average is Total/Count, zero for an empty category.
func (c CategoryTotal) Average() decimal.Decimal {
	if c.Count == 0 {
		return decimal.Zero
	}
	return c.Total.Decimal().Div(decimal.NewFromInt(int64(c.Count)))
}

// Min and Max return the extreme amounts; both are zero when Amounts is empty.
func (c CategoryTotal) Min() core.Money {
	if len(c.Amounts) == 0 {
		return core.Money{}
	}
	m := c.Amounts[0]
	for _, a := range c.Amounts[1:] {
		if a.Cents < m.Cents {
			m = a
		}
	}
	return m
}

func (c CategoryTotal) Max() core.Money {
	if len(c.Amounts) == 0 {
		return core.Money{}
	}
	m := c.Amounts[0]
	for _, a := range c.Amounts[1:] {
		if a.Cents > m.Cents {
			m = a
		}
	}
	return m
}

// MonthBucket holds one month of activity, expenses and incomes together.
type MonthBucket struct {
	Month            core.MonthKey
	ExpenseTotal     core.Money
	IncomeTotal      core.Money
	TransactionCount int
}

// Balance is IncomeTotal - ExpenseTotal.
func (b MonthBucket) Balance() core.Money {
	return b.IncomeTotal.Sub(b.ExpenseTotal)
}

// Aggregates is the result of one pass over a filtered record set.
type Aggregates struct {
	TotalExpenses core.Money
	TotalIncomes  core.Money
	NetBalance    core.Money
	ExpenseCount  int
	IncomeCount   int

	// Categories only lists categories present in the data.
	Categories map[core.Category]CategoryTotal
	Months     map[core.MonthKey]MonthBucket
	// Weekdays is indexed by time.Weekday (0 = Sunday).
	Weekdays [7]core.Money

	AvgMonthlyExpense decimal.Decimal
	AvgMonthlyIncome  decimal.Decimal
	SavingsRate       decimal.Decimal
}

// Aggregate computes totals, buckets and rates. It never fails: empty input
// yields zero totals.
func Aggregate(expenses []core.Expense, incomes []core.Income) Aggregates {
	a := Aggregates{
		Categories: make(map[core.Category]CategoryTotal),
		Months:     make(map[core.MonthKey]MonthBucket),
	}

	for _, e := range expenses {
		a.TotalExpenses = a.TotalExpenses.Add(e.Amount)
		a.ExpenseCount++

		ct := a.Categories[e.Category]
		ct.Category = e.Category
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
		ct.Amounts = append(ct.Amounts, e.Amount)
		a.Categories[e.Category] = ct

		key := core.MonthKeyOf(e.Date)
		b := a.Months[key]
		b.Month = key
		b.ExpenseTotal = b.ExpenseTotal.Add(e.Amount)
		b.TransactionCount++
		a.Months[key] = b

		wd := e.Date.Weekday()
		a.Weekdays[wd] = a.Weekdays[wd].Add(e.Amount)
	}

	for _, in := range incomes {
		a.TotalIncomes = a.TotalIncomes.Add(in.Amount)
		a.IncomeCount++

		key := core.MonthKeyOf(in.Date)
		b := a.Months[key]
		b.Month = key
		b.IncomeTotal = b.IncomeTotal.Add(in.Amount)
		b.TransactionCount++
		a.Months[key] = b
	}

	a.NetBalance = a.TotalIncomes.Sub(a.TotalExpenses)

	months := decimal.NewFromInt(int64(a.DistinctMonths()))
	a.AvgMonthlyExpense = a.TotalExpenses.Decimal().Div(months)
	a.AvgMonthlyIncome = a.TotalIncomes.Decimal().Div(months)
	a.SavingsRate = Percent(a.NetBalance, a.TotalIncomes)
	return a
}

// DistinctMonths is the number of month buckets, floored at 1 so averages
// never divide by zero.
func (a Aggregates) DistinctMonths() int {
	if len(a.Months) == 0 {
		return 1
	}
	return len(a.Months)
}

// TransactionCount counts expenses and incomes.
func (a Aggregates) TransactionCount() int {
	return a.ExpenseCount + a.IncomeCount
}

// SortedMonths returns the buckets in ascending month order.
func (a Aggregates) SortedMonths() []MonthBucket {
	out := make([]MonthBucket, 0, len(a.Months))
	for _, b := range a.Months {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// SortedCategories orders by total descending, ties broken by category key.
func (a Aggregates) SortedCategories() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(a.Categories))
	for _, c := range a.Categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategory is the first entry of SortedCategories.
func (a Aggregates) TopCategory() (CategoryTotal, bool) {
	sorted := a.SortedCategories()
	if len(sorted) == 0 {
		return CategoryTotal{}, false
	}
	return sorted[0], true
}

// ExpenseShare is part's percentage of total expenses, zero when there are none.
func (a Aggregates) ExpenseShare(part core.Money) decimal.Decimal {
	return Percent(part, a.TotalExpenses)
}

// TopWeekday returns the weekday with the highest spend; ties go to the lower
// index. ok is false when nothing was spent.
func (a Aggregates) TopWeekday() (day time.Weekday, amount core.Money, ok bool) {
	for i, v := range a.Weekdays {
		if v.Cents > amount.Cents {
			day, amount, ok = time.Weekday(i), v, true
		}
	}
	return day, amount, ok
}

// Percent returns part/whole*100, or zero when whole is not positive.
func Percent(part, whole core.Money) decimal.Decimal {
	if whole.Cents <= 0 {
		return decimal.Zero
	}
	return part.Decimal().Div(whole.Decimal()).Mul(hundred)
}
