package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"familybudget/internal/analysis"
	"familybudget/internal/core"
)

const (
	DefaultPeriodMonths = 6
	MaxPeriodMonths     = 60
	topExpenseCount     = 5
)

var ErrInvalidPeriod = errors.New("period must be between 1 and 60 months")

// BuildMonthlyReport reports on one calendar month. An empty month means
// the month containing now.
func BuildMonthlyReport(data Dataset, month core.MonthKey, now time.Time, th analysis.Thresholds) (*Report, error) {
	if month == "" {
		month = core.MonthKeyOf(core.DateOf(now))
	}
	r, err := analysis.MonthRange(month)
	if err != nil {
		return nil, err
	}
	prev := month.Prev()
	prevRange, err := analysis.MonthRange(prev)
	if err != nil {
		return nil, err
	}

	expenses := analysis.Filter(data.Expenses, r)
	incomes := analysis.Filter(data.Incomes, r)
	agg := analysis.Aggregate(expenses, incomes)
	prevAgg := analysis.Aggregate(analysis.Filter(data.Expenses, prevRange), analysis.Filter(data.Incomes, prevRange))

	cmp := &Comparison{
		PreviousMonth:    prev,
		PreviousExpenses: prevAgg.TotalExpenses,
		PreviousIncomes:  prevAgg.TotalIncomes,
	}
	expenseChange := analysis.PeriodChange(agg.TotalExpenses, prevAgg.TotalExpenses)
	cmp.ExpenseChange = percent(expenseChange)
	cmp.IncomeChange = percent(analysis.PeriodChange(agg.TotalIncomes, prevAgg.TotalIncomes))

	// The forecast looks back over the window ending at this month.
	historyRange := analysis.Range{End: r.End}
	historyRange.Start, _, _ = month.AddMonths(-(max(th.ForecastWindow, 1) - 1)).Bounds()
	history := analysis.Aggregate(analysis.Filter(data.Expenses, historyRange), analysis.Filter(data.Incomes, historyRange))

	rep := assemble(assembly{
		kind:          KindMonthly,
		now:           now,
		period:        Period{Month: month, Start: r.Start, End: r.End},
		expenses:      expenses,
		incomes:       incomes,
		agg:           agg,
		history:       history.SortedMonths(),
		goals:         analysis.EvaluateGoals(analysis.GoalsForMonth(data.Goals, month), data.Expenses),
		expenseChange: &expenseChange,
	}, th)
	rep.Comparison = cmp
	return rep, nil
}

// BuildSpendingAnalysis reports on the trailing months ending at now.
// months = 0 selects the default window.
func BuildSpendingAnalysis(data Dataset, months int, now time.Time, th analysis.Thresholds) (*Report, error) {
	if months == 0 {
		months = DefaultPeriodMonths
	}
	if months < 1 || months > MaxPeriodMonths {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, months)
	}
	r := analysis.TrailingMonths(now, months)
	expenses := analysis.Filter(data.Expenses, r)
	incomes := analysis.Filter(data.Incomes, r)
	agg := analysis.Aggregate(expenses, incomes)

	first, last := core.MonthKeyOf(r.Start), core.MonthKeyOf(r.End)
	var goals []core.BudgetGoal
	for _, g := range data.Goals {
		if g.Month >= first && g.Month <= last {
			goals = append(goals, g)
		}
	}
	sortGoals(goals)

	return assemble(assembly{
		kind:     KindAnalysis,
		now:      now,
		period:   Period{Months: months, Start: r.Start, End: r.End},
		expenses: expenses,
		incomes:  incomes,
		agg:      agg,
		history:  agg.SortedMonths(),
		goals:    analysis.EvaluateGoals(goals, data.Expenses),
	}, th), nil
}

// BuildLedgerReport covers every record in data. The period runs from the
// earliest to the latest record date, or is the single day of now when data
// holds no transactions.
func BuildLedgerReport(data Dataset, now time.Time, th analysis.Thresholds) *Report {
	start, end := core.DateOf(now), core.DateOf(now)
	first := true
	span := func(d core.Date) {
		if first {
			start, end, first = d, d, false
			return
		}
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	for _, e := range data.Expenses {
		span(e.Date)
	}
	for _, in := range data.Incomes {
		span(in.Date)
	}

	goals := append([]core.BudgetGoal(nil), data.Goals...)
	sortGoals(goals)
	agg := analysis.Aggregate(data.Expenses, data.Incomes)
	return assemble(assembly{
		kind:     KindLedger,
		now:      now,
		period:   Period{Start: start, End: end},
		expenses: data.Expenses,
		incomes:  data.Incomes,
		agg:      agg,
		history:  agg.SortedMonths(),
		goals:    analysis.EvaluateGoals(goals, data.Expenses),
	}, th)
}

func sortGoals(goals []core.BudgetGoal) {
	sort.SliceStable(goals, func(i, j int) bool {
		if goals[i].Month != goals[j].Month {
			return goals[i].Month < goals[j].Month
		}
		return goals[i].Category < goals[j].Category
	})
}

type assembly struct {
	kind          Kind
	now           time.Time
	period        Period
	expenses      []core.Expense
	incomes       []core.Income
	agg           analysis.Aggregates
	history       []analysis.MonthBucket
	goals         []analysis.GoalStatus
	expenseChange *decimal.Decimal
}
