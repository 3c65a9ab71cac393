package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"familybudget/internal/analysis"
	"familybudget/internal/core"
)

func assemble(in assembly, th analysis.Thresholds) *Report {
	agg := in.agg
	trends := analysis.CategoryTrends(in.expenses)
	patterns := analysis.DetectPatterns(in.expenses, agg.AvgMonthlyExpense, th)
	health := analysis.ScoreHealth(analysis.HealthInputFor(agg, in.incomes), th)
	forecast := analysis.ForecastNext(in.history, th.ForecastWindow)

	facts := analysis.Facts{
		Aggregates:    agg,
		Trends:        trends,
		Goals:         in.goals,
		Patterns:      patterns,
		ExpenseChange: in.expenseChange,
	}

	return &Report{
		Kind:        in.kind,
		GeneratedAt: in.now,
		Period:      in.period,
		Summary: Summary{
			TotalExpenses:     agg.TotalExpenses,
			TotalIncomes:      agg.TotalIncomes,
			NetBalance:        agg.NetBalance,
			SavingsRate:       percent(agg.SavingsRate),
			AvgMonthlyExpense: amount(agg.AvgMonthlyExpense),
			AvgMonthlyIncome:  amount(agg.AvgMonthlyIncome),
			TransactionCount:  agg.TransactionCount(),
			ExpenseCount:      agg.ExpenseCount,
			IncomeCount:       agg.IncomeCount,
			DistinctMonths:    agg.DistinctMonths(),
		},
		Categories:  categoryLines(agg, trends, th),
		Weekdays:    weekdayLines(agg),
		Months:      monthLines(agg),
		Patterns:    Patterns{Recurring: patterns.Recurring, Large: patterns.Large, SmallFrequent: patterns.SmallFrequent},
		TopExpenses: topExpenses(in.expenses, topExpenseCount),
		Goals:       goalLines(in.goals),
		Health:      Health{Score: health.Score, Rating: health.Rating},
		Forecast: Forecast{
			NextMonthExpenses: amount(forecast.NextMonthExpenses),
			NextMonthIncomes:  amount(forecast.NextMonthIncomes),
			ProjectedBalance:  amount(forecast.ProjectedBalance),
		},
		Insights:        analysis.GenerateInsights(facts, th),
		Recommendations: analysis.GenerateRecommendations(facts, th),
		Expenses:        in.expenses,
		Incomes:         in.incomes,
	}
}

func categoryLines(agg analysis.Aggregates, trends map[core.Category]decimal.Decimal, th analysis.Thresholds) []CategoryLine {
	sorted := agg.SortedCategories()
	out := make([]CategoryLine, 0, len(sorted))
	for _, c := range sorted {
		trend := trends[c.Category]
		out = append(out, CategoryLine{
			Category: c.Category,
			Total:    c.Total,
			Count:    c.Count,
			Average:  amount(c.Average()),
			Min:      c.Min(),
			Max:      c.Max(),
			Share:    percent(agg.ExpenseShare(c.Total)),
			Trend:    percent(trend),
			Volatile: analysis.IsVolatile(trend, th),
		})
	}
	return out
}

func weekdayLines(agg analysis.Aggregates) []WeekdayLine {
	out := make([]WeekdayLine, 0, len(agg.Weekdays))
	for i, v := range agg.Weekdays {
		out = append(out, WeekdayLine{
			Index:  i,
			Day:    analysis.WeekdayName(i),
			Amount: v,
			Share:  percent(agg.ExpenseShare(v)),
		})
	}
	return out
}

func monthLines(agg analysis.Aggregates) []MonthLine {
	buckets := agg.SortedMonths()
	out := make([]MonthLine, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, MonthLine{
			Month:            b.Month,
			Expenses:         b.ExpenseTotal,
			Incomes:          b.IncomeTotal,
			Balance:          b.Balance(),
			TransactionCount: b.TransactionCount,
		})
	}
	return out
}

// topExpenses orders by amount descending, then most recent first.
func topExpenses(expenses []core.Expense, n int) []TopExpense {
	sorted := append([]core.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Amount.Cents != sorted[j].Amount.Cents {
			return sorted[i].Amount.Cents > sorted[j].Amount.Cents
		}
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]TopExpense, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, TopExpense{Title: e.Title, Amount: e.Amount, Category: e.Category, Date: e.Date})
	}
	return out
}

func goalLines(statuses []analysis.GoalStatus) []GoalLine {
	out := make([]GoalLine, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, GoalLine{
			ID:             s.Goal.ID,
			Category:       s.Goal.Category,
			Month:          s.Goal.Month,
			Limit:          s.Goal.MonthlyLimit,
			Spent:          s.Spent,
			Remaining:      s.Remaining,
			Percentage:     percent(s.Percentage),
			AlertThreshold: s.Goal.AlertThreshold,
			Status:         s.State,
		})
	}
	return out
}
