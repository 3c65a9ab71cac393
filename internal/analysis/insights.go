package analysis

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"familybudget/internal/core"
)

// Severity grades an insight.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
	SeveritySuccess Severity = "success"
)

// Insight is one rule outcome.
type Insight struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// Insight categories.
const (
	TopicSavings       = "Savings"
	TopicBalance       = "Balance"
	TopicLargeExpenses = "Large expenses"
	TopicHabits        = "Habits"
	TopicVolatility    = "Volatility"
	TopicGoals         = "Goals"
	TopicTrend         = "Spending trend"
	TopicTopCategory   = "Top category"
)

// Facts is everything the rule set reads. Zero-valued optional parts make
// their rules not fire.
type Facts struct {
	Aggregates Aggregates
	Trends     map[core.Category]decimal.Decimal
	Goals      []GoalStatus
	Patterns   Patterns
	// ExpenseChange is the month-over-month change in percent; nil when no
	// comparison is available.
	ExpenseChange *decimal.Decimal
}

// GenerateInsights evaluates every rule in a fixed order.
func GenerateInsights(f Facts, th Thresholds) []Insight {
	a := f.Aggregates
	out := make([]Insight, 0)

	if a.SavingsRate.LessThan(dec(th.SavingsLowPct)) && a.NetBalance.Cents >= 0 {
		out = append(out, Insight{SeverityWarning, TopicSavings,
			fmt.Sprintf("Your savings rate is low. Aim for at least %s%%.", dec(th.SavingsGoodPct).String())})
	}
	if a.NetBalance.Cents < 0 {
		out = append(out, Insight{SeverityWarning, TopicBalance,
			fmt.Sprintf("Your expenses exceed your income by %s.", a.NetBalance.Abs())})
	}
	if a.NetBalance.Cents > 0 {
		out = append(out, Insight{SeveritySuccess, TopicSavings,
			fmt.Sprintf("You saved %s%% of your income.", pct1(a.SavingsRate))})
	}
	if f.Patterns.Large > th.LargeExpensesPerMonth*a.DistinctMonths() {
		out = append(out, Insight{SeverityInfo, TopicLargeExpenses,
			fmt.Sprintf("You have %d large expenses. Plan them ahead.", f.Patterns.Large)})
	}
	if day, amount, ok := a.TopWeekday(); ok {
		share := a.ExpenseShare(amount)
		if share.GreaterThan(dec(th.WeekdaySharePct)) {
			out = append(out, Insight{SeverityInfo, TopicHabits,
				fmt.Sprintf("You spend the most on %s (%s%% of the total).", day, pct1(share))})
		}
	}
	if n := countVolatile(f.Trends, th); n > 0 {
		out = append(out, Insight{SeverityAlert, TopicVolatility,
			fmt.Sprintf("%d categories show strong variation.", n)})
	}
	if n := CountGoals(f.Goals, GoalExceeded); n > 0 {
		out = append(out, Insight{SeverityAlert, TopicGoals,
			fmt.Sprintf("%d budget goals exceeded.", n)})
	}
	if f.ExpenseChange != nil && f.ExpenseChange.GreaterThan(dec(th.ExpenseRisePct)) {
		out = append(out, Insight{SeverityInfo, TopicTrend,
			fmt.Sprintf("Your expenses rose by %s%% compared with the previous month.", pct1(*f.ExpenseChange))})
	}
	if top, ok := a.TopCategory(); ok {
		out = append(out, Insight{SeverityInfo, TopicTopCategory,
			fmt.Sprintf("Your main spending category is %s (%s%% of the total).", top.Category, pct1(a.ExpenseShare(top.Total)))})
	}
	return out
}

// GenerateRecommendations evaluates the recommendation rules in a fixed order.
func GenerateRecommendations(f Facts, th Thresholds) []string {
	a := f.Aggregates
	out := make([]string, 0)

	if a.NetBalance.Cents < 0 {
		out = append(out, "Identify non-essential expenses to cut next month.")
	}
	if n := CountGoals(f.Goals, GoalWarning, GoalExceeded); n > 0 {
		out = append(out, fmt.Sprintf("Review your budget limits for %d categories.", n))
	}
	if a.SavingsRate.LessThan(dec(th.SavingsLowPct)) && a.NetBalance.Cents >= 0 {
		out = append(out, fmt.Sprintf("Try to save at least %s%% of your income each month.", dec(th.SavingsGoodPct).String()))
	}
	if top, ok := a.TopCategory(); ok && a.ExpenseShare(top.Total).GreaterThan(dec(th.DiversifySharePct)) {
		out = append(out, fmt.Sprintf("Diversify your spending: %s accounts for more than %s%% of the total.", top.Category, dec(th.DiversifySharePct).String()))
	}
	return out
}

func countVolatile(trends map[core.Category]decimal.Decimal, th Thresholds) int {
	n := 0
	for _, t := range trends {
		if IsVolatile(t, th) {
			n++
		}
	}
	return n
}

func pct1(d decimal.Decimal) string {
	return d.Round(1).StringFixed(1)
}

// WeekdayName is exported for renderers that label weekday indexes.
func WeekdayName(i int) string {
	return time.Weekday(i).String()
}
