package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"familybudget/internal/core"
)

// GoalState classifies a goal against its spend.
type GoalState string

const (
	GoalOK       GoalState = "ok"
	GoalWarning  GoalState = "warning"
	GoalExceeded GoalState = "exceeded"
)

// GoalStatus is one goal evaluated against the expenses of its month.
type GoalStatus struct {
	Goal      core.BudgetGoal
	Spent     core.Money
	Remaining core.Money
	// Percentage is spent/limit*100 capped at 100.
	Percentage decimal.Decimal
	State      GoalState
}

// EvaluateGoals sums, for each goal, the expenses in its category during its
// month. Output follows the input goal order.
func EvaluateGoals(goals []core.BudgetGoal, expenses []core.Expense) []GoalStatus {
	type key struct {
		month    core.MonthKey
		category core.Category
	}
	spent := make(map[key]core.Money)
	for _, e := range expenses {
		k := key{core.MonthKeyOf(e.Date), e.Category}
		spent[k] = spent[k].Add(e.Amount)
	}

	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		s := spent[key{g.Month, g.Category}]
		out = append(out, evaluateGoal(g, s))
	}
	return out
}

func evaluateGoal(g core.BudgetGoal, spent core.Money) GoalStatus {
	st := GoalStatus{Goal: g, Spent: spent, Remaining: g.MonthlyLimit.Sub(spent)}
	if g.MonthlyLimit.Cents <= 0 {
		if spent.Cents > 0 {
			st.Percentage, st.State = hundred, GoalExceeded
		} else {
			st.Percentage, st.State = decimal.Zero, GoalOK
		}
		return st
	}
	pct := spent.Decimal().Div(g.MonthlyLimit.Decimal()).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	st.Percentage = pct
	switch {
	case pct.GreaterThanOrEqual(hundred):
		st.State = GoalExceeded
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(g.AlertThreshold))):
		st.State = GoalWarning
	default:
		st.State = GoalOK
	}
	return st
}

// GoalsForMonth keeps goals of month m, ordered by category.
func GoalsForMonth(goals []core.BudgetGoal, m core.MonthKey) []core.BudgetGoal {
	out := make([]core.BudgetGoal, 0)
	for _, g := range goals {
		if g.Month == m {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// CountGoals counts statuses in any of the given states.
func CountGoals(statuses []GoalStatus, states ...GoalState) int {
	n := 0
	for _, s := range statuses {
		for _, want := range states {
			if s.State == want {
				n++
				break
			}
		}
	}
	return n
}
