// Package report assembles the analysis components into the report object
// consumed by the JSON API, the exporters and the CLI.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"familybudget/internal/analysis"
	"familybudget/internal/core"
)

type Kind string

const (
	KindMonthly  Kind = "monthly"
	KindAnalysis Kind = "analysis"
	KindLedger   Kind = "ledger"
)

// Dataset is an owner's full ledger as fetched from a store.
type Dataset struct {
	Expenses []core.Expense
	Incomes  []core.Income
	Goals    []core.BudgetGoal
}

// Number is a rounded decimal emitted as a bare JSON number.
type Number struct {
	decimal.Decimal
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	return n.Decimal.UnmarshalJSON(b)
}

func amount(d decimal.Decimal) Number  { return Number{d.Round(2)} }
func percent(d decimal.Decimal) Number { return Number{d.Round(1)} }

type Report struct {
	Kind            Kind               `json:"kind"`
	GeneratedAt     time.Time          `json:"generated_at"`
	Period          Period             `json:"period"`
	Summary         Summary            `json:"summary"`
	Comparison      *Comparison        `json:"comparison,omitempty"`
	Categories      []CategoryLine     `json:"categories"`
	Weekdays        []WeekdayLine      `json:"weekdays"`
	Months          []MonthLine        `json:"months"`
	Patterns        Patterns           `json:"patterns"`
	TopExpenses     []TopExpense       `json:"top_expenses"`
	Goals           []GoalLine         `json:"goals"`
	Health          Health             `json:"health_score"`
	Forecast        Forecast           `json:"forecast"`
	Insights        []analysis.Insight `json:"insights"`
	Recommendations []string           `json:"recommendations"`

	// Period records, kept for spreadsheet exports.
	Expenses []core.Expense `json:"-"`
	Incomes  []core.Income  `json:"-"`
}

type Period struct {
	Month  core.MonthKey `json:"month,omitempty"`
	Months int           `json:"months,omitempty"`
	Start  core.Date     `json:"start_date"`
	End    core.Date     `json:"end_date"`
}

type Summary struct {
	TotalExpenses     core.Money `json:"total_expenses"`
	TotalIncomes      core.Money `json:"total_incomes"`
	NetBalance        core.Money `json:"net_balance"`
	SavingsRate       Number     `json:"savings_rate"`
	AvgMonthlyExpense Number     `json:"avg_monthly_expense"`
	AvgMonthlyIncome  Number     `json:"avg_monthly_income"`
	TransactionCount  int        `json:"transaction_count"`
	ExpenseCount      int        `json:"expense_count"`
	IncomeCount       int        `json:"income_count"`
	DistinctMonths    int        `json:"distinct_months"`
}

type Comparison struct {
	PreviousMonth    core.MonthKey `json:"previous_month"`
	PreviousExpenses core.Money    `json:"previous_expenses"`
	PreviousIncomes  core.Money    `json:"previous_incomes"`
	ExpenseChange    Number        `json:"expense_change"`
	IncomeChange     Number        `json:"income_change"`
}

type CategoryLine struct {
	Category core.Category `json:"category"`
	Total    core.Money    `json:"total"`
	Count    int           `json:"count"`
	Average  Number        `json:"average"`
	Min      core.Money    `json:"min"`
	Max      core.Money    `json:"max"`
	Share    Number        `json:"percentage"`
	Trend    Number        `json:"trend"`
	Volatile bool          `json:"volatile"`
}

// WeekdayLine uses time.Weekday indexing: 0 is Sunday.
type WeekdayLine struct {
	Index  int        `json:"index"`
	Day    string     `json:"day"`
	Amount core.Money `json:"amount"`
	Share  Number     `json:"percentage"`
}

type MonthLine struct {
	Month            core.MonthKey `json:"month"`
	Expenses         core.Money    `json:"expenses"`
	Incomes          core.Money    `json:"incomes"`
	Balance          core.Money    `json:"balance"`
	TransactionCount int           `json:"transactions"`
}

type Patterns struct {
	Recurring     int `json:"recurring_expenses"`
	Large         int `json:"large_expenses"`
	SmallFrequent int `json:"small_frequent"`
}

type TopExpense struct {
	Title    string        `json:"title"`
	Amount   core.Money    `json:"amount"`
	Category core.Category `json:"category"`
	Date     core.Date     `json:"date"`
}

type GoalLine struct {
	ID             string             `json:"id,omitempty"`
	Category       core.Category      `json:"category"`
	Month          core.MonthKey      `json:"month"`
	Limit          core.Money         `json:"limit"`
	Spent          core.Money         `json:"spent"`
	Remaining      core.Money         `json:"remaining"`
	Percentage     Number             `json:"percentage"`
	AlertThreshold int                `json:"alert_threshold"`
	Status         analysis.GoalState `json:"status"`
}

type Health struct {
	Score  int             `json:"score"`
	Rating analysis.Rating `json:"rating"`
}

type Forecast struct {
	NextMonthExpenses Number `json:"next_month_expenses"`
	NextMonthIncomes  Number `json:"next_month_incomes"`
	ProjectedBalance  Number `json:"projected_balance"`
}
