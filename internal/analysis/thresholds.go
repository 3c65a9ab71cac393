package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Thresholds collects the heuristic constants used by the scorer, the
// pattern detector and the insight rules. They are product decisions, so
// they are configurable; DefaultThresholds returns the shipped values.
type Thresholds struct {
	// Savings rate bands, in percent.
	SavingsLowPct  float64 `yaml:"savings_low_pct"`
	SavingsGoodPct float64 `yaml:"savings_good_pct"`

	// Health score adjustments, in points.
	DeficitPenalty         int     `yaml:"deficit_penalty"`
	LowSavingsPenalty      int     `yaml:"low_savings_penalty"`
	ModerateSavingsPenalty int     `yaml:"moderate_savings_penalty"`
	ConcentrationPct       float64 `yaml:"concentration_pct"`
	ConcentrationPenalty   int     `yaml:"concentration_penalty"`
	StableIncomeVolatility float64 `yaml:"stable_income_volatility"`
	StableIncomeBonus      int     `yaml:"stable_income_bonus"`

	// Rating boundaries, in points.
	RatingExcellent int `yaml:"rating_excellent"`
	RatingGood      int `yaml:"rating_good"`
	RatingAverage   int `yaml:"rating_average"`

	// Pattern ratios relative to the average monthly expense.
	LargeExpenseRatio     float64 `yaml:"large_expense_ratio"`
	SmallExpenseRatio     float64 `yaml:"small_expense_ratio"`
	LargeExpensesPerMonth int     `yaml:"large_expenses_per_month"`

	// Insight and recommendation triggers, in percent.
	WeekdaySharePct   float64 `yaml:"weekday_share_pct"`
	VolatileTrendPct  float64 `yaml:"volatile_trend_pct"`
	ExpenseRisePct    float64 `yaml:"expense_rise_pct"`
	DiversifySharePct float64 `yaml:"diversify_share_pct"`

	// ForecastWindow is the number of trailing months averaged by the forecast.
	ForecastWindow int `yaml:"forecast_window"`
}

// DefaultThresholds returns the shipped heuristic constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SavingsLowPct:          10,
		SavingsGoodPct:         20,
		DeficitPenalty:         30,
		LowSavingsPenalty:      20,
		ModerateSavingsPenalty: 10,
		ConcentrationPct:       50,
		ConcentrationPenalty:   15,
		StableIncomeVolatility: 0.2,
		StableIncomeBonus:      10,
		RatingExcellent:        80,
		RatingGood:             60,
		RatingAverage:          40,
		LargeExpenseRatio:      0.1,
		SmallExpenseRatio:      0.05,
		LargeExpensesPerMonth:  2,
		WeekdaySharePct:        25,
		VolatileTrendPct:       30,
		ExpenseRisePct:         20,
		DiversifySharePct:      40,
		ForecastWindow:         3,
	}
}

// Validate reports every inconsistent value at once.
func (t Thresholds) Validate() error {
	var errs []string
	if t.SavingsLowPct < 0 || t.SavingsGoodPct < t.SavingsLowPct {
		errs = append(errs, "savings bands must satisfy 0 <= savings_low_pct <= savings_good_pct")
	}
	if t.DeficitPenalty < 0 || t.LowSavingsPenalty < 0 || t.ModerateSavingsPenalty < 0 || t.ConcentrationPenalty < 0 || t.StableIncomeBonus < 0 {
		errs = append(errs, "score adjustments must be non-negative")
	}
	if !(t.RatingExcellent >= t.RatingGood && t.RatingGood >= t.RatingAverage && t.RatingAverage >= 0 && t.RatingExcellent <= 100) {
		errs = append(errs, "rating boundaries must satisfy 100 >= excellent >= good >= average >= 0")
	}
	if t.LargeExpenseRatio <= 0 || t.SmallExpenseRatio <= 0 {
		errs = append(errs, "pattern ratios must be positive")
	}
	if t.LargeExpensesPerMonth < 0 {
		errs = append(errs, "large_expenses_per_month must be non-negative")
	}
	if t.ForecastWindow < 1 {
		errs = append(errs, "forecast_window must be at least 1")
	}
	for _, share := range []struct {
		name  string
		value float64
	}{
		{"concentration_pct", t.ConcentrationPct},
		{"weekday_share_pct", t.WeekdaySharePct},
		{"diversify_share_pct", t.DiversifySharePct},
	} {
		if share.value < 0 || share.value > 100 {
			errs = append(errs, fmt.Sprintf("%s must be within 0..100", share.name))
		}
	}
	for _, pct := range []struct {
		name  string
		value float64
	}{
		{"volatile_trend_pct", t.VolatileTrendPct},
		{"expense_rise_pct", t.ExpenseRisePct},
	} {
		if pct.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must be non-negative", pct.name))
		}
	}
	if len(errs) > 0 {
		return errors.New("invalid thresholds: " + strings.Join(errs, "; "))
	}
	return nil
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }
