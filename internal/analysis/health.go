package analysis

import (
	"math"

	"github.com/shopspring/decimal"

	"familybudget/internal/core"
)

// Rating is the four-tier label attached to a health score.
type Rating string

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingAverage          Rating = "Average"
	RatingNeedsImprovement Rating = "Needs improvement"
)

// HealthInput carries the facts the scorer looks at.
type HealthInput struct {
	NetBalance core.Money
	// SavingsRate and TopCategoryShare are percentages.
	SavingsRate      decimal.Decimal
	TopCategoryShare decimal.Decimal
	IncomeVolatility decimal.Decimal
}

// HealthScore is a heuristic 0..100 composite, not a certified metric.
type HealthScore struct {
	Score  int
	Rating Rating
}

// ScoreHealth starts at 100 and applies the configured adjustments:
// a deficit penalty, or else a savings-band penalty; a concentration penalty
// when the top category's share, rounded to one decimal as reports show it,
// exceeds its bound; a stable-income bonus. The result is clamped to [0, 100].
func ScoreHealth(in HealthInput, th Thresholds) HealthScore {
	score := 100
	if in.NetBalance.Cents < 0 {
		score -= th.DeficitPenalty
	} else if in.SavingsRate.LessThan(dec(th.SavingsLowPct)) {
		score -= th.LowSavingsPenalty
	} else if in.SavingsRate.LessThan(dec(th.SavingsGoodPct)) {
		score -= th.ModerateSavingsPenalty
	}
	if in.TopCategoryShare.Round(1).GreaterThan(dec(th.ConcentrationPct)) {
		score -= th.ConcentrationPenalty
	}
	if in.IncomeVolatility.LessThan(dec(th.StableIncomeVolatility)) {
		score += th.StableIncomeBonus
	}
	score = max(0, min(100, score))
	return HealthScore{Score: score, Rating: RateScore(score, th)}
}

// RateScore maps a score onto the rating boundaries.
func RateScore(score int, th Thresholds) Rating {
	switch {
	case score >= th.RatingExcellent:
		return RatingExcellent
	case score >= th.RatingGood:
		return RatingGood
	case score >= th.RatingAverage:
		return RatingAverage
	default:
		return RatingNeedsImprovement
	}
}

// IncomeVolatility is the coefficient of variation (population standard
// deviation over mean) of the income amounts. It is 0 with fewer than two
// incomes or a zero mean.
func IncomeVolatility(incomes []core.Income) decimal.Decimal {
	if len(incomes) < 2 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(len(incomes)))
	var sum core.Money
	for _, in := range incomes {
		sum = sum.Add(in.Amount)
	}
	mean := sum.Decimal().Div(n)
	if mean.IsZero() {
		return decimal.Zero
	}
	variance := decimal.Zero
	for _, in := range incomes {
		d := in.Amount.Decimal().Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(n)
	stddev := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))
	return stddev.Div(mean)
}

// HealthInputFor derives the scorer input from an aggregate and the incomes
// that produced it.
func HealthInputFor(a Aggregates, incomes []core.Income) HealthInput {
	in := HealthInput{
		NetBalance:       a.NetBalance,
		SavingsRate:      a.SavingsRate,
		IncomeVolatility: IncomeVolatility(incomes),
	}
	if top, ok := a.TopCategory(); ok {
		in.TopCategoryShare = a.ExpenseShare(top.Total)
	}
	return in
}
