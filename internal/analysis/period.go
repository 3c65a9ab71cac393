package analysis

import (
	"errors"
	"fmt"
	"time"

	"familybudget/internal/core"
)

// Dated is satisfied by core.Expense and core.Income.
type Dated interface {
	TransactionDate() core.Date
}

// Range is an inclusive calendar-date interval.
type Range struct {
	Start core.Date
	End   core.Date
}

var ErrInvalidRange = errors.New("range start is after range end")

// NewRange validates start <= end.
func NewRange(start, end core.Date) (Range, error) {
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// MonthRange spans the first to the last calendar day of m.
func MonthRange(m core.MonthKey) (Range, error) {
	first, last, err := m.Bounds()
	if err != nil {
		return Range{}, err
	}
	return Range{Start: first, End: last}, nil
}

// TrailingMonths spans [now - months, now] by calendar date.
func TrailingMonths(now time.Time, months int) Range {
	end := core.DateOf(now)
	return Range{Start: core.Date{Time: end.AddDate(0, -months, 0)}, End: end}
}

// Contains compares by calendar date, inclusive on both ends.
func (r Range) Contains(d core.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Filter returns a new slice with the items dated inside r, in input order.
func Filter[T Dated](items []T, r Range) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if r.Contains(it.TransactionDate()) {
			out = append(out, it)
		}
	}
	return out
}

// FilterMonth is Filter over MonthRange(m).
func FilterMonth[T Dated](items []T, m core.MonthKey) ([]T, error) {
	r, err := MonthRange(m)
	if err != nil {
		return nil, err
	}
	return Filter(items, r), nil
}
