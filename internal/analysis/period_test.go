package analysis

import (
	"errors"
	"testing"
	"time"

	"familybudget/internal/core"
)

func TestFilterMonthInclusiveBounds(t *testing.T) {
	items := []core.Expense{
		exp(core.Food, 100, "2024-12-31"),
		exp(core.Food, 200, "2025-01-01"),
		exp(core.Rent, 300, "2025-01-31"),
		exp(core.Food, 400, "2025-02-01"),
	}
	got, err := FilterMonth(items, "2025-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Amount.Cents != 200 || got[1].Amount.Cents != 300 {
		t.Fatalf("unexpected filter result %+v", got)
	}

	again, _ := FilterMonth(got, "2025-01")
	if len(again) != len(got) {
		t.Fatalf("refiltering must be idempotent: %d != %d", len(again), len(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	items := []core.Income{inc(1, "2025-03-01"), inc(2, "2025-04-01")}
	r, _ := MonthRange("2025-04")
	out := Filter(items, r)
	if len(out) != 1 || len(items) != 2 || items[0].Amount.Cents != 1 {
		t.Fatalf("input mutated or wrong output: %v %v", items, out)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	out, err := FilterMonth[core.Expense](nil, "2025-01")
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil result, got %v (err=%v)", out, err)
	}
}

func TestFilterMonthRejectsBadKey(t *testing.T) {
	if _, err := FilterMonth([]core.Expense{}, "January"); !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Fatalf("expected ErrInvalidMonthKey, got %v", err)
	}
}

func TestTrailingMonths(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	r := TrailingMonths(now, 6)
	if r.Start.String() != "2024-12-15" || r.End.String() != "2025-06-15" {
		t.Fatalf("unexpected range %s..%s", r.Start, r.End)
	}
	if !r.Contains(core.NewDate(2025, 6, 15)) || r.Contains(core.NewDate(2025, 6, 16)) {
		t.Fatalf("range must be inclusive of now and exclude later dates")
	}
}

func TestNewRange(t *testing.T) {
	if _, err := NewRange(core.NewDate(2025, 2, 1), core.NewDate(2025, 1, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := NewRange(core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 1)); err != nil {
		t.Fatalf("single-day range must be valid: %v", err)
	}
}
