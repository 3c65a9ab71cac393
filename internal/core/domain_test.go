package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-03-09"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 9 {
		t.Fatalf("unexpected date %v", d)
	}
	if err := json.Unmarshal([]byte(`"2025-03-09T18:30:00Z"`), &d); err != nil || d.String() != "2025-03-09" {
		t.Fatalf("timestamp not truncated: %v (err=%v)", d, err)
	}
	b, _ := json.Marshal(NewDate(2024, 2, 29))
	if string(b) != `"2024-02-29"` {
		t.Fatalf("unexpected marshal %s", b)
	}
	if err := json.Unmarshal([]byte(`"2025-13-01"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory(" Food "); err != nil || c != Food {
		t.Fatalf("expected food, got %q (err=%v)", c, err)
	}
	if _, err := ParseCategory("groceries"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if len(Categories()) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(Categories()))
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:     "ok",
		Amount:    Money{Cents: 100},
		Category:  Food,
		Date:      NewDate(2025, 1, 1),
		CreatedBy: "a@example.com",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount must be accepted, got %v", err)
	}

	bads := []struct {
		name string
		mut  func(e *Expense)
		want error
	}{
		{"zero date", func(e *Expense) { e.Date = Date{} }, nil},
		{"empty title", func(e *Expense) { e.Title = "  " }, ErrEmptyTitle},
		{"long title", func(e *Expense) { e.Title = strings.Repeat("x", 201) }, ErrTitleTooLong},
		{"negative", func(e *Expense) { e.Amount = Money{Cents: -1} }, ErrNegativeAmount},
		{"category", func(e *Expense) { e.Category = "pets" }, ErrUnknownCategory},
		{"owner", func(e *Expense) { e.CreatedBy = "" }, ErrEmptyOwner},
	}
	for _, tc := range bads {
		e := good
		tc.mut(&e)
		err := e.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestIncomeValidate(t *testing.T) {
	in := Income{Title: "salary", Amount: Money{Cents: 500000}, Date: NewDate(2025, 1, 25), CreatedBy: "a"}
	if err := in.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	in.Amount = Money{Cents: -5}
	if err := in.Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestBudgetGoalValidate(t *testing.T) {
	g := BudgetGoal{Category: Food, MonthlyLimit: Money{Cents: 10000}, AlertThreshold: DefaultAlertThreshold, Month: "2025-01", CreatedBy: "a"}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	cases := []struct {
		mut  func(g *BudgetGoal)
		want error
	}{
		{func(g *BudgetGoal) { g.AlertThreshold = 101 }, ErrInvalidThreshold},
		{func(g *BudgetGoal) { g.Month = "2025-1" }, ErrInvalidMonthKey},
		{func(g *BudgetGoal) { g.Month = "2025-+1" }, ErrInvalidMonthKey},
		{func(g *BudgetGoal) { g.Category = "" }, ErrUnknownCategory},
		{func(g *BudgetGoal) { g.MonthlyLimit = Money{Cents: -1} }, ErrNegativeAmount},
	}
	for i, tc := range cases {
		bad := g
		tc.mut(&bad)
		if err := bad.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}
